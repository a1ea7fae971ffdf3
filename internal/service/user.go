package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/VidyaQuest-Labs/portal/internal/dto"
	apperrors "github.com/VidyaQuest-Labs/portal/internal/errors"
	"github.com/VidyaQuest-Labs/portal/internal/model"
	"github.com/VidyaQuest-Labs/portal/pkg/cache"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/VidyaQuest-Labs/portal/pkg/redis"
	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 30 * time.Second
	leaderboardSize     = 10
)

// userStore is the slice of the user repository the flow controller needs
type userStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
	UpsertBySubject(ctx context.Context, subject, phone string) (*model.User, error)
	FindByEmailExcluding(ctx context.Context, email, subject string) (*model.User, error)
	UpdateProfile(ctx context.Context, subject string, updates map[string]interface{}) (*model.User, error)
	IncrementXP(ctx context.Context, subject string, delta int64) (int64, error)
	TopByXP(ctx context.Context, limit int) ([]model.User, error)
	Delete(ctx context.Context, subject string) error
}

type sessionStore interface {
	Create(ctx context.Context, userID uint, token string, expiresAt time.Time) (*model.UserSession, error)
	FindActive(ctx context.Context, token string) (*model.UserSession, error)
	Deactivate(ctx context.Context, token string) error
}

// UserService orchestrates the verification flow: identity verification,
// user upsert and session bookkeeping.
type UserService struct {
	users    userStore
	sessions sessionStore
	verifier IdentityVerifier

	redisClient *redis.Client
	memCache    *cache.Cache
}

func NewUserService(users userStore, sessions sessionStore, verifier IdentityVerifier, redisClient *redis.Client, memCache *cache.Cache) *UserService {
	return &UserService{
		users:       users,
		sessions:    sessions,
		verifier:    verifier,
		redisClient: redisClient,
		memCache:    memCache,
	}
}

// CreateOrGetUser verifies the identity token, upserts the user record
// and opens a session with the verifier-reported expiry. A verifier
// failure propagates with no user or session created.
func (s *UserService) CreateOrGetUser(ctx context.Context, identityToken string) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CreateOrGetUser")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	identity, err := s.verifier.Verify(ctx, identityToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Identity verification failed").
			Err(err).
			Log()
		return nil, err
	}

	ctx = ctxutil.WithSubject(ctx, identity.Subject)

	user, err := s.users.UpsertBySubject(ctx, identity.Subject, identity.Phone)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to upsert user").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.sessions.Create(ctx, user.ID, identityToken, identity.ExpiresAt); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create session").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User authenticated").
		Uint("user_id", user.ID).
		Bool("profile_complete", user.IsProfileComplete).
		Log()

	return toUserResponse(user), nil
}

// resolveSession maps a bearer token to its owning user, or
// ErrUnauthorized when the session is missing, inactive or expired.
func (s *UserService) resolveSession(ctx context.Context, sessionToken string) (*model.User, error) {
	session, err := s.sessions.FindActive(ctx, sessionToken)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}

// GetProfile returns the profile of the session owner
func (s *UserService) GetProfile(ctx context.Context, sessionToken string) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetProfile")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.resolveSession(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

// CompleteProfile fills the remaining profile fields for the session
// owner. Full name and email are required; the email must not belong to
// another user. The profile-complete flag is set unconditionally, as the
// reference system does.
func (s *UserService) CompleteProfile(ctx context.Context, sessionToken string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CompleteProfile")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.resolveSession(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	ctx = ctxutil.WithSubject(ctx, user.Subject)

	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if fullName == "" || email == "" {
		logger.WarnWithContext(ctx, "Profile update rejected, missing required fields").
			Bool("has_full_name", fullName != "").
			Bool("has_email", email != "").
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, errors.New("full name and email are required"))
	}

	if _, err := s.users.FindByEmailExcluding(ctx, email, user.Subject); err == nil {
		logger.WarnWithContext(ctx, "Profile update rejected, email already registered").
			String("email", email).
			Log()
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	updates := map[string]interface{}{
		"full_name":           fullName,
		"email":               email,
		"gender":              strings.TrimSpace(req.Gender),
		"school_name":         strings.TrimSpace(req.SchoolName),
		"class_name":          strings.TrimSpace(req.ClassName),
		"address":             strings.TrimSpace(req.Address),
		"city":                strings.TrimSpace(req.City),
		"state":               strings.TrimSpace(req.State),
		"pincode":             strings.TrimSpace(req.Pincode),
		"father_name":         strings.TrimSpace(req.FatherName),
		"mother_name":         strings.TrimSpace(req.MotherName),
		"is_profile_complete": true,
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		updates["date_of_birth"] = &dob
	} else {
		updates["date_of_birth"] = nil
	}

	updated, err := s.users.UpdateProfile(ctx, user.Subject, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toUserResponse(updated), nil
}

// AddXP adds the client-reported delta to the session owner's counter
// and returns the new total. The delta is fully client-trusted; there is
// no bounds check and no idempotency key.
func (s *UserService) AddXP(ctx context.Context, sessionToken string, delta int64) (int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "AddXP")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.resolveSession(ctx, sessionToken)
	if err != nil {
		return 0, err
	}

	newXP, err := s.users.IncrementXP(ctx, user.Subject, delta)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Leaderboard caches are now stale; drop them eagerly.
	s.invalidateLeaderboard(ctx)

	return newXP, nil
}

// Logout deactivates the bearer session. Idempotent.
func (s *UserService) Logout(ctx context.Context, sessionToken string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Logout")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if err := s.sessions.Deactivate(ctx, sessionToken); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

// DeleteAccount revokes the external identity, removes the user row and
// closes the session.
func (s *UserService) DeleteAccount(ctx context.Context, sessionToken string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "DeleteAccount")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.resolveSession(ctx, sessionToken)
	if err != nil {
		return err
	}

	ctx = ctxutil.WithSubject(ctx, user.Subject)

	if err := s.verifier.Revoke(ctx, user.Subject); err != nil {
		logger.ErrorWithContext(ctx, "Failed to revoke external identity").
			Err(err).
			Log()
		return err
	}

	if err := s.users.Delete(ctx, user.Subject); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.sessions.Deactivate(ctx, sessionToken); err != nil {
		logger.WarnWithContext(ctx, "Failed to deactivate session after account deletion").
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "Account deleted").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// Leaderboard returns the top users by XP, cached briefly in Redis with
// an in-process fallback.
func (s *UserService) Leaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Leaderboard")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if s.redisClient != nil && s.redisClient.IsEnabled() {
		if data, err := s.redisClient.Get(ctx, leaderboardCacheKey); err == nil && data != nil {
			var entries []dto.LeaderboardEntry
			if err := json.Unmarshal(data, &entries); err == nil {
				return entries, nil
			}
		}

		entries, err := s.loadLeaderboard(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(entries); err == nil {
			_ = s.redisClient.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL)
		}
		return entries, nil
	}

	value, err := s.memCache.GetOrLoad(leaderboardCacheKey, leaderboardCacheTTL, func() (interface{}, error) {
		return s.loadLeaderboard(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.([]dto.LeaderboardEntry), nil
}

func (s *UserService) loadLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	users, err := s.users.TopByXP(ctx, leaderboardSize)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	entries := make([]dto.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, dto.LeaderboardEntry{
			ID:       u.ID,
			FullName: u.FullName,
			XP:       u.XP,
		})
	}
	return entries, nil
}

func (s *UserService) invalidateLeaderboard(ctx context.Context) {
	if s.redisClient != nil && s.redisClient.IsEnabled() {
		_ = s.redisClient.Delete(ctx, leaderboardCacheKey)
	}
	if s.memCache != nil {
		s.memCache.Delete(leaderboardCacheKey)
	}
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                user.ID,
		Subject:           user.Subject,
		Phone:             user.Phone,
		IsVerified:        user.IsVerified,
		FullName:          user.FullName,
		Email:             user.Email,
		DateOfBirth:       user.DateOfBirth,
		Gender:            user.Gender,
		SchoolName:        user.SchoolName,
		ClassName:         user.ClassName,
		Address:           user.Address,
		City:              user.City,
		State:             user.State,
		Pincode:           user.Pincode,
		FatherName:        user.FatherName,
		MotherName:        user.MotherName,
		IsProfileComplete: user.IsProfileComplete,
		XP:                user.XP,
		LastLoginAt:       user.LastLoginAt,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
}
