package repository

import (
	"context"
	"time"

	"github.com/VidyaQuest-Labs/portal/internal/model"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID finds a user by internal id
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var user model.User
	result := r.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "User lookup by id failed").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// GetBySubject finds a user by the external subject identifier
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetBySubject")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("subject = ?", subject).First(&user)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "User lookup by subject failed").
			String("subject", subject).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// UpsertBySubject creates the minimal verified record on first login or
// touches last_login_at on repeat logins. Idempotent entry point.
func (r *UserRepository) UpsertBySubject(ctx context.Context, subject, phone string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpsertBySubject")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("subject = ?", subject).First(&user)
	switch {
	case result.Error == nil:
		now := time.Now()
		if err := r.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
			logger.ErrorWithContext(ctx, "Failed to update last login").
				String("subject", subject).
				Err(err).
				Log()
			return nil, err
		}
		user.LastLoginAt = now

		logger.DebugWithContext(ctx, "Existing user logged in").
			String("subject", subject).
			Uint("user_id", user.ID).
			Duration(time.Since(start)).
			Log()
		return &user, nil

	case result.Error == gorm.ErrRecordNotFound:
		user = model.User{
			Subject:     subject,
			Phone:       phone,
			IsVerified:  true,
			LastLoginAt: time.Now(),
		}
		if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
			logger.ErrorWithContext(ctx, "Failed to create user").
				String("subject", subject).
				Err(err).
				Log()
			return nil, err
		}

		logger.InfoWithContext(ctx, "User created").
			String("subject", subject).
			Uint("user_id", user.ID).
			Duration(time.Since(start)).
			Log()
		return &user, nil

	default:
		logger.ErrorWithContext(ctx, "Failed to look up user").
			String("subject", subject).
			Err(result.Error).
			Log()
		return nil, result.Error
	}
}

// FindByEmailExcluding returns a user holding the email whose subject
// differs from the one given. Used as the email-conflict probe.
func (r *UserRepository) FindByEmailExcluding(ctx context.Context, email, subject string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "FindByEmailExcluding")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var user model.User
	result := r.db.WithContext(ctx).
		Where("email = ? AND subject <> ?", email, subject).
		First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// UpdateProfile overwrites the provided profile fields and sets the
// profile-complete flag. Reloads and returns the updated row.
func (r *UserRepository) UpdateProfile(ctx context.Context, subject string, updates map[string]interface{}) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateProfile")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("subject = ?", subject).Updates(updates)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update profile").
			String("subject", subject).
			Err(result.Error).
			Log()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var user model.User
	if err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&user).Error; err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Profile updated").
		String("subject", subject).
		Uint("user_id", user.ID).
		Bool("profile_complete", user.IsProfileComplete).
		Duration(time.Since(start)).
		Log()

	return &user, nil
}

// IncrementXP adds delta to the stored counter in a single UPDATE and
// returns the new value. No idempotency key; a retried request double
// counts (known weakness of the reward flow, kept as-is).
func (r *UserRepository) IncrementXP(ctx context.Context, subject string, delta int64) (int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "IncrementXP")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("subject = ?", subject).
		UpdateColumn("xp", gorm.Expr("xp + ?", delta))
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to increment xp").
			String("subject", subject).
			Int64("delta", delta).
			Err(result.Error).
			Log()
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var user model.User
	if err := r.db.WithContext(ctx).Select("xp").Where("subject = ?", subject).First(&user).Error; err != nil {
		return 0, err
	}

	logger.InfoWithContext(ctx, "XP incremented").
		String("subject", subject).
		Int64("delta", delta).
		Int64("new_xp", user.XP).
		Log()

	return user.XP, nil
}

// TopByXP returns the highest-scoring users for the leaderboard
func (r *UserRepository) TopByXP(ctx context.Context, limit int) ([]model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "TopByXP")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var users []model.User
	result := r.db.WithContext(ctx).
		Select("id", "full_name", "xp").
		Order("xp DESC").
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch leaderboard").
			Int("limit", limit).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return users, nil
}

// Delete removes a user row permanently (account deletion)
func (r *UserRepository) Delete(ctx context.Context, subject string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Unscoped().Where("subject = ?", subject).Delete(&model.User{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete user").
			String("subject", subject).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User deleted").
		String("subject", subject).
		Log()

	return nil
}
