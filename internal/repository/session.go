package repository

import (
	"context"
	"time"

	"github.com/VidyaQuest-Labs/portal/internal/model"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create deactivates every active session for the user and inserts the
// new one in a single transaction, so there is never a window with zero
// or two active sessions.
func (r *SessionRepository) Create(ctx context.Context, userID uint, token string, expiresAt time.Time) (*model.UserSession, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session := model.UserSession{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.UserSession{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to create session").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, err
	}

	logger.InfoWithContext(ctx, "Session created").
		Uint("user_id", userID).
		Uint("session_id", session.ID).
		Any("expires_at", expiresAt).
		Duration(time.Since(start)).
		Log()

	return &session, nil
}

// FindActive returns the session matching the token that is active and
// unexpired. Not-found, inactive and expired all come back as
// gorm.ErrRecordNotFound; callers do not distinguish them.
func (r *SessionRepository) FindActive(ctx context.Context, token string) (*model.UserSession, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "FindActive")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var session model.UserSession
	result := r.db.WithContext(ctx).
		Where("token = ? AND is_active = ? AND expires_at > ?", token, true, time.Now()).
		First(&session)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "No active session for token").
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &session, nil
}

// Deactivate sets is_active=false for all sessions holding the token.
// Idempotent; succeeds even when no row matches.
func (r *SessionRepository) Deactivate(ctx context.Context, token string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Deactivate")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).
		Model(&model.UserSession{}).
		Where("token = ?", token).
		Update("is_active", false)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to deactivate session").
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Session deactivated").
		Int64("rows_affected", result.RowsAffected).
		Log()

	return nil
}
