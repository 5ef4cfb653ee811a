package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/portalauth/internal/session/domain"
	"github.com/smallbiznis/portalauth/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(conn *gorm.DB) domain.Repository {
	return &repo{db: conn}
}

func (r *repo) CreateActive(ctx context.Context, session *domain.CustomerSession, now time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A holder that expired without being ended must not block a new
		// session; release its slot first. The row itself stays untouched
		// for read-time expiry reporting.
		if err := tx.Model(&domain.CustomerSession{}).
			Where("active_email = ? AND expires_at <= ?", session.Email, now).
			Update("active_email", nil).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrSessionAlreadyActive
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *repo) FindActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.CustomerSession, error) {
	var session domain.CustomerSession
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = ? AND expires_at > ?", email, true, now).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return &session, nil
}

func (r *repo) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.CustomerSession, error) {
	var session domain.CustomerSession
	err := r.db.WithContext(ctx).
		Where("session_token_hash = ?", tokenHash).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return &session, nil
}

func (r *repo) UpdateAccount(ctx context.Context, sessionID, accountID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.CustomerSession{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Update("customer_account_id", accountID)
	if tx.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNoActiveSession
	}
	return nil
}

func (r *repo) End(ctx context.Context, sessionID snowflake.ID, endedAt time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.CustomerSession{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Updates(map[string]any{
			"is_active":    false,
			"ended_at":     endedAt,
			"active_email": nil,
		})
	if tx.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, tx.Error)
	}
	// Zero rows means the session was already ended; that is the same
	// terminal state, not an error.
	return nil
}
