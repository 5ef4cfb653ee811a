package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/portalauth/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) FindByEmail(ctx context.Context, email string) ([]domain.CustomerAccount, error) {
	var accounts []domain.CustomerAccount
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("is_primary_account DESC, customer_name ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return accounts, nil
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.CustomerAccount, error) {
	var account domain.CustomerAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return &account, nil
}
