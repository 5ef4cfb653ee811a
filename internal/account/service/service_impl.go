package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/portalauth/internal/account/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("account.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetAccountsByEmail(ctx context.Context, email string) ([]domain.CustomerAccount, error) {
	// Syntactic validation happens upstream; an unmatchable value simply
	// resolves to zero accounts.
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return []domain.CustomerAccount{}, nil
	}

	accounts, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("account lookup failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.CustomerAccount{}
	}
	return accounts, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.CustomerAccount, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.CustomerAccount{}, domain.ErrInvalidID
	}

	account, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return domain.CustomerAccount{}, err
	}
	return *account, nil
}
