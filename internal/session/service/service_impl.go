package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/portalauth/internal/account/domain"
	"github.com/smallbiznis/portalauth/internal/clock"
	"github.com/smallbiznis/portalauth/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sessionTokenBytes = 32

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	Accounts accountdomain.Service
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	accounts accountdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("session.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		accounts: p.Accounts,
	}
}

func (s *Service) HasActiveSession(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, domain.ErrInvalidRequest
	}

	session, err := s.repo.FindActiveByEmail(ctx, email, s.clock.Now())
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

func (s *Service) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (*domain.CreateSessionResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidRequest
	}
	if req.Duration <= 0 {
		return nil, domain.ErrInvalidRequest
	}

	account, err := s.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(account.Email, email) {
		return nil, domain.ErrAccountEmailMismatch
	}
	if !account.IsActive() {
		return nil, domain.ErrAccountInactive
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.CustomerSession{
		ID:                s.genID.Generate(),
		Email:             email,
		CustomerAccountID: account.ID,
		SessionTokenHash:  hashToken(rawToken),
		ActiveEmail:       &email,
		ClientIP:          strings.TrimSpace(req.ClientIP),
		ClientUserAgent:   strings.TrimSpace(req.ClientUserAgent),
		IsActive:          true,
		CreatedAt:         now,
		ExpiresAt:         now.Add(req.Duration),
	}

	// The insert and the active-slot claim are one storage operation; two
	// concurrent creates for the same email cannot both win.
	if err := s.repo.CreateActive(ctx, session, now); err != nil {
		return nil, err
	}

	s.log.Info("session created",
		zap.String("email", email),
		zap.String("account_id", account.ID.String()),
	)

	return &domain.CreateSessionResult{
		SessionID: session.ID,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) SwitchAccount(ctx context.Context, rawToken, accountID string) (accountdomain.CustomerAccount, error) {
	session, err := s.liveSession(ctx, rawToken)
	if err != nil {
		return accountdomain.CustomerAccount{}, err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return accountdomain.CustomerAccount{}, err
	}
	// Switching is an impersonation boundary: the target account must
	// belong to the email this session was issued for.
	if !strings.EqualFold(account.Email, session.Email) {
		return accountdomain.CustomerAccount{}, domain.ErrAccountEmailMismatch
	}
	if !account.IsActive() {
		return accountdomain.CustomerAccount{}, domain.ErrAccountInactive
	}

	// Token and expiry survive the switch; see Service doc.
	if err := s.repo.UpdateAccount(ctx, session.ID, account.ID); err != nil {
		return accountdomain.CustomerAccount{}, err
	}

	s.log.Info("session switched account",
		zap.String("email", session.Email),
		zap.String("account_id", account.ID.String()),
	)

	return account, nil
}

func (s *Service) EndSession(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidRequest
	}

	session, err := s.repo.FindByTokenHash(ctx, hashToken(token))
	if err != nil {
		return err
	}
	return s.repo.End(ctx, session.ID, s.clock.Now())
}

func (s *Service) ValidateToken(ctx context.Context, rawToken string) (*domain.CustomerSession, accountdomain.CustomerAccount, error) {
	session, err := s.liveSession(ctx, rawToken)
	if err != nil {
		return nil, accountdomain.CustomerAccount{}, err
	}

	account, err := s.accounts.GetByID(ctx, session.CustomerAccountID.String())
	if err != nil {
		return nil, accountdomain.CustomerAccount{}, err
	}
	return session, account, nil
}

// liveSession resolves a raw token to an active, unexpired session.
func (s *Service) liveSession(ctx context.Context, rawToken string) (*domain.CustomerSession, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidRequest
	}

	session, err := s.repo.FindByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, domain.ErrSessionNotFound
	}
	if session.ExpiredAt(s.clock.Now()) {
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !strings.Contains(email, "@") {
		return "", domain.ErrInvalidRequest
	}
	return email, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
