package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/auth"
	"github.com/nretrorsum/work-test/internal/config"
	"github.com/nretrorsum/work-test/internal/dto"
	"github.com/nretrorsum/work-test/internal/model"
	"github.com/nretrorsum/work-test/internal/repository"
)

const invalidCredentials = "Invalid credentials"

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (*Session, error)
	// Resolve verifies a session token and loads the user it names. A valid
	// token whose user no longer exists yields apperr.NotFound.
	Resolve(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *auth.TokenIssuer
	cfg    *config.Config
}

func NewAuthService(repo repository.UserRepository, tokens *auth.TokenIssuer, cfg *config.Config) AuthService {
	return &authService{repo: repo, tokens: tokens, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) error {
	if !model.ValidRole(req.Role) {
		return apperr.Validationf("invalid role %q: must be one of admin, cashier", req.Role)
	}
	hash, err := auth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Wrap(apperr.Store, err, "failed to hash password")
	}
	u := &model.User{Username: req.Username, PasswordHash: hash, Role: req.Role}
	if err := s.repo.Register(ctx, u); err != nil {
		return err
	}
	log.Info().Str("username", u.Username).Str("role", u.Role).Msg("user registered")
	return nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*Session, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Unauthenticatedf(invalidCredentials)
	}

	token, expires, err := s.tokens.Issue(user.Username, user.ID.String(), user.Role, s.cfg.TokenTTL())
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, err, "failed to issue token")
	}
	return &Session{Token: token, ExpiresAt: expires}, nil
}

func (s *authService) Resolve(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("user not found")
	}
	return user, nil
}
