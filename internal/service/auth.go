package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

// AuthService handles user registration and login.
type AuthService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(s store.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  s,
		logger: logger,
	}
}

// RegisterRequest carries the data for a new account. The password hash
// arrives opaque from the client and is stored verbatim. Profile fields
// may all be blank; only the credentials are mandatory.
type RegisterRequest struct {
	UserID       string `json:"userid" validate:"required"`
	PasswordHash string `json:"password_hash" validate:"required"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	FiscalCode   string `json:"fiscal_code"`
	Email        string `json:"email"`
}

// Register creates a new user account. It returns store.ErrAlreadyExists
// when the userid is taken.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return store.ErrInvalidInput.WithMessage("registration data incomplete").WithCause(err)
	}

	// Check-then-insert; the users primary key is the backstop for the
	// race between two concurrent registrations of the same userid.
	exists, err := s.store.UserExists(ctx, req.UserID)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrAlreadyExists
	}

	user := &domain.User{
		UserID:       req.UserID,
		PasswordHash: req.PasswordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		FiscalCode:   req.FiscalCode,
		Email:        req.Email,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return err
		}
		s.logger.ErrorContext(ctx, "failed to create user", "error", err, "userid", req.UserID)
		return err
	}

	s.logger.InfoContext(ctx, "user registered", "userid", req.UserID)
	return nil
}

// Login checks a userid and password hash pair. It returns true when the
// account exists and the stored hash matches exactly.
func (s *AuthService) Login(ctx context.Context, userID, passwordHash string) (bool, error) {
	if userID == "" || passwordHash == "" {
		return false, nil
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	ok := subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(passwordHash)) == 1
	if !ok {
		s.logger.DebugContext(ctx, "login rejected", "userid", userID)
	}
	return ok, nil
}
