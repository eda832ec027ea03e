package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neighbourlink-api/internal/application/session"
	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/infrastructure/google"
	"github.com/neighbourlink-api/internal/pkg/id"
)

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type Service interface {
	// GoogleSignIn verifies the ID token, provisioning an account on first
	// sign-in and linking by email when a local account already exists.
	GoogleSignIn(ctx context.Context, req GoogleSignInRequest) (*session.LoginResult, error)
}

type userStore interface {
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type tokenVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type sessionOpener interface {
	OpenForUser(ctx context.Context, u *domain.User) (*session.LoginResult, error)
}

type service struct {
	users           userStore
	verifier        tokenVerifier
	sessions        sessionOpener
	defaultRadiusKm float64
}

type ServiceDeps struct {
	UserRepo        userStore
	Verifier        tokenVerifier
	Sessions        sessionOpener
	DefaultRadiusKm float64
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:           deps.UserRepo,
		verifier:        deps.Verifier,
		sessions:        deps.Sessions,
		defaultRadiusKm: deps.DefaultRadiusKm,
	}
}

func (s *service) GoogleSignIn(ctx context.Context, req GoogleSignInRequest) (*session.LoginResult, error) {
	payload, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if !payload.EmailVerified {
		return nil, fmt.Errorf("google account email not verified: %w", domain.ErrUnauthorized)
	}

	u, err := s.users.GetByGoogleSub(ctx, payload.Sub)
	if err != nil {
		u, err = s.linkOrProvision(ctx, payload)
		if err != nil {
			return nil, err
		}
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.sessions.OpenForUser(ctx, u)
}

// linkOrProvision attaches the Google identity to an existing account with
// the same email, or creates a fresh one.
func (s *service) linkOrProvision(ctx context.Context, payload *google.Payload) (*domain.User, error) {
	if existing, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		updates := map[string]interface{}{"google_sub": payload.Sub}
		if err := s.users.Update(ctx, existing.UserID, updates); err != nil {
			return nil, err
		}
		existing.GoogleSub = payload.Sub
		return existing, nil
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:            id.New(),
		Username:          s.usernameFromEmail(ctx, payload.Email),
		Email:             payload.Email,
		FirstName:         payload.FirstName,
		LastName:          payload.LastName,
		Role:              domain.RoleUser,
		PreferredRadiusKm: s.defaultRadiusKm,
		NotifyEmergency:   true,
		NotifyResponses:   true,
		AuthProvider:      "google",
		GoogleSub:         payload.Sub,
		Enable:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// usernameFromEmail derives a free username from the email's local part,
// appending a short suffix when taken.
func (s *service) usernameFromEmail(ctx context.Context, email string) string {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	if _, err := s.users.GetByUsername(ctx, base); err != nil {
		return base
	}
	suffix := strings.ToLower(id.New())
	return base + "-" + suffix[len(suffix)-6:]
}
