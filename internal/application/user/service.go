package user

import (
	"context"
	"fmt"
	"time"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/pkg/geo"
	"github.com/neighbourlink-api/internal/pkg/id"
	pkgtoken "github.com/neighbourlink-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername        = "username"
	fieldEmail           = "email"
	fieldPhone           = "phone"
	fieldFirstName       = "first_name"
	fieldLastName        = "last_name"
	fieldAddress         = "address"
	fieldPhotoKey        = "photo_key"
	fieldCoordinates     = "coordinates"
	fieldPreferredRadius = "preferred_radius_km"
	fieldNotifyEmergency = "notify_emergency"
	fieldNotifyResponses = "notify_responses"
	fieldRole            = "role"
	fieldEnable          = "enable"
	fieldPasswordHash    = "password_hash"
	fieldFCMToken        = "fcm_token"
	fieldPushEndpoint    = "push_endpoint_arn"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	RegisterWithSession(ctx context.Context, req domain.CreateUserRequest) (*domain.Session, string, string, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	UpdatePushToken(ctx context.Context, userID, fcmToken string) error
	Delete(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

// deviceRegistrar exchanges an FCM token for a push endpoint.
type deviceRegistrar interface {
	RegisterDevice(ctx context.Context, fcmToken string) (string, error)
}

type service struct {
	repo            userStore
	sessionRepo     sessionStore
	jwtProvider     jwtSigner
	push            deviceRegistrar
	refreshTokenDur time.Duration
	defaultRadiusKm float64
	maxRadiusKm     float64
}

type ServiceDeps struct {
	UserRepo        userStore
	SessionRepo     sessionStore
	JWTProvider     jwtSigner
	Push            deviceRegistrar
	RefreshTokenDur time.Duration
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:            deps.UserRepo,
		sessionRepo:     deps.SessionRepo,
		jwtProvider:     deps.JWTProvider,
		push:            deps.Push,
		refreshTokenDur: deps.RefreshTokenDur,
		defaultRadiusKm: deps.DefaultRadiusKm,
		maxRadiusKm:     deps.MaxRadiusKm,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:            id.New(),
		Username:          req.Username,
		Email:             req.Email,
		Phone:             req.Phone,
		PasswordHash:      string(hash),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Address:           req.Address,
		Role:              domain.RoleUser,
		PreferredRadiusKm: s.defaultRadiusKm,
		NotifyEmergency:   true,
		NotifyResponses:   true,
		AuthProvider:      "local",
		Enable:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) RegisterWithSession(ctx context.Context, req domain.CreateUserRequest) (*domain.Session, string, string, error) {
	u, err := s.Register(ctx, req)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, "", "", err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, "", "", err
	}
	sess.User = u
	return sess, bearer, refreshToken, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Username != nil {
		updates[fieldUsername] = *req.Username
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Address != nil {
		updates[fieldAddress] = *req.Address
	}
	if req.PhotoKey != nil {
		updates[fieldPhotoKey] = *req.PhotoKey
	}
	if req.Coordinates != nil {
		if _, err := geo.ParsePoint(req.Coordinates); err != nil {
			return nil, fmt.Errorf("invalid coordinates: %w", domain.ErrBadRequest)
		}
		updates[fieldCoordinates] = *req.Coordinates
	}
	if req.PreferredRadiusKm != nil {
		r := *req.PreferredRadiusKm
		if r <= 0 {
			return nil, fmt.Errorf("preferred radius must be positive: %w", domain.ErrBadRequest)
		}
		if s.maxRadiusKm > 0 && r > s.maxRadiusKm {
			r = s.maxRadiusKm
		}
		updates[fieldPreferredRadius] = r
	}
	if req.NotifyEmergency != nil {
		updates[fieldNotifyEmergency] = *req.NotifyEmergency
	}
	if req.NotifyResponses != nil {
		updates[fieldNotifyResponses] = *req.NotifyResponses
	}
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleAdmin, domain.RoleUser:
			updates[fieldRole] = *req.Role
		default:
			return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
		}
	}
	if req.Enable != nil {
		updates[fieldEnable] = *req.Enable
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// UpdatePushToken stores the device token and exchanges it for a push
// endpoint so alerts can be delivered. An empty token unregisters the device.
func (s *service) UpdatePushToken(ctx context.Context, userID, fcmToken string) error {
	updates := map[string]interface{}{
		fieldFCMToken:     fcmToken,
		fieldPushEndpoint: "",
	}
	if fcmToken != "" && s.push != nil {
		endpoint, err := s.push.RegisterDevice(ctx, fcmToken)
		if err != nil {
			return fmt.Errorf("register device: %w", err)
		}
		updates[fieldPushEndpoint] = endpoint
	}
	return s.repo.Update(ctx, userID, updates)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteByUser(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}
