package post

import (
	"context"
	"fmt"
	"time"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/pkg/geo"
	"github.com/neighbourlink-api/internal/pkg/id"
	"github.com/neighbourlink-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldUrgency     = "urgency_level"
	fieldLocation    = "location"
	fieldDuration    = "duration"
)

type UpdatePostRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	UrgencyLevel *int    `json:"urgency_level" validate:"omitempty,min=1,max=3"`
	Location     *string `json:"location"`
	Duration     *string `json:"duration"`
}

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreatePostRequest) (*domain.Post, error)
	Get(ctx context.Context, postID string) (*domain.Post, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Update(ctx context.Context, postID, callerID string, req UpdatePostRequest) (*domain.Post, error)
	Delete(ctx context.Context, postID, callerID, callerRole string) error
}

type postStore interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	QueryByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Update(ctx context.Context, postID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, postID string) error
}

// alertSender fans out emergency pushes after an urgent post is created.
type alertSender interface {
	EmergencyFanout(ctx context.Context, post *domain.Post)
}

type service struct {
	posts           postStore
	alerts          alertSender
	defaultRadiusKm float64
	maxRadiusKm     float64
}

type ServiceDeps struct {
	PostRepo        postStore
	Alerts          alertSender
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}

func NewService(deps ServiceDeps) Service {
	return &service{
		posts:           deps.PostRepo,
		alerts:          deps.Alerts,
		defaultRadiusKm: deps.DefaultRadiusKm,
		maxRadiusKm:     deps.MaxRadiusKm,
	}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreatePostRequest) (*domain.Post, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if req.Coordinates != nil {
		if _, err := geo.ParsePoint(req.Coordinates); err != nil {
			return nil, fmt.Errorf("invalid coordinates: %w", domain.ErrBadRequest)
		}
	}
	radius := req.VisibilityRadiusKm
	if radius <= 0 {
		radius = s.defaultRadiusKm
	}
	if s.maxRadiusKm > 0 && radius > s.maxRadiusKm {
		radius = s.maxRadiusKm
	}
	now := time.Now().UTC()
	p := &domain.Post{
		PostID:             id.New(),
		UserID:             userID,
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		UrgencyLevel:       req.UrgencyLevel,
		PostType:           req.PostType,
		Location:           req.Location,
		Coordinates:        req.Coordinates,
		VisibilityRadiusKm: radius,
		PhotoKeys:          req.PhotoKeys,
		Duration:           req.Duration,
		IsAnonymous:        req.IsAnonymous,
		Responders:         []domain.ResponderEntry{},
		Enable:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            0,
	}
	if err := s.posts.Put(ctx, p); err != nil {
		return nil, err
	}
	if s.alerts != nil && p.UrgencyLevel == domain.UrgencyHigh && p.PostType == domain.PostTypeNeed {
		// Detached from the request: the poster should not wait on fan-out.
		go s.alerts.EmergencyFanout(context.Background(), p)
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, postID string) (*domain.Post, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.IsAnonymous {
		p.UserID = ""
	}
	return p, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	return s.posts.QueryByUser(ctx, userID)
}

func (s *service) Update(ctx context.Context, postID, callerID string, req UpdatePostRequest) (*domain.Post, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.UserID != callerID {
		return nil, fmt.Errorf("only the author can edit a post: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Category != nil {
		updates[fieldCategory] = *req.Category
	}
	if req.UrgencyLevel != nil {
		updates[fieldUrgency] = *req.UrgencyLevel
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.Duration != nil {
		updates[fieldDuration] = *req.Duration
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.posts.Update(ctx, postID, updates); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, postID)
}

func (s *service) Delete(ctx context.Context, postID, callerID, callerRole string) error {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != callerID && callerRole != domain.RoleAdmin {
		return fmt.Errorf("only the author or an admin can delete a post: %w", domain.ErrForbidden)
	}
	return s.posts.SoftDelete(ctx, postID)
}
