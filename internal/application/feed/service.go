package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/pkg/geo"
)

// Request carries the viewer's location and radius for a proximity feed.
// Origin may be nil only when the caller wants an unfiltered feed; a radius
// without an origin is rejected. When RadiusKm is zero the viewer's stored
// preference applies, falling back to the configured default.
type Request struct {
	ViewerID string
	Origin   *geo.Point
	RadiusKm float64
	Limit    int
}

// Result is a proximity-filtered feed. Emergency is the subset of Posts with
// the highest urgency level, surfaced separately so clients can pin them.
type Result struct {
	Posts     []domain.Post
	Emergency []domain.Post
}

type Service interface {
	// Proximity returns recent posts within req.RadiusKm of req.Origin,
	// newest first. Posts without stored coordinates are always included.
	// Posts whose stored coordinates cannot be parsed are skipped, never
	// failing the whole feed.
	Proximity(ctx context.Context, req Request) (*Result, error)
}

type postStore interface {
	QueryRecent(ctx context.Context, limit int32) ([]domain.Post, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	posts           postStore
	users           userStore
	defaultRadiusKm float64
	maxRadiusKm     float64
}

type ServiceDeps struct {
	PostRepo        postStore
	UserRepo        userStore
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}

func NewService(deps ServiceDeps) Service {
	return &service{
		posts:           deps.PostRepo,
		users:           deps.UserRepo,
		defaultRadiusKm: deps.DefaultRadiusKm,
		maxRadiusKm:     deps.MaxRadiusKm,
	}
}

const defaultFeedLimit = 100

func (s *service) Proximity(ctx context.Context, req Request) (*Result, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("proximity feed needs an origin: %w", domain.ErrLocationRequired)
	}
	if err := req.Origin.Validate(); err != nil {
		return nil, err
	}
	radius := req.RadiusKm
	if radius <= 0 {
		radius = s.preferredRadius(ctx, req.ViewerID)
	}
	if s.maxRadiusKm > 0 && radius > s.maxRadiusKm {
		radius = s.maxRadiusKm
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	posts, err := s.posts.QueryRecent(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, p := range posts {
		if p.Coordinates == nil {
			// Location-less posts are visible to everyone.
			res.append(maskAnonymous(p))
			continue
		}
		point, err := geo.ParsePoint(p.Coordinates)
		if err != nil {
			// One bad record must not take down the feed.
			slog.Warn("skipping post with malformed coordinates", "post_id", p.PostID, "err", err)
			continue
		}
		d := geo.Distance(*req.Origin, point)
		if d > radius {
			continue
		}
		p.DistanceKm = &d
		res.append(maskAnonymous(p))
	}
	return res, nil
}

// preferredRadius resolves the radius for a request that carried none: the
// viewer's stored preference when available, else the configured default.
// A failed profile load falls back rather than failing the feed.
func (s *service) preferredRadius(ctx context.Context, viewerID string) float64 {
	if viewerID == "" || s.users == nil {
		return s.defaultRadiusKm
	}
	u, err := s.users.Get(ctx, viewerID)
	if err != nil {
		slog.Warn("could not load viewer for radius preference", "user_id", viewerID, "err", err)
		return s.defaultRadiusKm
	}
	if u.PreferredRadiusKm > 0 {
		return u.PreferredRadiusKm
	}
	return s.defaultRadiusKm
}

// append keeps insertion order and mirrors high-urgency posts into Emergency.
func (r *Result) append(p domain.Post) {
	r.Posts = append(r.Posts, p)
	if p.UrgencyLevel == domain.UrgencyHigh {
		r.Emergency = append(r.Emergency, p)
	}
}

// maskAnonymous strips the author from posts published anonymously.
func maskAnonymous(p domain.Post) domain.Post {
	if p.IsAnonymous {
		p.UserID = ""
	}
	return p
}
