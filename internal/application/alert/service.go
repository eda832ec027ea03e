package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/pkg/geo"
	"github.com/neighbourlink-api/internal/pkg/id"
)

// Service delivers emergency alerts and response notifications. Delivery is
// best-effort: a user who cannot be reached (no token, no location, push
// failure) is skipped without surfacing an error to the poster.
type Service interface {
	// EmergencyFanout pushes an alert to every eligible subscriber within
	// the post's visibility radius. No-op for non-emergency posts.
	EmergencyFanout(ctx context.Context, post *domain.Post)
	// ResponseReceived notifies the post owner that someone offered help.
	ResponseReceived(ctx context.Context, post *domain.Post, responderID string)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	ScanAlertSubscribers(ctx context.Context) ([]domain.User, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type pushSender interface {
	SendPush(ctx context.Context, endpointARN, title, body string, data map[string]string) error
}

type service struct {
	users           userStore
	notifications   notificationStore
	push            pushSender
	defaultRadiusKm float64
}

type ServiceDeps struct {
	UserRepo         userStore
	NotificationRepo notificationStore
	Push             pushSender
	DefaultRadiusKm  float64
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:           deps.UserRepo,
		notifications:   deps.NotificationRepo,
		push:            deps.Push,
		defaultRadiusKm: deps.DefaultRadiusKm,
	}
}

func (s *service) EmergencyFanout(ctx context.Context, post *domain.Post) {
	if post.UrgencyLevel != domain.UrgencyHigh || post.PostType != domain.PostTypeNeed {
		return
	}
	if post.Coordinates == nil {
		// No location, no radius to alert within.
		slog.Info("emergency post has no coordinates, skipping fan-out", "post_id", post.PostID)
		return
	}
	origin, err := geo.ParsePoint(post.Coordinates)
	if err != nil {
		slog.Warn("emergency post has malformed coordinates, skipping fan-out", "post_id", post.PostID, "err", err)
		return
	}
	radius := post.VisibilityRadiusKm
	if radius <= 0 {
		radius = s.defaultRadiusKm
	}

	subscribers, err := s.users.ScanAlertSubscribers(ctx)
	if err != nil {
		slog.Error("could not load alert subscribers", "post_id", post.PostID, "err", err)
		return
	}
	recipients := Eligible(origin, radius, post.UserID, subscribers)

	title := "Emergency nearby"
	body := post.Title
	data := map[string]string{"type": domain.NotificationEmergency, "post_id": post.PostID}
	sent := 0
	for _, u := range recipients {
		s.record(ctx, u.UserID, domain.NotificationEmergency, post.PostID, title, body)
		// push is nil when no sender is configured; in-app notifications
		// still land.
		if s.push == nil {
			continue
		}
		if err := s.push.SendPush(ctx, u.PushEndpointARN, title, body, data); err != nil {
			slog.Warn("emergency push failed", "user_id", u.UserID, "post_id", post.PostID, "err", err)
			continue
		}
		sent++
	}
	slog.Info("emergency fan-out complete", "post_id", post.PostID, "eligible", len(recipients), "sent", sent)
}

// Eligible filters subscribers down to those who can actually receive an
// alert for an emergency at origin: opted in (the scan guarantees that), not
// the poster, holding a device token, with parseable coordinates inside
// radiusKm. Exclusion is silent per user.
func Eligible(origin geo.Point, radiusKm float64, posterID string, subscribers []domain.User) []domain.User {
	var out []domain.User
	for _, u := range subscribers {
		if u.UserID == posterID {
			continue
		}
		if u.FCMToken == nil || *u.FCMToken == "" || u.PushEndpointARN == "" {
			continue
		}
		if u.Coordinates == nil {
			continue
		}
		p, err := geo.ParsePoint(u.Coordinates)
		if err != nil {
			continue
		}
		if geo.Distance(origin, p) > radiusKm {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (s *service) ResponseReceived(ctx context.Context, post *domain.Post, responderID string) {
	owner, err := s.users.Get(ctx, post.UserID)
	if err != nil {
		slog.Warn("could not load post owner for response notification", "post_id", post.PostID, "err", err)
		return
	}
	if !owner.NotifyResponses {
		return
	}
	title := "Someone offered to help"
	body := fmt.Sprintf("Your post %q has a new response", post.Title)
	s.record(ctx, owner.UserID, domain.NotificationResponse, post.PostID, title, body)
	if s.push == nil || owner.PushEndpointARN == "" {
		return
	}
	data := map[string]string{"type": domain.NotificationResponse, "post_id": post.PostID}
	if err := s.push.SendPush(ctx, owner.PushEndpointARN, title, body, data); err != nil {
		slog.Warn("response push failed", "user_id", owner.UserID, "post_id", post.PostID, "err", err)
	}
}

// record writes the in-app notification row. Failures are logged, not
// returned; the push may still go out.
func (s *service) record(ctx context.Context, userID, kind, postID, title, body string) {
	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Type:           kind,
		PostID:         postID,
		Title:          title,
		Message:        body,
		Readed:         0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		slog.Warn("could not store notification", "user_id", userID, "type", kind, "err", err)
	}
}
