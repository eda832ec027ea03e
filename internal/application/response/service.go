package response

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/neighbourlink-api/internal/domain"
)

// Service coordinates responses to posts. The hard guarantee is at most one
// response per user per post, held even when the same user submits
// concurrently: every responders write is a conditional update on the post's
// version counter, so of two racing writers exactly one lands and the other
// re-reads, sees the duplicate, and is rejected with ErrAlreadyResponded.
type Service interface {
	// Respond records userID's offer to help on postID.
	Respond(ctx context.Context, postID, userID string) (*domain.Post, error)
	// Accept lets the post owner mark a responder as accepted.
	Accept(ctx context.Context, postID, ownerID, responderID string) (*domain.Post, error)
}

type postStore interface {
	Get(ctx context.Context, postID string) (*domain.Post, error)
	AppendResponder(ctx context.Context, postID string, expectedVersion int64, entry domain.ResponderEntry) error
	ReplaceResponders(ctx context.Context, postID string, expectedVersion int64, responders []domain.ResponderEntry) error
}

// Notifier is told about accepted responses so the responder can be pinged.
// Implemented by the alert service; a nil Notifier disables notifications.
type Notifier interface {
	ResponseReceived(ctx context.Context, post *domain.Post, responderID string)
}

type service struct {
	posts       postStore
	notifier    Notifier
	maxAttempts int
	backoffBase time.Duration
}

type ServiceDeps struct {
	PostRepo postStore
	Notifier Notifier
	// MaxAttempts bounds the contention retry loop; zero means the default.
	MaxAttempts int
	// BackoffBase is the first retry delay; it doubles per attempt with
	// jitter. Zero means the default.
	BackoffBase time.Duration
}

const (
	defaultMaxAttempts = 5
	defaultBackoffBase = 20 * time.Millisecond
)

func NewService(deps ServiceDeps) Service {
	s := &service{
		posts:       deps.PostRepo,
		notifier:    deps.Notifier,
		maxAttempts: deps.MaxAttempts,
		backoffBase: deps.BackoffBase,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.backoffBase <= 0 {
		s.backoffBase = defaultBackoffBase
	}
	return s
}

func (s *service) Respond(ctx context.Context, postID, userID string) (*domain.Post, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, attempt); err != nil {
				return nil, err
			}
		}
		p, err := s.posts.Get(ctx, postID)
		if err != nil {
			return nil, err
		}
		if p.UserID == userID {
			return nil, fmt.Errorf("cannot respond to own post: %w", domain.ErrBadRequest)
		}
		// The duplicate check and the append are tied together by the
		// version condition: if another response lands in between, the
		// append fails and we re-check against the fresh list.
		if p.HasResponder(userID) {
			return nil, fmt.Errorf("user %s already responded to post %s: %w", userID, postID, domain.ErrAlreadyResponded)
		}
		entry := domain.ResponderEntry{
			UserID:      userID,
			Accepted:    false,
			RespondedAt: time.Now().UTC(),
		}
		err = s.posts.AppendResponder(ctx, postID, p.Version, entry)
		if err == nil {
			p.Responders = append(p.Responders, entry)
			p.Version++
			s.notifyOwner(p, userID)
			return p, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		slog.Debug("responder write lost version race, retrying", "post_id", postID, "user_id", userID, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("post %s under contention after %d attempts: %w", postID, s.maxAttempts, lastErr)
}

func (s *service) Accept(ctx context.Context, postID, ownerID, responderID string) (*domain.Post, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, attempt); err != nil {
				return nil, err
			}
		}
		p, err := s.posts.Get(ctx, postID)
		if err != nil {
			return nil, err
		}
		if p.UserID != ownerID {
			return nil, fmt.Errorf("only the post owner can accept responses: %w", domain.ErrForbidden)
		}
		updated := make([]domain.ResponderEntry, len(p.Responders))
		copy(updated, p.Responders)
		found := false
		for i := range updated {
			if updated[i].UserID == responderID {
				updated[i].Accepted = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no response from user %s on post %s: %w", responderID, postID, domain.ErrNotFound)
		}
		err = s.posts.ReplaceResponders(ctx, postID, p.Version, updated)
		if err == nil {
			p.Responders = updated
			p.Version++
			return p, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("post %s under contention after %d attempts: %w", postID, s.maxAttempts, lastErr)
}

// sleep waits out the backoff for the given attempt, doubling each time with
// up to 50% jitter, and aborts early when ctx is done.
func (s *service) sleep(ctx context.Context, attempt int) error {
	d := s.backoffBase << (attempt - 1)
	d += time.Duration(rand.Int63n(int64(d)/2 + 1))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *service) notifyOwner(p *domain.Post, responderID string) {
	if s.notifier == nil {
		return
	}
	// Detached from the request context so delivery survives the response.
	go s.notifier.ResponseReceived(context.Background(), p, responderID)
}
