package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/neighbourlink-api/internal/application/feed"
	"github.com/neighbourlink-api/internal/domain"
	jwtinfra "github.com/neighbourlink-api/internal/infrastructure/jwt"
	"github.com/neighbourlink-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockFeedService struct{ mock.Mock }

func (m *mockFeedService) Proximity(ctx context.Context, req feed.Request) (*feed.Result, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*feed.Result); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ feed.Service = (*mockFeedService)(nil)

func doFeed(h *FeedHandler, target, userID string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/feed", h.Proximity)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		claims := &jwtinfra.Claims{UserID: userID, Role: domain.RoleUser}
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, claims))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestFeedProximity_ViewerCarriedWhenRadiusOmitted(t *testing.T) {
	fs := &mockFeedService{}
	fs.On("Proximity", mock.Anything, mock.MatchedBy(func(req feed.Request) bool {
		return req.ViewerID == "alice" && req.RadiusKm == 0 && req.Origin != nil
	})).Return(&feed.Result{}, nil)
	h := NewFeedHandler(fs)

	rr := doFeed(h, "/feed?lat=12.98&lng=77.60", "alice")

	assert.Equal(t, http.StatusOK, rr.Code)
	fs.AssertExpectations(t)
}

func TestFeedProximity_ExplicitRadiusParsed(t *testing.T) {
	fs := &mockFeedService{}
	fs.On("Proximity", mock.Anything, mock.MatchedBy(func(req feed.Request) bool {
		return req.ViewerID == "alice" && req.RadiusKm == 5
	})).Return(&feed.Result{}, nil)
	h := NewFeedHandler(fs)

	rr := doFeed(h, "/feed?lat=12.98&lng=77.60&radius_km=5", "alice")

	assert.Equal(t, http.StatusOK, rr.Code)
	fs.AssertExpectations(t)
}

func TestFeedProximity_NonNumericLatRejected(t *testing.T) {
	fs := &mockFeedService{}
	h := NewFeedHandler(fs)

	rr := doFeed(h, "/feed?lat=abc&lng=77.60", "alice")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	fs.AssertNotCalled(t, "Proximity", mock.Anything, mock.Anything)
}
