package handler

import (
	"net/http"
	"strconv"

	"github.com/neighbourlink-api/internal/application/feed"
	"github.com/neighbourlink-api/internal/pkg/geo"
	"github.com/neighbourlink-api/internal/transport/http/middleware"
)

// FeedHandler serves the proximity feed.
type FeedHandler struct {
	svc feed.Service
}

func NewFeedHandler(svc feed.Service) *FeedHandler { return &FeedHandler{svc: svc} }

// Proximity handles GET /feed?lat=&lng=&radius_km=&limit=.
func (h *FeedHandler) Proximity(w http.ResponseWriter, r *http.Request) {
	req, ok := parseFeedRequest(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Proximity(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FeedEnvelope{Posts: res.Posts, Emergency: res.Emergency})
}

// Emergency handles GET /feed/emergency — only the high-urgency subset.
func (h *FeedHandler) Emergency(w http.ResponseWriter, r *http.Request) {
	req, ok := parseFeedRequest(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Proximity(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FeedEnvelope{Emergency: res.Emergency})
}

func parseFeedRequest(w http.ResponseWriter, r *http.Request) (feed.Request, bool) {
	q := r.URL.Query()
	var req feed.Request
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		req.ViewerID = claims.UserID
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr != "" || lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			writeError(w, http.StatusBadRequest, "lat and lng must be numeric")
			return feed.Request{}, false
		}
		req.Origin = &geo.Point{Lat: lat, Lng: lng}
	}
	if v := q.Get("radius_km"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 {
			writeError(w, http.StatusBadRequest, "radius_km must be a positive number")
			return feed.Request{}, false
		}
		req.RadiusKm = radius
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return feed.Request{}, false
		}
		req.Limit = limit
	}
	return req, true
}
