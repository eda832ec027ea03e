package handler

import (
	"encoding/json"
	"net/http"

	"github.com/neighbourlink-api/internal/application/auth"
	"github.com/neighbourlink-api/internal/pkg/validate"
)

// AuthHandler handles third-party sign-in endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req auth.GoogleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.GoogleSignIn(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		AccessToken:  res.Bearer,
		RefreshToken: res.RefreshToken,
		Session:      res.Session,
	})
}
