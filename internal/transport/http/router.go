package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/neighbourlink-api/internal/application/alert"
	"github.com/neighbourlink-api/internal/application/auth"
	"github.com/neighbourlink-api/internal/application/category"
	"github.com/neighbourlink-api/internal/application/feed"
	fileapp "github.com/neighbourlink-api/internal/application/file"
	"github.com/neighbourlink-api/internal/application/notification"
	"github.com/neighbourlink-api/internal/application/post"
	"github.com/neighbourlink-api/internal/application/response"
	"github.com/neighbourlink-api/internal/application/session"
	"github.com/neighbourlink-api/internal/application/user"
	"github.com/neighbourlink-api/internal/config"
	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/transport/http/handler"
	appmiddleware "github.com/neighbourlink-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	alertSvc := alert.NewService(alert.ServiceDeps{
		UserRepo:         deps.UserRepo,
		NotificationRepo: deps.NotificationRepo,
		Push:             deps.PushSender,
		DefaultRadiusKm:  cfg.DefaultRadiusKm,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		UserRepo:        deps.UserRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		JWTProvider:     deps.JWTProvider,
		Push:            deps.PushSender,
		RefreshTokenDur: cfg.RefreshTokenDur,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		MaxRadiusKm:     cfg.MaxRadiusKm,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:        deps.UserRepo,
		Verifier:        deps.GoogleVerifier,
		Sessions:        sessionSvc,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
	})
	postSvc := post.NewService(post.ServiceDeps{
		PostRepo:        deps.PostRepo,
		Alerts:          alertSvc,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		MaxRadiusKm:     cfg.MaxRadiusKm,
	})
	feedSvc := feed.NewService(feed.ServiceDeps{
		PostRepo:        deps.PostRepo,
		UserRepo:        deps.UserRepo,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		MaxRadiusKm:     cfg.MaxRadiusKm,
	})
	responseSvc := response.NewService(response.ServiceDeps{
		PostRepo: deps.PostRepo,
		Notifier: alertSvc,
	})
	notifSvc := notification.NewService(deps.NotificationRepo)
	fileSvc := fileapp.NewService(fileapp.ServiceDeps{
		FileRepo:     deps.FileRepo,
		Objects:      deps.S3Store,
		SignedURLTTL: cfg.SignedURLTTL,
	})
	categorySvc := category.NewService(deps.CategoryRepo)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	postH := handler.NewPostHandler(postSvc, responseSvc)
	feedH := handler.NewFeedHandler(feedSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	fileH := handler.NewFileHandler(fileSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/sessions/google", authH.GoogleSignIn)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/feed", feedH.Proximity)
			r.Get("/feed/emergency", feedH.Emergency)

			r.Post("/posts", postH.Create)
			r.Get("/posts/mine", postH.ListMine)
			r.Get("/posts/{id}", postH.Get)
			r.Put("/posts/{id}", postH.Update)
			r.Delete("/posts/{id}", postH.Delete)
			r.Post("/posts/{id}/responses", postH.Respond)
			r.Post("/posts/{id}/accept", postH.Accept)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Put("/users/me/push-token", userH.PushToken)
			r.Post("/users/me/change-password", userH.ChangePassword)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			r.Post("/files", fileH.Upload)
			r.Get("/files/{id}", fileH.GetSigned)
			r.Delete("/files/{id}", fileH.Delete)

			r.Get("/categories", categoryH.List)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)
			})
		})
	})

	return r
}
