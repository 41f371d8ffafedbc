package server

import (
	"context"
	"net/http"
	"time"

	"github.com/street-spirit/shrine-backend/internal/auth"
	"github.com/street-spirit/shrine-backend/internal/config"
	"github.com/street-spirit/shrine-backend/internal/fortune"
	"github.com/street-spirit/shrine-backend/internal/http/handlers"
	"github.com/street-spirit/shrine-backend/internal/middleware"
	"github.com/street-spirit/shrine-backend/internal/shrine"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, generator fortune.Generator) *Server {
	mux := http.NewServeMux()

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	service := shrine.NewService(store, generator, nil)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(store, tokenManager).Register(mux)
	handlers.NewFortuneHandler(service, cfg.StripePaymentLink).Register(mux)
	handlers.NewReadingsHandler(store).Register(mux)
	handlers.NewEmaHandler(store).Register(mux)
	handlers.NewShrineHandler(store, service).Register(mux)
	handlers.NewWebhookHandler(store, cfg.StripeWebhookSecret).Register(mux)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(middleware.Authn(tokenManager, mux)))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second, // fortune generation waits on the model
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
