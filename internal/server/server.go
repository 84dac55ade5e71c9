package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kilimobot/kilimobot/internal/channels"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/store"
)

// Server is the HTTP surface: the web chat API plus whatever webhook
// routes the channel adapters mount.
type Server struct {
	cfg        config.Config
	store      *store.Store
	processor  *channels.Processor
	router     chi.Router
	httpServer *http.Server
}

// New creates the server and its API routes. Webhooks are mounted
// separately via MountWebhooks.
func New(cfg config.Config, st *store.Store, processor *channels.Processor) *Server {
	s := &Server{cfg: cfg, store: st, processor: processor}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health stays outside every rate-limit scope.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "kilimobot"})
	})

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(LimitGeneral))

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(LimitChat))
			r.Post("/api/chat", s.handleChat)
		})
		r.Get("/api/chat/history", s.handleHistory)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(LimitLocation))
			r.Post("/api/user/location", s.handleLocation)
		})
	})

	return r
}

// MountWebhooks registers transport webhook routes under the webhook
// rate-limit scope.
func (s *Server) MountWebhooks(register func(chi.Router)) {
	s.router.Group(func(r chi.Router) {
		r.Use(RateLimit(LimitWebhook))
		register(r)
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("kilimobot server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}
