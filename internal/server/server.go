// Package server exposes retrieval, chat, and comparison over a JSON HTTP
// API so the demonstrator can be driven from a browser frontend.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cholinyo/chatbot-comparador/internal/gateway"
	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// Config holds server configuration.
type Config struct {
	Addr            string
	AllowAll        bool // allow all CORS origins (dev mode)
	DefaultK        int
	DefaultBackend  gateway.BackendDescriptor
	CompareBackends []gateway.BackendDescriptor
}

// Server serves the comparador HTTP API.
type Server struct {
	cfg        Config
	fuser      *retrieval.Fuser
	gw         *gateway.Gateway
	indices    []*vectorstore.SourceIndex
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, fuser *retrieval.Fuser, gw *gateway.Gateway, indices []*vectorstore.SourceIndex) *Server {
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = 5
	}
	s := &Server{
		cfg:     cfg,
		fuser:   fuser,
		gw:      gw,
		indices: indices,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/retrieve", s.handleRetrieve)
		r.Post("/chat", s.handleChat)
		r.Post("/compare", s.handleCompare)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("comparador server listening on %s", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
