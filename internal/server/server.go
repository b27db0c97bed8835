// Package server exposes the chore list over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/telemetry"
	"github.com/josephgoksu/chorepay/store"
)

// DefaultMaxBodyBytes bounds request bodies; inline images make them large.
const DefaultMaxBodyBytes = 5 << 20

// Options configures a Server.
type Options struct {
	Host           string
	Port           int
	StaticDir      string
	AllowedOrigins []string
	MaxBodyBytes   int64
	Version        string
	Logger         *slog.Logger
	Telemetry      telemetry.Client
}

// Server serves the task API, stored proof images and, optionally, a static site.
type Server struct {
	svc       *chores.Service
	proofs    *store.ProofStore
	log       *slog.Logger
	telemetry telemetry.Client
	origins   map[string]struct{}
	anyOrigin bool
	maxBody   int64
	staticDir string
	version   string
	server    *http.Server
}

// New builds a Server. proofs may be nil when uploads are not served.
func New(svc *chores.Service, proofs *store.ProofStore, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.NewNoopClient()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		svc:       svc,
		proofs:    proofs,
		log:       opts.Logger,
		telemetry: opts.Telemetry,
		origins:   make(map[string]struct{}, len(opts.AllowedOrigins)),
		maxBody:   opts.MaxBodyBytes,
		staticDir: opts.StaticDir,
		version:   opts.Version,
	}
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			s.anyOrigin = true
			continue
		}
		s.origins[o] = struct{}{}
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves in a goroutine tracked by wg. Listener errors go to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		s.log.Info("server listening", "addr", s.server.Addr)
		s.telemetry.Track(telemetry.EventServerStarted, nil)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
