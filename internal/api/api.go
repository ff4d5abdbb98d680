// Package api provides HTTP handlers and the main server logic for the
// growth coaching engine.
//
// It exposes RESTful endpoints for coaching-state resolution, task routing,
// and quota-protected assistant sessions, plus a Prometheus metrics endpoint.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localspark/growthcoach/internal/chat"
	"github.com/localspark/growthcoach/internal/coach"
	"github.com/localspark/growthcoach/internal/genai"
	"github.com/localspark/growthcoach/internal/scheduler"
	"github.com/localspark/growthcoach/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default server configuration.
const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"
	// DefaultSweepCron runs the idle-session sweeper every five minutes.
	DefaultSweepCron = "*/5 * * * *"
	// shutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	shutdownTimeout = 10 * time.Second
)

// Opts holds API server configuration.
type Opts struct {
	Addr      string
	SweepCron string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithSweepCron overrides the idle-session sweep schedule.
func WithSweepCron(expr string) Option {
	return func(o *Opts) { o.SweepCron = expr }
}

// Server wires the coaching engine behind HTTP handlers.
type Server struct {
	addr      string
	sweepCron string
	resolver  *coach.StageResolver
	router    *coach.TaskRouter
	chatMgr   *chat.Manager
	sched     *scheduler.Scheduler
	mux       *http.ServeMux
}

// NewServer builds a Server around the given collaborators.
func NewServer(resolver *coach.StageResolver, router *coach.TaskRouter, chatMgr *chat.Manager, sched *scheduler.Scheduler, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.SweepCron == "" {
		cfg.SweepCron = DefaultSweepCron
	}

	s := &Server{
		addr:      cfg.Addr,
		sweepCron: cfg.SweepCron,
		resolver:  resolver,
		router:    router,
		chatMgr:   chatMgr,
		sched:     sched,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /v1/coach/state", s.coachStateHandler)
	s.mux.HandleFunc("POST /v1/coach/route", s.coachRouteHandler)
	s.mux.HandleFunc("POST /v1/chat/sessions", s.openSessionHandler)
	s.mux.HandleFunc("GET /v1/chat/sessions/{id}", s.getSessionHandler)
	s.mux.HandleFunc("DELETE /v1/chat/sessions/{id}", s.disposeSessionHandler)
	s.mux.HandleFunc("POST /v1/chat/sessions/{id}/messages", s.sendMessageHandler)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

// Run builds all modules from their options and serves until interrupted.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, chatOpts []chat.Option, apiOpts []Option) error {
	st, err := store.NewStore(storeOpts...)
	if err != nil {
		slog.Error("api.Run: failed to create store", "error", err)
		return err
	}
	defer st.Close()

	genaiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Error("api.Run: failed to create GenAI client", "error", err)
		return err
	}

	advisor := coach.NewUpsellAdvisor()
	resolver := coach.NewStageResolver(advisor)
	builder := coach.NewContextBuilder()
	taskRouter := coach.NewTaskRouter()
	chatMgr := chat.NewManager(st, genaiClient, resolver, builder, chatOpts...)

	sched := scheduler.NewScheduler()
	defer sched.Stop()

	srv := NewServer(resolver, taskRouter, chatMgr, sched, apiOpts...)

	if err := sched.AddJob(srv.sweepCron, func() { chatMgr.SweepIdle() }); err != nil {
		slog.Error("api.Run: failed to schedule session sweeper", "error", err)
		return err
	}

	return srv.serve()
}

// serve starts the HTTP server and blocks until SIGINT/SIGTERM.
func (s *Server) serve() error {
	httpSrv := &http.Server{Addr: s.addr, Handler: s.mux}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.serve: growth coach API listening", "addr", s.addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server.serve: server failed", "error", err)
		return err
	case sig := <-sigCh:
		slog.Info("Server.serve: shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("Server.serve: graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
