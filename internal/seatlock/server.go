package seatlock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/seatlock/internal/seatapi"
)

const (
	DefaultAddr       = "127.0.0.1:8000"
	DefaultSweepEvery = time.Second
	shutdownTimeout   = 5 * time.Second
)

// ServerOptions configure a standalone authority.
type ServerOptions struct {
	Addr           string
	Seats          int
	HoldTTL        time.Duration
	SweepEvery     time.Duration
	Prefill        float64
	Seed           int64 // zero picks a time-based seed
	RedisAddr      string
	RedisChannel   string
	OriginPatterns []string
	Logger         *zap.Logger
}

// Server bundles the manager, push hub and HTTP handler.
type Server struct {
	Manager *Manager
	Hub     *Hub

	opts      ServerOptions
	log       *zap.Logger
	handler   http.Handler
	publisher *RedisPublisher
}

// NewServer builds a Server. When RedisAddr is set every change is also
// published to RedisChannel.
func NewServer(ctx context.Context, opts ServerOptions) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = DefaultSweepEvery
	}

	mgr := NewManager(ManagerOptions{Seats: opts.Seats, HoldTTL: opts.HoldTTL})
	if opts.Prefill > 0 {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		mgr.Prefill(opts.Prefill, rand.New(rand.NewSource(seed)))
	}
	hub := NewHub(log, opts.OriginPatterns...)

	s := &Server{Manager: mgr, Hub: hub, opts: opts, log: log.Named("seatlock")}
	if opts.RedisAddr != "" {
		pub, err := NewRedisPublisher(ctx, opts.RedisAddr, opts.RedisChannel)
		if err != nil {
			return nil, err
		}
		s.publisher = pub
	}
	mgr.OnChange(s.announce)
	s.handler = NewHandler(HandlerOptions{Manager: mgr, Hub: hub, Logger: log})
	return s, nil
}

// Handler returns the HTTP handler, for embedding in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// announce tells push subscribers that seatID changed.
func (s *Server) announce(seatID int64) {
	msg, err := json.Marshal(seatapi.PushMessage{Type: seatapi.PushTypeSeatUpdate, SeatID: seatID})
	if err != nil {
		return
	}
	s.Hub.Broadcast(msg)
	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.log.Warn("redis publish failed", zap.Error(err))
		}
	}
}

// RunExpiry sweeps expired holds every interval until ctx is cancelled.
func (s *Server) RunExpiry(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if released := s.Manager.SweepExpired(); len(released) > 0 {
				s.log.Info("released expired holds", zap.Int64s("seats", released))
			}
		}
	}
}

// ListenAndServe serves on opts.Addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server and the expiry worker on ln until ctx is
// cancelled, then shuts both down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("seat authority listening",
			zap.String("addr", ln.Addr().String()),
			zap.Int("seats", len(s.Manager.Seats())),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.RunExpiry(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
