package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/seatlock/internal/channel"
	"github.com/five82/seatlock/internal/gateway"
	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/seatapi"
	"github.com/five82/seatlock/internal/state"
)

var (
	errSessionStarted = errors.New("session already started")
	errNoSource       = errors.New("session needs a seat source")
	errNoBackend      = errors.New("session needs an action backend")
)

// SessionOptions configure a Session.
type SessionOptions struct {
	Source  seatapi.SeatFetcher
	Backend seatapi.Reserver
	// Dialer is optional. Without it the session relies on polling alone.
	Dialer         channel.Dialer
	UserID         int64
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	RequestTimeout time.Duration
	Notices        *notify.Center
	Logger         *zap.Logger
}

// Session owns the sync core: the reconciler, the action gateway, the push
// channel and the poller. It is the only thing the UI talks to.
type Session struct {
	store   *state.Store
	gateway *gateway.Gateway
	channel *channel.Manager
	notices *notify.Center
	log     *zap.Logger

	userID         atomic.Int64
	pollInterval   time.Duration
	requestTimeout time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	group   *errgroup.Group
	err     error
}

// NewSession wires the components together. Nothing runs until Start.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Source == nil {
		return nil, errNoSource
	}
	if opts.Backend == nil {
		return nil, errNoBackend
	}
	if opts.UserID < 0 {
		return nil, fmt.Errorf("user %d: %w", opts.UserID, gateway.ErrInvalidUser)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	notices := opts.Notices
	if notices == nil {
		notices = notify.NewCenter(0)
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	store := state.NewStore(state.Options{Source: opts.Source, Notices: notices, Logger: log})
	s := &Session{
		store: store,
		gateway: gateway.New(gateway.Options{
			Backend:   opts.Backend,
			Refresher: store,
			Notices:   notices,
			Logger:    log,
		}),
		notices:        notices,
		log:            log.Named("session"),
		pollInterval:   opts.PollInterval,
		requestTimeout: timeout,
	}
	if opts.Dialer != nil {
		s.channel = channel.NewManager(channel.Options{
			Dialer:  opts.Dialer,
			Delay:   opts.ReconnectDelay,
			Notices: notices,
			Logger:  log,
		})
	}
	userID := opts.UserID
	if userID == 0 {
		userID = 1
	}
	s.userID.Store(userID)
	return s, nil
}

// Start launches the poller, the push channel and the bridge between them and
// the reconciler. It returns immediately; Stop shuts everything down.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errSessionStarted
	}
	s.started = true

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	s.cancel = cancel
	s.group = g

	g.Go(func() error {
		return RunPoller(gctx, s.store, s.pollInterval, s.requestTimeout)
	})
	if s.channel != nil {
		g.Go(func() error {
			return s.channel.Run(gctx)
		})
		g.Go(func() error {
			return s.bridge(gctx)
		})
	}
	s.log.Info("session started", zap.Int64("user_id", s.UserID()), zap.Bool("push", s.channel != nil))
	return nil
}

// Stop cancels every loop and waits for them. Calling it again returns the
// first result.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped {
		return s.err
	}
	s.stopped = true
	s.cancel()
	err := s.group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	s.err = err
	s.log.Info("session stopped")
	return err
}

// bridge turns push events into refreshes. A reconnect also refreshes, since
// changes may have been missed while the channel was down.
func (s *Session) bridge(ctx context.Context) error {
	events := s.channel.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			s.log.Debug("push event", zap.Stringer("kind", ev.Kind), zap.Int64("seat_id", ev.SeatID))
			_ = s.Refresh(ctx)
		}
	}
}

// Refresh re-reads the inventory now.
func (s *Session) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()
	return s.store.Refresh(ctx)
}

// Hold asks the authority to hold seatID for the current user.
func (s *Session) Hold(ctx context.Context, seatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 2*s.requestTimeout)
	defer cancel()
	return s.gateway.Hold(ctx, seatID, s.UserID())
}

// Confirm asks the authority to sell seatID to the current user.
func (s *Session) Confirm(ctx context.Context, seatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 2*s.requestTimeout)
	defer cancel()
	return s.gateway.Confirm(ctx, seatID, s.UserID())
}

// Snapshot returns a copy of the current inventory belief.
func (s *Session) Snapshot() state.Snapshot {
	return s.store.Snapshot()
}

// Health returns the reconciler's refresh health.
func (s *Session) Health() state.Health {
	return s.store.Health()
}

// Subscribe registers fn for every new snapshot.
func (s *Session) Subscribe(fn state.Listener) (cancel func()) {
	return s.store.Subscribe(fn)
}

// Notices subscribes to toasts.
func (s *Session) Notices() (<-chan notify.Notice, func()) {
	return s.notices.Subscribe()
}

// ConnectionState reports the push channel state. Sessions without a push
// channel are always closed.
func (s *Session) ConnectionState() channel.State {
	if s.channel == nil {
		return channel.StateClosed
	}
	return s.channel.State()
}

// UserID returns the identity actions are sent with.
func (s *Session) UserID() int64 {
	return s.userID.Load()
}

// SetUserID switches the acting user.
func (s *Session) SetUserID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("user %d: %w", id, gateway.ErrInvalidUser)
	}
	s.userID.Store(id)
	return nil
}
