package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/seatapi"
)

var (
	// ErrActionPending is returned when an identical action is still in flight.
	ErrActionPending = errors.New("action already in progress")
	ErrInvalidSeat   = errors.New("seat id must be positive")
	ErrInvalidUser   = errors.New("user id must be positive")
)

// Kind is the action type.
type Kind int

const (
	KindHold Kind = iota
	KindConfirm
)

func (k Kind) String() string {
	if k == KindConfirm {
		return "confirm"
	}
	return "hold"
}

// PendingAction identifies an in-flight request.
type PendingAction struct {
	SeatID int64
	UserID int64
	Kind   Kind
}

// Refresher re-reads the authoritative state.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Options configure a Gateway.
type Options struct {
	Backend   seatapi.Reserver
	Refresher Refresher        // optional
	Notices   notify.Publisher // optional
	Logger    *zap.Logger      // optional
}

// Gateway issues user actions.
type Gateway struct {
	backend   seatapi.Reserver
	refresher Refresher
	notices   notify.Publisher
	log       *zap.Logger

	mu      sync.Mutex
	pending map[PendingAction]struct{}
}

// New builds a Gateway.
func New(opts Options) *Gateway {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		backend:   opts.Backend,
		refresher: opts.Refresher,
		notices:   opts.Notices,
		log:       log.Named("gateway"),
		pending:   make(map[PendingAction]struct{}),
	}
}

// Hold asks the authority to hold seatID for userID.
func (g *Gateway) Hold(ctx context.Context, seatID, userID int64) error {
	return g.run(ctx, PendingAction{SeatID: seatID, UserID: userID, Kind: KindHold})
}

// Confirm asks the authority to sell a seat held by userID.
func (g *Gateway) Confirm(ctx context.Context, seatID, userID int64) error {
	return g.run(ctx, PendingAction{SeatID: seatID, UserID: userID, Kind: KindConfirm})
}

// Pending reports whether action is in flight.
func (g *Gateway) Pending(action PendingAction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[action]
	return ok
}

func (g *Gateway) run(ctx context.Context, action PendingAction) error {
	if action.SeatID <= 0 {
		return ErrInvalidSeat
	}
	if action.UserID <= 0 {
		return ErrInvalidUser
	}
	if g.backend == nil {
		return seatapi.ErrClientNil
	}
	if !g.begin(action) {
		return ErrActionPending
	}

	err := g.call(ctx, action)
	g.end(action)

	if err != nil {
		return g.failed(action, err)
	}

	g.publish(notify.KindSuccess, successMessage(action))
	g.log.Info("action accepted",
		zap.Stringer("kind", action.Kind),
		zap.Int64("seat_id", action.SeatID),
		zap.Int64("user_id", action.UserID),
	)
	if g.refresher != nil {
		// The reconciler reports its own failures; the action still succeeded.
		if rerr := g.refresher.Refresh(ctx); rerr != nil {
			g.log.Warn("refresh after action failed", zap.Error(rerr))
		}
	}
	return nil
}

func (g *Gateway) call(ctx context.Context, action PendingAction) error {
	if action.Kind == KindConfirm {
		return g.backend.Confirm(ctx, action.SeatID, action.UserID)
	}
	return g.backend.Hold(ctx, action.SeatID, action.UserID)
}

func (g *Gateway) failed(action PendingAction, err error) error {
	fields := []zap.Field{
		zap.Stringer("kind", action.Kind),
		zap.Int64("seat_id", action.SeatID),
		zap.Int64("user_id", action.UserID),
		zap.Error(err),
	}

	var rejected *seatapi.RejectedError
	if errors.As(err, &rejected) {
		g.log.Info("action rejected", append(fields, zap.Int("status", rejected.StatusCode))...)
		g.publish(notify.KindError, rejected.Detail)
		return err
	}

	g.log.Warn("action failed", fields...)
	g.publish(notify.KindError, fallbackMessage(action.Kind))
	return fmt.Errorf("%s seat %d: %w", action.Kind, action.SeatID, err)
}

func (g *Gateway) begin(action PendingAction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[action]; busy {
		return false
	}
	g.pending[action] = struct{}{}
	return true
}

func (g *Gateway) end(action PendingAction) {
	g.mu.Lock()
	delete(g.pending, action)
	g.mu.Unlock()
}

func (g *Gateway) publish(kind notify.Kind, message string) {
	if g.notices == nil {
		return
	}
	g.notices.Publish(notify.Notice{Kind: kind, Message: message})
}

func successMessage(action PendingAction) string {
	if action.Kind == KindConfirm {
		return fmt.Sprintf("Seat %d confirmed! Payment successful.", action.SeatID)
	}
	return fmt.Sprintf("Seat %d held successfully! Confirm to complete purchase.", action.SeatID)
}

func fallbackMessage(kind Kind) string {
	if kind == KindConfirm {
		return "Failed to confirm seat"
	}
	return "Failed to hold seat"
}
