package channel

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/seatapi"
)

// State is the lifecycle of the push connection.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "connecting"
	}
}

// EventKind identifies what the manager observed.
type EventKind int

const (
	// EventConnected fires each time a connection opens.
	EventConnected EventKind = iota
	// EventChanged means the authority announced a seat change.
	EventChanged
)

func (k EventKind) String() string {
	if k == EventChanged {
		return "changed"
	}
	return "connected"
}

// Event is delivered on Manager.Events.
type Event struct {
	Kind   EventKind
	SeatID int64 // set on EventChanged when the authority named the seat
	At     time.Time
}

// Conn is one open push connection.
type Conn interface {
	// Read blocks until the next message arrives or the connection ends.
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens push connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

const (
	// DefaultReconnectDelay is the fixed wait between a closure and the next dial.
	DefaultReconnectDelay = 3 * time.Second
	defaultEventBuffer    = 16
	connectedNotice       = "Connected to SeatLock"
)

// Options configure a Manager.
type Options struct {
	Dialer  Dialer
	Delay   time.Duration
	Buffer  int
	Notices notify.Publisher
	Logger  *zap.Logger
	// OnState, when set, is called on every state transition.
	OnState func(State)
	// After replaces time.After; tests use it to drive the reconnect delay.
	After func(time.Duration) <-chan time.Time
}

// Manager keeps a push connection alive and turns its messages into events.
type Manager struct {
	dialer  Dialer
	delay   time.Duration
	notices notify.Publisher
	log     *zap.Logger
	onState func(State)
	after   func(time.Duration) <-chan time.Time

	state     atomic.Int32
	events    chan Event
	connected bool
	dials     atomic.Int64
}

// NewManager builds a Manager. It does nothing until Run is called.
func NewManager(opts Options) *Manager {
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	after := opts.After
	if after == nil {
		after = time.After
	}
	m := &Manager{
		dialer:  opts.Dialer,
		delay:   delay,
		notices: opts.Notices,
		log:     log.Named("channel"),
		onState: opts.OnState,
		after:   after,
		events:  make(chan Event, buffer),
	}
	m.state.Store(int32(StateClosed))
	return m
}

// Events returns the event stream. It is never closed.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current connection state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Dials returns the number of dial attempts made so far.
func (m *Manager) Dials() int64 {
	return m.dials.Load()
}

// Run dials, reads and redials after the fixed delay until ctx is cancelled.
// There is no retry limit and the delay never grows. Run must not be called
// concurrently on the same Manager.
func (m *Manager) Run(ctx context.Context) error {
	if m.dialer == nil {
		return errors.New("channel: no dialer")
	}
	defer m.setState(StateClosed)

	for {
		m.setState(StateConnecting)
		m.dials.Add(1)
		conn, err := m.dialer.Dial(ctx)
		if err == nil {
			m.setState(StateOpen)
			m.opened()
			err = m.readLoop(ctx, conn)
			_ = conn.Close()
		}
		m.setState(StateClosed)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.log.Info("push channel closed, reconnecting",
			zap.Error(err),
			zap.Duration("delay", m.delay),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.after(m.delay):
		}
	}
}

func (m *Manager) opened() {
	m.emit(Event{Kind: EventConnected})
	if m.connected {
		m.log.Info("push channel reconnected")
		return
	}
	m.connected = true
	m.log.Info("push channel connected")
	if m.notices != nil {
		m.notices.Publish(notify.Notice{Kind: notify.KindSuccess, Message: connectedNotice})
	}
}

func (m *Manager) readLoop(ctx context.Context, conn Conn) error {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		seatID, ok := parseMessage(data)
		if !ok {
			m.log.Debug("ignoring push message", zap.ByteString("payload", truncate(data, 256)))
			continue
		}
		m.emit(Event{Kind: EventChanged, SeatID: seatID})
	}
}

// emit never blocks; a full buffer drops the event.
func (m *Manager) emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case m.events <- ev:
	default:
		m.log.Debug("event buffer full, dropping", zap.Stringer("kind", ev.Kind))
	}
}

func (m *Manager) setState(s State) {
	prev := State(m.state.Swap(int32(s)))
	if prev == s {
		return
	}
	if m.onState != nil {
		m.onState(s)
	}
}

// parseMessage reports whether data is a seat_update notification. Only the
// type field decides; the rest of the payload is opaque. The seat id is read
// for logging when it happens to be an integer and is zero otherwise.
func parseMessage(data []byte) (int64, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return 0, false
	}
	var kind string
	if err := json.Unmarshal(fields["type"], &kind); err != nil || kind != seatapi.PushTypeSeatUpdate {
		return 0, false
	}
	var seatID int64
	if raw, ok := fields["seat_id"]; ok {
		_ = json.Unmarshal(raw, &seatID)
	}
	return seatID, true
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
