package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/seatapi"
)

// Snapshot is the client's complete belief of the seat inventory.
type Snapshot struct {
	Seats     []seatapi.Seat
	Version   uint64 // zero until the first successful refresh
	FetchedAt time.Time
}

// Loaded reports whether at least one refresh has succeeded.
func (s Snapshot) Loaded() bool {
	return s.Version > 0
}

// Seat returns the record for id.
func (s Snapshot) Seat(id int64) (seatapi.Seat, bool) {
	i, found := slices.BinarySearchFunc(s.Seats, id, func(seat seatapi.Seat, id int64) int {
		switch {
		case seat.ID < id:
			return -1
		case seat.ID > id:
			return 1
		}
		return 0
	})
	if !found {
		return seatapi.Seat{}, false
	}
	return s.Seats[i], true
}

// Counts tallies seats per status.
type Counts struct {
	Available int
	Held      int
	Sold      int
}

// Counts returns per-status totals.
func (s Snapshot) Counts() Counts {
	var c Counts
	for _, seat := range s.Seats {
		switch seat.Status {
		case seatapi.StatusAvailable:
			c.Available++
		case seatapi.StatusHeld:
			c.Held++
		case seatapi.StatusSold:
			c.Sold++
		}
	}
	return c
}

// Health describes refresh outcomes. It lives beside the snapshot so a failed
// refresh never touches the snapshot itself.
type Health struct {
	LastError           error
	LastAttempt         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when the authority has been unreachable for multiple refreshes.
func (h Health) IsOffline() bool {
	return h.ConsecutiveFailures >= 2
}

// Listener receives each new snapshot.
type Listener func(Snapshot)

// Store owns the snapshot and is the only place it is replaced.
type Store struct {
	source   seatapi.SeatFetcher
	notices  notify.Publisher
	log      *zap.Logger
	failText string

	mu       sync.RWMutex
	snapshot Snapshot
	health   Health

	// deliverMu serializes listener calls. delivered is the newest version
	// handed to listeners; older replacements that lose the race are skipped.
	deliverMu sync.Mutex
	delivered uint64
	subsMu    sync.Mutex
	nextSub   int
	subs      map[int]Listener
}

// Options configure a Store.
type Options struct {
	Source  seatapi.SeatFetcher
	Notices notify.Publisher // optional
	Logger  *zap.Logger      // optional
}

// NewStore builds a Store around a seat source.
func NewStore(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		source:   opts.Source,
		notices:  opts.Notices,
		log:      log.Named("reconciler"),
		failText: "Failed to load seats",
		subs:     make(map[int]Listener),
	}
}

// Refresh fetches the full inventory and replaces the snapshot with it. On
// failure the snapshot is kept, the failure is recorded in Health and an error
// notice is published. Concurrent calls are fine: whichever response completes
// last is the one that stays.
func (s *Store) Refresh(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("refresh: no seat source")
	}
	seats, err := s.source.FetchSeats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Abandoned by the caller, not a failure of the authority.
			s.log.Debug("seat refresh canceled", zap.Error(err))
			return fmt.Errorf("refresh: %w", err)
		}
		s.fail(err)
		return fmt.Errorf("refresh: %w", err)
	}
	s.replace(seats)
	return nil
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.health.LastError = err
	s.health.LastAttempt = time.Now()
	s.health.ConsecutiveFailures++
	failures := s.health.ConsecutiveFailures
	s.mu.Unlock()

	s.log.Warn("seat refresh failed", zap.Error(err), zap.Int("consecutive_failures", failures))
	if s.notices != nil {
		s.notices.Publish(notify.Notice{Kind: notify.KindError, Message: s.failText})
	}
}

func (s *Store) replace(seats []seatapi.Seat) {
	next := cloneSeats(seats)
	slices.SortFunc(next, func(a, b seatapi.Seat) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	s.mu.Lock()
	now := time.Now()
	s.snapshot = Snapshot{
		Seats:     next,
		Version:   s.snapshot.Version + 1,
		FetchedAt: now,
	}
	s.health = Health{LastAttempt: now}
	snap := s.copyLocked()
	s.mu.Unlock()

	s.log.Debug("snapshot replaced", zap.Uint64("version", snap.Version), zap.Int("seats", len(snap.Seats)))
	s.deliver(snap)
}

// deliver hands snap to listeners unless a newer version already went out.
// It runs without mu held, so listeners may read the store.
func (s *Store) deliver(snap Snapshot) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if snap.Version <= s.delivered {
		return
	}
	s.delivered = snap.Version
	for _, fn := range s.listeners() {
		fn(cloneSnapshot(snap))
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Health returns a copy of the refresh health.
func (s *Store) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.health
	if s.health.LastError != nil {
		h.LastError = fmt.Errorf("%w", s.health.LastError)
	}
	return h
}

// Subscribe registers fn to receive new snapshots in increasing version
// order. A version superseded before its delivery is skipped. Listeners run
// on the refreshing goroutine; they may read Snapshot and Health but must
// not call Refresh synchronously.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) listeners() []Listener {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	out := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func (s *Store) copyLocked() Snapshot {
	return cloneSnapshot(s.snapshot)
}

func cloneSnapshot(snap Snapshot) Snapshot {
	snap.Seats = cloneSeats(snap.Seats)
	return snap
}

func cloneSeats(seats []seatapi.Seat) []seatapi.Seat {
	if len(seats) == 0 {
		return nil
	}
	dup := make([]seatapi.Seat, len(seats))
	copy(dup, seats)
	return dup
}
