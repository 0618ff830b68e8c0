package seatlock

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/five82/seatlock/internal/seatapi"
)

// Rejections. Their text is sent to clients as the "detail" field.
var (
	ErrSeatNotFound = errors.New("Seat not found")
	ErrSeatHeld     = errors.New("Seat already held")
	ErrSeatSold     = errors.New("Seat already sold")
	ErrNotHeld      = errors.New("Seat is not held")
	ErrNotHolder    = errors.New("Seat held by another user")
	ErrHoldExpired  = errors.New("Hold expired")
	ErrInvalidUser  = errors.New("Invalid user")
)

const (
	DefaultSeats   = 50
	DefaultHoldTTL = 5 * time.Minute
)

type record struct {
	status  seatapi.Status
	userID  int64
	expires time.Time
}

// ChangeFunc is called after a seat changes state.
type ChangeFunc func(seatID int64)

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	Seats   int
	HoldTTL time.Duration
	Now     func() time.Time
}

// Manager is an in-memory seat authority. Holds expire lazily on the next
// hold or confirm of the same seat, and eagerly through SweepExpired.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	seats []record // index 0 is seat 1

	obsMu     sync.Mutex
	observers []ChangeFunc
}

// NewManager creates a Manager with every seat available.
func NewManager(opts ManagerOptions) *Manager {
	n := opts.Seats
	if n <= 0 {
		n = DefaultSeats
	}
	ttl := opts.HoldTTL
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	seats := make([]record, n)
	for i := range seats {
		seats[i].status = seatapi.StatusAvailable
	}
	return &Manager{ttl: ttl, now: now, seats: seats}
}

// OnChange registers fn to run after every state change.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.obsMu.Lock()
	m.observers = append(m.observers, fn)
	m.obsMu.Unlock()
}

// Seats returns every seat ordered by id. Expired holds read as available.
func (m *Manager) Seats() []seatapi.Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	out := make([]seatapi.Seat, len(m.seats))
	for i, rec := range m.seats {
		seat := seatapi.Seat{ID: int64(i + 1), Status: rec.status}
		if rec.status == seatapi.StatusHeld {
			if now.After(rec.expires) {
				seat.Status = seatapi.StatusAvailable
			} else {
				seat.HeldBy = rec.userID
			}
		}
		out[i] = seat
	}
	return out
}

// Hold moves an available seat to held by userID for the hold TTL.
func (m *Manager) Hold(seatID, userID int64) error {
	if userID <= 0 {
		return ErrInvalidUser
	}
	m.mu.Lock()
	rec, err := m.lookup(seatID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	now := m.now()
	expireLocked(rec, now)

	switch rec.status {
	case seatapi.StatusHeld:
		m.mu.Unlock()
		return ErrSeatHeld
	case seatapi.StatusSold:
		m.mu.Unlock()
		return ErrSeatSold
	}
	rec.status = seatapi.StatusHeld
	rec.userID = userID
	rec.expires = now.Add(m.ttl)
	m.mu.Unlock()

	m.changed(seatID)
	return nil
}

// Confirm sells a seat held by userID whose hold has not expired. Confirming
// an expired hold releases the seat.
func (m *Manager) Confirm(seatID, userID int64) error {
	m.mu.Lock()
	rec, err := m.lookup(seatID)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	switch rec.status {
	case seatapi.StatusSold:
		m.mu.Unlock()
		return ErrSeatSold
	case seatapi.StatusAvailable:
		m.mu.Unlock()
		return ErrNotHeld
	}
	if rec.userID != userID {
		m.mu.Unlock()
		return ErrNotHolder
	}
	if m.now().After(rec.expires) {
		release(rec)
		m.mu.Unlock()
		m.changed(seatID)
		return ErrHoldExpired
	}
	rec.status = seatapi.StatusSold
	m.mu.Unlock()

	m.changed(seatID)
	return nil
}

// Release makes a seat available regardless of its state.
func (m *Manager) Release(seatID int64) error {
	m.mu.Lock()
	rec, err := m.lookup(seatID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	release(rec)
	m.mu.Unlock()

	m.changed(seatID)
	return nil
}

// SweepExpired releases every expired hold and returns the affected seats.
func (m *Manager) SweepExpired() []int64 {
	m.mu.Lock()
	now := m.now()
	var released []int64
	for i := range m.seats {
		if expireLocked(&m.seats[i], now) {
			released = append(released, int64(i+1))
		}
	}
	m.mu.Unlock()

	for _, id := range released {
		m.changed(id)
	}
	return released
}

// Prefill randomly holds or sells roughly fraction of the seats. Holds go to
// users 1000 and up so they never collide with interactive users.
func (m *Manager) Prefill(fraction float64, rng *rand.Rand) {
	if fraction <= 0 {
		return
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m.mu.Lock()
	now := m.now()
	for i := range m.seats {
		if rng.Float64() >= fraction {
			continue
		}
		rec := &m.seats[i]
		if rng.Intn(2) == 0 {
			rec.status = seatapi.StatusSold
			rec.userID = 1000 + int64(rng.Intn(1000))
			continue
		}
		rec.status = seatapi.StatusHeld
		rec.userID = 1000 + int64(rng.Intn(1000))
		rec.expires = now.Add(m.ttl)
	}
	m.mu.Unlock()
}

func (m *Manager) lookup(seatID int64) (*record, error) {
	if seatID < 1 || seatID > int64(len(m.seats)) {
		return nil, ErrSeatNotFound
	}
	return &m.seats[seatID-1], nil
}

func (m *Manager) changed(seatID int64) {
	m.obsMu.Lock()
	observers := append([]ChangeFunc(nil), m.observers...)
	m.obsMu.Unlock()
	for _, fn := range observers {
		fn(seatID)
	}
}

func expireLocked(rec *record, now time.Time) bool {
	if rec.status == seatapi.StatusHeld && now.After(rec.expires) {
		release(rec)
		return true
	}
	return false
}

func release(rec *record) {
	rec.status = seatapi.StatusAvailable
	rec.userID = 0
	rec.expires = time.Time{}
}
