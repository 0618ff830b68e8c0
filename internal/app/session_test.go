package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/seatlock/internal/channel"
	"github.com/five82/seatlock/internal/gateway"
	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/seatapi"
	"github.com/five82/seatlock/internal/seatlock"
	"github.com/five82/seatlock/internal/state"
)

type memorySource struct {
	mu      sync.Mutex
	seats   []seatapi.Seat
	fetches int
}

func (m *memorySource) FetchSeats(context.Context) ([]seatapi.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	return append([]seatapi.Seat(nil), m.seats...), nil
}

func (m *memorySource) set(seats ...seatapi.Seat) {
	m.mu.Lock()
	m.seats = seats
	m.mu.Unlock()
}

type noopBackend struct{}

func (noopBackend) Hold(context.Context, int64, int64) error    { return nil }
func (noopBackend) Confirm(context.Context, int64, int64) error { return nil }

// pipeDialer hands out connections fed from msgs.
type pipeDialer struct {
	msgs chan []byte
}

func (d *pipeDialer) Dial(context.Context) (channel.Conn, error) {
	return &pipeConn{msgs: d.msgs}, nil
}

type pipeConn struct {
	msgs chan []byte
}

func (c *pipeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-c.msgs:
		return msg, nil
	}
}

func (c *pipeConn) Close() error { return nil }

func TestNewSession_RequiresCollaborators(t *testing.T) {
	_, err := NewSession(SessionOptions{Backend: noopBackend{}})
	require.Error(t, err)

	_, err = NewSession(SessionOptions{Source: &memorySource{}})
	require.Error(t, err)

	_, err = NewSession(SessionOptions{Source: &memorySource{}, Backend: noopBackend{}, UserID: -1})
	require.ErrorIs(t, err, gateway.ErrInvalidUser)

	s, err := NewSession(SessionOptions{Source: &memorySource{}, Backend: noopBackend{}})
	require.NoError(t, err)
	require.Equal(t, int64(1), s.UserID())
	require.Equal(t, channel.StateClosed, s.ConnectionState())
}

func TestSession_StartStopLifecycle(t *testing.T) {
	src := &memorySource{}
	src.set(seatapi.Seat{ID: 1, Status: seatapi.StatusAvailable})
	s, err := NewSession(SessionOptions{Source: src, Backend: noopBackend{}, PollInterval: time.Hour})
	require.NoError(t, err)

	require.NoError(t, s.Stop(), "stop before start is a no-op")

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Start(context.Background()), errSessionStarted)

	require.Eventually(t, func() bool { return s.Snapshot().Loaded() }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestSession_PushEventTriggersRefresh(t *testing.T) {
	src := &memorySource{}
	src.set(seatapi.Seat{ID: 1, Status: seatapi.StatusAvailable})
	dialer := &pipeDialer{msgs: make(chan []byte)}

	s, err := NewSession(SessionOptions{
		Source:       src,
		Backend:      noopBackend{},
		Dialer:       dialer,
		PollInterval: time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop() })

	require.Eventually(t, func() bool {
		return s.ConnectionState() == channel.StateOpen && s.Snapshot().Loaded()
	}, time.Second, 5*time.Millisecond)

	src.set(seatapi.Seat{ID: 1, Status: seatapi.StatusSold})
	dialer.msgs <- []byte(`{"type":"seat_update","seat_id":1}`)

	require.Eventually(t, func() bool {
		seat, ok := s.Snapshot().Seat(1)
		return ok && seat.Status == seatapi.StatusSold
	}, time.Second, 5*time.Millisecond)
}

func TestSession_SetUserID(t *testing.T) {
	s, err := NewSession(SessionOptions{Source: &memorySource{}, Backend: noopBackend{}, UserID: 4})
	require.NoError(t, err)
	require.Equal(t, int64(4), s.UserID())
	require.ErrorIs(t, s.SetUserID(0), gateway.ErrInvalidUser)
	require.NoError(t, s.SetUserID(9))
	require.Equal(t, int64(9), s.UserID())
}

func newLiveSession(t *testing.T, apiURL string, userID int64) *Session {
	t.Helper()
	client, err := seatapi.NewClient(apiURL)
	require.NoError(t, err)
	dialer, err := channel.NewWebsocketDialer(apiURL, channel.DefaultPushPath, nil)
	require.NoError(t, err)

	s, err := NewSession(SessionOptions{
		Source:         client,
		Backend:        client,
		Dialer:         dialer,
		UserID:         userID,
		PollInterval:   time.Hour,
		ReconnectDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { require.NoError(t, s.Stop()) })
	return s
}

func statuses(snap state.Snapshot) map[int64]string {
	out := make(map[int64]string, len(snap.Seats))
	for _, seat := range snap.Seats {
		label := string(seat.Status)
		if seat.Status == seatapi.StatusHeld {
			label += "(" + string(rune('A'+seat.HeldBy-1)) + ")"
		}
		out[seat.ID] = label
	}
	return out
}

func TestSession_TwoUsersCompeteForOneSeat(t *testing.T) {
	authority, err := seatlock.NewServer(context.Background(), seatlock.ServerOptions{Seats: 3})
	require.NoError(t, err)
	srv := httptest.NewServer(authority.Handler())
	t.Cleanup(func() {
		authority.Hub.Close()
		srv.Close()
	})

	alice := newLiveSession(t, srv.URL, 1)
	bob := newLiveSession(t, srv.URL, 2)
	bobNotices, cancelNotices := bob.Notices()
	defer cancelNotices()

	for _, s := range []*Session{alice, bob} {
		require.Eventually(t, func() bool {
			return s.Snapshot().Loaded() && s.ConnectionState() == channel.StateOpen
		}, 2*time.Second, 5*time.Millisecond)
	}
	require.Equal(t, map[int64]string{1: "available", 2: "available", 3: "available"}, statuses(alice.Snapshot()))

	ctx := context.Background()
	require.NoError(t, alice.Hold(ctx, 2))
	require.Equal(t, map[int64]string{1: "available", 2: "held(A)", 3: "available"}, statuses(alice.Snapshot()))

	// Bob learns about the hold from the push channel.
	require.Eventually(t, func() bool {
		return statuses(bob.Snapshot())[2] == "held(A)"
	}, 2*time.Second, 5*time.Millisecond)
	before := bob.Snapshot()

	err = bob.Hold(ctx, 2)
	var rejected *seatapi.RejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, "Seat already held", rejected.Detail)
	require.Equal(t, before.Seats, bob.Snapshot().Seats)
	requireNotice(t, bobNotices, notify.KindError, "Seat already held")

	require.NoError(t, alice.Confirm(ctx, 2))
	require.Equal(t, map[int64]string{1: "available", 2: "sold", 3: "available"}, statuses(alice.Snapshot()))
	require.Eventually(t, func() bool {
		return statuses(bob.Snapshot())[2] == "sold"
	}, 2*time.Second, 5*time.Millisecond)
}

func requireNotice(t *testing.T, ch <-chan notify.Notice, kind notify.Kind, message string) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case n := <-ch:
			if n.Kind == kind && n.Message == message {
				return
			}
		case <-deadline:
			t.Fatalf("notice %q not received", message)
		}
	}
}
