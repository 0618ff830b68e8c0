package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/seatapi"
)

type call struct {
	kind           Kind
	seatID, userID int64
}

type fakeReserver struct {
	mu    sync.Mutex
	calls []call
	err   error
	gate  chan struct{} // when set, calls block until it is closed
}

func (f *fakeReserver) record(kind Kind, seatID, userID int64) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{kind, seatID, userID})
	gate := f.gate
	err := f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeReserver) Hold(_ context.Context, seatID, userID int64) error {
	return f.record(KindHold, seatID, userID)
}

func (f *fakeReserver) Confirm(_ context.Context, seatID, userID int64) error {
	return f.record(KindConfirm, seatID, userID)
}

func (f *fakeReserver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRefresher struct {
	mu    sync.Mutex
	count int
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	return f.err
}

func (f *fakeRefresher) refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

type recorder struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *recorder) Publish(n notify.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) all() []notify.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notice(nil), r.notices...)
}

func newGateway(backend seatapi.Reserver) (*Gateway, *fakeRefresher, *recorder) {
	ref := &fakeRefresher{}
	rec := &recorder{}
	return New(Options{Backend: backend, Refresher: ref, Notices: rec}), ref, rec
}

func TestGateway_HoldSuccessNotifiesThenRefreshes(t *testing.T) {
	backend := &fakeReserver{}
	g, ref, rec := newGateway(backend)

	require.NoError(t, g.Hold(context.Background(), 4, 7))

	require.Equal(t, []call{{KindHold, 4, 7}}, backend.calls)
	require.Equal(t, 1, ref.refreshes())
	require.Equal(t, []notify.Notice{{
		Kind:    notify.KindSuccess,
		Message: "Seat 4 held successfully! Confirm to complete purchase.",
	}}, rec.all())
}

func TestGateway_ConfirmSuccess(t *testing.T) {
	backend := &fakeReserver{}
	g, ref, rec := newGateway(backend)

	require.NoError(t, g.Confirm(context.Background(), 2, 1))

	require.Equal(t, []call{{KindConfirm, 2, 1}}, backend.calls)
	require.Equal(t, 1, ref.refreshes())
	require.Equal(t, "Seat 2 confirmed! Payment successful.", rec.all()[0].Message)
}

func TestGateway_RejectionSurfacesDetailVerbatimWithoutRefresh(t *testing.T) {
	rejected := &seatapi.RejectedError{StatusCode: 409, Detail: "Seat already sold"}
	g, ref, rec := newGateway(&fakeReserver{err: rejected})

	err := g.Hold(context.Background(), 2, 1)

	require.Same(t, rejected, err)
	require.Zero(t, ref.refreshes())
	require.Equal(t, []notify.Notice{{Kind: notify.KindError, Message: "Seat already sold"}}, rec.all())
}

func TestGateway_TransportFailureUsesFallbackMessage(t *testing.T) {
	boom := errors.New("connection refused")
	for _, tc := range []struct {
		name string
		act  func(*Gateway) error
		want string
	}{
		{"hold", func(g *Gateway) error { return g.Hold(context.Background(), 3, 1) }, "Failed to hold seat"},
		{"confirm", func(g *Gateway) error { return g.Confirm(context.Background(), 3, 1) }, "Failed to confirm seat"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g, ref, rec := newGateway(&fakeReserver{err: boom})

			err := tc.act(g)
			require.ErrorIs(t, err, boom)
			var rejected *seatapi.RejectedError
			require.False(t, errors.As(err, &rejected))
			require.Zero(t, ref.refreshes())
			require.Equal(t, []notify.Notice{{Kind: notify.KindError, Message: tc.want}}, rec.all())
		})
	}
}

func TestGateway_ValidatesBeforeCallingBackend(t *testing.T) {
	tests := []struct {
		seat, user int64
		want       error
	}{
		{0, 1, ErrInvalidSeat},
		{-3, 1, ErrInvalidSeat},
		{1, 0, ErrInvalidUser},
		{1, -1, ErrInvalidUser},
	}
	for _, tt := range tests {
		backend := &fakeReserver{}
		g, ref, rec := newGateway(backend)

		require.ErrorIs(t, g.Hold(context.Background(), tt.seat, tt.user), tt.want)
		require.Zero(t, backend.callCount())
		require.Zero(t, ref.refreshes())
		require.Empty(t, rec.all())
	}
}

func TestGateway_NilBackend(t *testing.T) {
	g := New(Options{})
	require.ErrorIs(t, g.Hold(context.Background(), 1, 1), seatapi.ErrClientNil)
}

func TestGateway_DuplicateInFlightActionIsRejected(t *testing.T) {
	backend := &fakeReserver{gate: make(chan struct{})}
	g, _, rec := newGateway(backend)

	first := make(chan error, 1)
	go func() { first <- g.Hold(context.Background(), 5, 1) }()

	action := PendingAction{SeatID: 5, UserID: 1, Kind: KindHold}
	require.Eventually(t, func() bool { return g.Pending(action) }, time.Second, time.Millisecond)

	require.ErrorIs(t, g.Hold(context.Background(), 5, 1), ErrActionPending)
	require.Equal(t, 1, backend.callCount(), "duplicate must not reach the backend")
	require.Empty(t, rec.all(), "duplicate must not notify")

	// A different action on the same seat is not a duplicate.
	other := make(chan error, 1)
	go func() { other <- g.Confirm(context.Background(), 5, 1) }()
	require.Eventually(t, func() bool { return backend.callCount() == 2 }, time.Second, time.Millisecond)

	close(backend.gate)
	require.NoError(t, <-first)
	require.NoError(t, <-other)
	require.False(t, g.Pending(action))

	require.NoError(t, g.Hold(context.Background(), 5, 1))
	require.Equal(t, 3, backend.callCount())
}

func TestGateway_RefreshFailureDoesNotFailAction(t *testing.T) {
	backend := &fakeReserver{}
	ref := &fakeRefresher{err: errors.New("offline")}
	g := New(Options{Backend: backend, Refresher: ref})

	require.NoError(t, g.Hold(context.Background(), 1, 1))
	require.Equal(t, 1, ref.refreshes())
}
