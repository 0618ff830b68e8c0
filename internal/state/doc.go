// Package state reconciles the client's view of the seat inventory with the
// authority.
//
// # Overview
//
// The Store is the only place the seat snapshot is replaced. Three independent
// triggers ask it to refresh: the poller on a fixed interval, the push channel
// when the authority announces a change, and the action gateway after a
// successful hold or confirm. None of them carry seat data themselves; every
// refresh re-reads the whole inventory and swaps it in.
//
//	Poller ──────┐
//	Push event ──┼──→ store.Refresh() ──→ GET /seats ──→ replace ──→ listeners
//	Gateway ─────┘
//
// # Core Types
//
// Snapshot:
//   - Seats ordered by id, Version, FetchedAt
//   - Version is zero until the first successful refresh
//   - Returned by value with the seat slice cloned
//
// Health:
//   - LastError, LastAttempt, ConsecutiveFailures
//   - Kept beside the snapshot so a failed refresh never touches it
//   - IsOffline after two failures in a row
//
// # Ordering
//
// Refreshes may overlap. The store does not sequence requests; it applies
// responses in the order they complete, so the last response to arrive is the
// one that stays. Listeners are called one at a time and always see versions
// in increasing order; a version overtaken before its turn is skipped.
// Listeners may read the store but must not call Refresh themselves.
//
// # Failure Semantics
//
//	// Success: replace everything, reset health
//	store.Refresh(ctx)
//	→ snapshot.Seats   = response
//	→ snapshot.Version = previous + 1
//	→ health           = {}
//
//	// Failure: keep the snapshot, record the error
//	store.Refresh(ctx)
//	→ snapshot         = <unchanged>
//	→ health.ConsecutiveFailures++
//	→ notice "Failed to load seats"
//
// # Usage Example
//
//	store := state.NewStore(state.Options{Source: client, Notices: center, Logger: log})
//	cancel := store.Subscribe(func(snap state.Snapshot) {
//		redraw(snap)
//	})
//	defer cancel()
//	_ = store.Refresh(ctx)
package state
