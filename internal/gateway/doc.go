// Package gateway sends hold and confirm requests to the seat authority and
// reports what happened.
//
// # Overview
//
// The gateway is the only path from a user action to the authority. It never
// edits the local snapshot. A successful action is followed by a refresh so
// the new seat state arrives through the same path as every other change.
//
// # Outcomes
//
//	// Success: notice, then refresh
//	gw.Hold(ctx, 4, 1)
//	→ "Seat 4 held successfully! Confirm to complete purchase."
//	→ refresher.Refresh(ctx)
//
//	// Rejection (*seatapi.RejectedError): the authority's detail verbatim
//	gw.Hold(ctx, 4, 2)
//	→ "Seat already held", no refresh, error returned unchanged
//
//	// Transport failure: fixed fallback text, wrapped error
//	gw.Confirm(ctx, 4, 1)
//	→ "Failed to confirm seat"
//
// A failed post-action refresh is logged; the action still counts as done.
//
// # Duplicate Suppression
//
// An identical action (same seat, user and kind) that is still in flight
// returns ErrActionPending without reaching the backend or publishing a
// notice. A hold and a confirm on the same seat are different actions.
//
// # Validation
//
// Seat and user ids must be positive (ErrInvalidSeat, ErrInvalidUser). A
// gateway without a backend returns seatapi.ErrClientNil.
//
// # Usage
//
//	gw := gateway.New(gateway.Options{
//		Backend:   client,   // seatapi.Reserver
//		Refresher: store,    // *state.Store
//		Notices:   center,   // notify.Publisher
//		Logger:    log,
//	})
//	if err := gw.Confirm(ctx, seatID, userID); err != nil {
//		// the user has already been told why
//	}
package gateway
