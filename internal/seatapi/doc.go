// Package seatapi provides an HTTP client for the seat authority API.
//
// # Overview
//
// The authority owns seat locking: hold TTLs, conflict arbitration and payment
// settlement all happen server side. This package only speaks the request and
// response contract:
//
//   - GET /seats: full inventory as a JSON array of seat records
//   - POST /hold: body {"seat_id", "user_id"}, moves available to held
//   - POST /confirm: same body, moves held to sold
//
// # Client Usage
//
//	client, err := seatapi.NewClient("127.0.0.1:8000")
//	if err != nil {
//		return err
//	}
//	seats, err := client.FetchSeats(ctx)
//
// # Error Handling
//
// A non-2xx answer to GET /seats is a fetch failure. A non-2xx answer to an
// action is a *RejectedError whose Detail is the authority's "detail" field,
// unchanged, so callers can show it to the user as-is. Network failures are
// returned wrapped and are never RejectedErrors.
//
// # Wire Tolerance
//
// Seat records are decoded from either camelCase (seatId, heldBy) or the
// snake_case fields of the reference backend (seat_id, user_id). Status may be
// a string or the integer codes 0, 1 and 2. Anything else fails the whole fetch
// so a garbled read never reaches the snapshot.
package seatapi
