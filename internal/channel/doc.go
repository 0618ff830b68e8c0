// Package channel maintains the push connection to the seat authority.
//
// The Manager dials, reads until the connection drops, waits a fixed delay and
// dials again, forever, until its context is cancelled. Messages carry no seat
// state; a {"type":"seat_update"} message only means "something changed, go
// re-read". Those become EventChanged on Events. Everything else is ignored.
//
// Two transports implement Dialer: WebsocketDialer for the authority's /ws
// endpoint and RedisDialer for deployments that fan notifications out over
// redis pub/sub.
package channel
