// Package seatlock is an in-memory seat authority used for local development
// and as the backend of the client's integration tests.
//
// It serves the same HTTP contract the client consumes:
//
//	GET  /seats    inventory, ordered by seat id
//	POST /hold     {"seat_id","user_id"}; 409/404/400 with {"detail"}
//	POST /confirm  {"seat_id","user_id"}; 400/404 with {"detail"}
//	GET  /ws       push channel, one {"type":"seat_update","seat_id":N} per change
//
// Holds expire after a TTL. Expiry is applied lazily on every read and write
// and eagerly by a one-second sweep, so a stale hold never blocks a new one.
// With a redis address configured, every change is also published on a redis
// channel for clients using the redis transport.
package seatlock
