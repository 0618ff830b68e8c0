// Package app wires configuration, the sync core and the UI together.
//
// # Overview
//
// A Session is the client's one stateful component. It owns:
//
//   - the reconciler (state.Store), the only place the snapshot changes
//   - the action gateway, which sends holds and confirms
//   - the push channel manager, which reconnects forever on a fixed delay
//   - the poller, which refreshes at t=0 and then on a fixed interval
//
// Start runs the poller, the channel manager and a bridge that turns every
// push event into a refresh, all under one errgroup. Stop cancels them and
// waits. A reconnect also triggers a refresh, since notifications sent while
// the channel was down are lost.
//
// # Data Flow
//
//	push event ──┐
//	poll tick ───┼──> Store.Refresh ──> Snapshot replaced ──> subscribers (ui)
//	action ok ───┘
//
// Concurrent refreshes are allowed. Whichever response completes last is the
// one the snapshot holds.
//
// # Composition
//
// Run is the composition root for the TUI: it loads config and prefs, opens
// the log file, builds the HTTP client and push dialer, starts a Session and
// hands it to ui.Run. LoadConfig, BuildClient and BuildDialer are shared with
// the one-shot CLI commands.
package app
