// Package ui is the seatlock terminal client, built on Bubble Tea.
//
// The model never touches seat state directly. It subscribes to a Session for
// snapshots and notices and sends hold and confirm requests back through it;
// the grid only ever shows what the last successful refresh returned.
//
// # Layout
//
//   - Header: connection state (LIVE, CONNECTING, POLLING), seat counts, the
//     acting user, time since the last refresh and an offline warning
//   - Command bar: key hints and the active theme
//   - Seat grid: one cell per seat, colored by status, with a cursor
//   - Toasts: notices from the sync core, each shown for three seconds
//   - Log pane (optional): tail of the client's own log file
//
// # Key Bindings
//
//   - arrows or h/j/k/l: move the cursor; g/G jump to first/last seat
//   - enter or space: hold an available seat, confirm a seat you hold
//   - c: confirm the seat under the cursor
//   - +/-: change the acting user id (saved to prefs)
//   - r: refresh now
//   - L: toggle the log pane
//   - T: cycle theme (saved to prefs)
//   - ?: help
//   - q or ctrl+c: quit
package ui
