// Package logtail reads the tail of the client's own log file for the UI log
// pane.
//
// # Overview
//
// The TUI owns the terminal, so the client logs to a file. This package lets
// the UI show the last few hundred lines of that file without loading it all.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries and makes a single pass over
// the file, so memory is O(maxLines) however large the file grows. Lines come
// back oldest first. A missing file is not an error; the pane is simply empty
// until the first line is written.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// # Formatting
//
// Log lines are zap JSON. Parse splits out time, level, logger name and
// message, keeping the remaining keys as fields; Format renders them compactly:
//
//	10:15:30 WARN  reconciler  seat refresh failed  consecutive_failures=2
//
// Lines that are not JSON (a panic trace, say) pass through FormatLines
// unchanged.
package logtail
