// Package logging builds the zap logger shared by every component.
//
// # Destinations
//
// The interactive client owns the terminal, so it logs to a file (default
// ~/.local/state/seatlock/seatlock.log, parent directories created). The
// one-shot commands and the mock authority log to stderr.
//
//	log, cleanup, err := logging.New(logging.Options{
//		File:   cfg.LogFile, // empty means stderr
//		Level:  "info",      // debug, info, warn, error
//		Format: "json",      // json or console
//	})
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # Format
//
// JSON lines use the keys ts, level, logger, msg, plus the fields each
// component adds (seat_id, user_id, version, ...). The TUI log pane reads the
// same file back through package logtail, which expects those keys.
//
// Components name their child loggers (reconciler, gateway, channel, ui) so
// the logger key identifies the source.
package logging
