// Package notify carries short user-facing messages from the sync core to
// whatever presents them: toasts in the TUI, lines on a terminal for the
// one-shot commands.
//
// # Overview
//
// Producers depend on the Publisher interface. Center is the in-process
// implementation; it fans each Notice out to every subscriber.
//
//	center := notify.NewCenter(16)
//	notices, cancel := center.Subscribe()
//	defer cancel()
//
//	center.Success("Seat %d confirmed! Payment successful.", 4)
//	n := <-notices // Kind: KindSuccess
//
// # Delivery
//
// Each subscriber gets its own bounded buffer. Publish never blocks: a
// subscriber whose buffer is full misses the notice. Notices are transient,
// so losing one to a stalled reader is preferable to stalling the reconciler
// or the push loop.
//
// Error notices are published verbatim; Error does not format its argument,
// so a rejection detail containing '%' is shown as sent.
//
// Publish stamps At when it is zero. cancel closes the subscriber's channel
// and may be called more than once.
package notify
