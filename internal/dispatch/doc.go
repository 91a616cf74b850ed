// Package dispatch runs best-effort background delivery for events and mail.
//
// A [Dispatcher] owns one goroutine reading a bounded channel. Producers
// never wait on a full buffer when DropIfFull is set; drops are counted.
// Close stops intake and drains whatever is already queued.
//
// # What this package must NOT do
//
//   - Retry failed deliveries.
//   - Block the caller of Emit beyond the buffer hand-off.
package dispatch
