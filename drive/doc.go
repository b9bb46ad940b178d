// Package drive implements the Altair FDC+ server's drive table: a
// fixed set of drive slots, each optionally holding an open disk-image
// file, its inferred geometry, and the track last reported to (or by)
// the controller.
//
// A Table is not safe for concurrent use; the fdc package serialises
// every call behind its single run-loop goroutine, the way the
// original server's drive state was only ever touched from its one
// event-dispatch thread.
package drive
