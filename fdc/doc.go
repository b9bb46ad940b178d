// Package fdc implements the Altair FDC+ serial disk server core: the
// protocol framer/state machine, the STAT/READ/WRIT/WSTA command
// handlers, and the link supervisor that owns the serial port and its
// inactivity timer.
//
// A Server is constructed with New and driven by calling Run in its
// own goroutine. Run owns all engine state; every other exported
// method (MountDisk, UnmountDisk, OpenPort, ClosePort, SetBaud) is
// safe to call concurrently from other goroutines because it submits
// a request to Run's dispatch loop and waits for the result, rather
// than touching engine state directly. This is the actor-mailbox
// realisation of the single-threaded cooperative event loop the
// original server relied on.
//
// Notifications are delivered synchronously, from the Run goroutine,
// to whatever Listener was supplied via WithListener. Listener
// implementations must not call back into the Server from within a
// notification method.
package fdc
