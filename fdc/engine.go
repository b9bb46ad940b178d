package fdc

import (
	"context"
	"time"

	"github.com/gofdc/fdcserver/protocol"
)

// Run drives the Server's single-threaded event loop until ctx is
// cancelled. It owns all mutable engine state; every other exported
// method submits a request through a channel rather than touching
// that state directly (package doc).
func (s *Server) Run(ctx context.Context) error {
	defer close(s.doneCh)

	s.timer = time.NewTimer(s.cfg.InactivityTimeout)
	defer s.timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case data := <-s.rxCh:
			s.feed(data)

		case <-s.timer.C:
			s.onTimeout()

		case req := <-s.ctrlCh:
			v, err := req.fn()
			req.resp <- ctrlResult{value: v, err: err}
		}
	}
}

// do submits fn to the Run goroutine's mailbox and blocks for its
// result, or until ctx is cancelled. It is the single choke point
// every public control method (MountDisk, OpenPort, ...) funnels
// through.
func (s *Server) do(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	req := ctrlRequest{fn: fn, resp: make(chan ctrlResult, 1)}

	select {
	case s.ctrlCh <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.doneCh:
		return nil, errNotRunning
	}

	select {
	case res := <-req.resp:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// frameTargetLen reports how many staged bytes complete the frame
// currently being accumulated.
func (s *Server) frameTargetLen() int {
	if s.state == stateAwaitWritePayload {
		return int(s.pendingWrit.trackLen) + protocol.TrackChecksumLen
	}
	return protocol.FrameLen
}

// feed absorbs one inbound read's worth of bytes into the staging
// buffer. It mirrors the original server's readData exactly: a single
// inbound chunk that would overrun the staging buffer's total capacity
// clears the buffer and is reported as an error rather than
// partially consumed, and a frame is only dispatched once the staged
// length exactly equals the current target - not merely reaches it.
func (s *Server) feed(data []byte) {
	if len(data) > len(s.staging)-s.stagingLen {
		s.stagingLen = 0
		if s.cfg.Logger != nil {
			s.cfg.Logger.Error("framer: staging buffer full", "wanted", len(data))
		}
		s.cfg.Listener.OnError("readData", "staging buffer full")
		return
	}

	copy(s.staging[s.stagingLen:], data)
	s.stagingLen += len(data)

	target := s.frameTargetLen()
	if s.stagingLen != target {
		return
	}

	frameBytes := make([]byte, target)
	copy(frameBytes, s.staging[:target])
	s.stagingLen = 0

	s.dispatch(frameBytes)
}

// dispatch interprets one fully-accumulated frame according to the
// framer state that was active while it was being accumulated.
func (s *Server) dispatch(buf []byte) {
	if s.state == stateAwaitWritePayload {
		s.handleWsta(buf)
		return
	}

	frame, err := protocol.DecodeFrame(buf)
	if err != nil {
		s.crcErrs++
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("framer: checksum mismatch, dropping frame", "err", err)
		}
		return
	}

	switch frame.CommandString() {
	case protocol.CmdStat:
		s.handleStat(frame)
	case protocol.CmdRead:
		s.handleRead(frame)
	case protocol.CmdWrit:
		s.handleWrit(frame)
	default:
		// Unrecognised command tag: silently dropped, matching the
		// original server's command dispatch.
	}
}

// send writes buf to the open port, if any, and rearms the inactivity
// timer - every outbound frame resets the timeout window.
func (s *Server) send(buf []byte) {
	if s.port == nil {
		return
	}
	if _, err := s.port.Write(buf); err != nil {
		if s.cfg.Logger != nil {
			s.cfg.Logger.Error("port write failed", "err", err)
		}
		return
	}
	s.outPkts++
	s.timer.Reset(s.cfg.InactivityTimeout)
}

// onTimeout fires when the link has been silent for InactivityTimeout.
// It mirrors the original server's timeoutSlot: if the port is open,
// the staging buffer is discarded and, if a session was marked
// connected, it is dropped with a "Communications timeout" status; if
// the port is closed, it merely reports "Offline". Either way the
// framer unconditionally returns to stateAwaitCmd.
func (s *Server) onTimeout() {
	if s.port != nil {
		s.stagingLen = 0
		if s.connected {
			s.connected = false
			s.cfg.Listener.OnStatusChanged("Communications timeout")
		}
	} else {
		s.cfg.Listener.OnStatusChanged("Offline")
	}
	s.state = stateAwaitCmd
	s.timer.Reset(s.cfg.InactivityTimeout)
}
