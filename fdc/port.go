package fdc

import (
	"context"
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

// dtrRtsSetter is an optional capability a serial port implementation
// may expose. The link supervisor asserts DTR and RTS on open when a
// port supports it and otherwise proceeds without them; not every
// io.ReadWriteCloser returned by a transport is guaranteed to.
type dtrRtsSetter interface {
	SetDTR(bool) error
	SetRTS(bool) error
}

// OpenPort opens the named serial port at the given baud rate,
// closing any port already open first.
func (s *Server) OpenPort(ctx context.Context, name string, baud int) (bool, error) {
	v, err := s.do(ctx, func() (interface{}, error) {
		return s.openPortLocked(name, baud)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// ClosePort closes the currently open serial port, if any.
func (s *Server) ClosePort(ctx context.Context) error {
	_, err := s.do(ctx, func() (interface{}, error) {
		return nil, s.closePortLocked()
	})
	return err
}

// SetBaud changes the baud rate of the currently open port. The
// jacobsa/go-serial transport has no in-place baud change, so this
// closes and reopens the same port name at the new rate, matching the
// original server's behavior of tearing the port down on a failed
// setBaud.
func (s *Server) SetBaud(ctx context.Context, baud int) (bool, error) {
	v, err := s.do(ctx, func() (interface{}, error) {
		return s.setBaudLocked(baud)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// AttachTransport installs an already-open io.ReadWriteCloser as the
// server's link, bypassing serial.Open entirely. It exists for
// transports other than a local serial device - a TCP bridge, a pty,
// an in-memory pipe in a test or example - that the link supervisor
// has no business knowing how to construct.
func (s *Server) AttachTransport(ctx context.Context, name string, transport io.ReadWriteCloser) (bool, error) {
	v, err := s.do(ctx, func() (interface{}, error) {
		if s.port != nil {
			_ = s.closePortLocked()
		}
		s.attachPortLocked(name, transport)
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s *Server) openPortLocked(name string, baud int) (bool, error) {
	if s.port != nil {
		_ = s.closePortLocked()
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:        name,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		s.cfg.Listener.OnError("COM Port Error", fmt.Sprintf("could not open %s: %v", name, err))
		return false, &PortError{Op: "open", Name: name, Err: err}
	}

	s.baud = baud
	s.attachPortLocked(name, port)
	return true, nil
}

// attachPortLocked installs an already-open transport as the current
// port, starts the reader goroutine, asserts DTR/RTS if supported,
// and reports "Online" - the part of openPort that doesn't care how
// the transport was obtained. Kept separate from openPortLocked so
// tests can drive the engine over an in-memory transport without a
// real serial device.
func (s *Server) attachPortLocked(name string, port io.ReadWriteCloser) {
	s.port = port
	s.portName = name
	s.readerStop = make(chan struct{})
	s.startReader(port, s.readerStop)

	if setter, ok := port.(dtrRtsSetter); ok {
		_ = setter.SetDTR(true)
		_ = setter.SetRTS(true)
	}

	s.connected = false
	s.cfg.Listener.OnStatusChanged("Online")
	if s.timer != nil {
		s.timer.Reset(s.cfg.InactivityTimeout)
	}
}

func (s *Server) closePortLocked() error {
	if s.port == nil {
		return nil
	}

	close(s.readerStop)
	err := s.port.Close()
	s.port = nil
	s.connected = false
	s.cfg.Listener.OnStatusChanged("Offline")
	return err
}

func (s *Server) setBaudLocked(baud int) (bool, error) {
	if s.port == nil {
		return false, &PortNotOpenError{Op: "setBaud"}
	}

	name := s.portName
	if err := s.closePortLocked(); err != nil {
		return false, err
	}

	ok, err := s.openPortLocked(name, baud)
	if err != nil || !ok {
		s.cfg.Listener.OnError("COM Port Error", fmt.Sprintf("could not set %s baud rate to %d", name, baud))
		s.cfg.Listener.OnStatusChanged("Offline")
		return false, err
	}
	return true, nil
}

// startReader runs a dedicated goroutine that pumps bytes from port
// into the Run loop's mailbox until stop is closed or the port
// returns an error (most commonly because it was closed).
func (s *Server) startReader(port io.Reader, stop chan struct{}) {
	go func() {
		buf := make([]byte, 512)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case s.rxCh <- chunk:
				case <-stop:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
}
