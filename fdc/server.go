package fdc

import (
	"errors"
	"io"
	"time"

	"github.com/gofdc/fdcserver/drive"
	"github.com/gofdc/fdcserver/protocol"
)

// framerState is the two-state machine driving frame accumulation.
type framerState int

const (
	// stateAwaitCmd accumulates exactly protocol.FrameLen bytes and
	// dispatches them as a command frame.
	stateAwaitCmd framerState = iota

	// stateAwaitWritePayload accumulates the track payload and trailer
	// checksum following a WRIT command, sized by pendingWrit.trackLen.
	stateAwaitWritePayload
)

// writCmd is the state carried from a WRIT command to the WSTA payload
// that follows it: the driveNum/trackNum/trackLen triple decoded from
// the WRIT frame, retained across the two phases exactly as the
// original server retains its cmdBuf.
type writCmd struct {
	driveNum int
	trackNum uint16
	trackLen uint16
}

// ctrlRequest is a control-plane call submitted to the Run goroutine's
// mailbox. fn executes with exclusive access to Server state and its
// result is delivered on resp.
type ctrlRequest struct {
	fn   func() (interface{}, error)
	resp chan ctrlResult
}

type ctrlResult struct {
	value interface{}
	err   error
}

// errNotRunning is returned when a control-plane call is made after
// Run has already returned.
var errNotRunning = errors.New("fdc: server is not running")

// Server is the Altair FDC+ disk server core. It owns a Table of
// drives, the framer/state machine, the link supervisor, and the
// inactivity timer. The zero value is not usable; construct one with
// New.
type Server struct {
	cfg   Config
	table *drive.Table

	// link supervisor state, touched only from the Run goroutine.
	port       io.ReadWriteCloser
	portName   string
	baud       int
	readerStop chan struct{}
	connected  bool

	// framer state.
	state        framerState
	staging      []byte
	stagingLen   int
	pendingWrit  writCmd
	readTrackBuf []byte

	// protocol bookkeeping.
	driveSelected int

	// packet counters, surfaced to callers via Stats().
	statPkts, readPkts, writePkts, outPkts, crcErrs uint64

	timer *time.Timer

	rxCh   chan []byte
	ctrlCh chan ctrlRequest
	doneCh chan struct{}
}

// New constructs a Server. It does not start the run loop; call Run in
// its own goroutine to begin processing.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		cfg:           cfg,
		table:         drive.NewTable(),
		state:         stateAwaitCmd,
		driveSelected: protocol.NoDriveSelected,
		staging:       make([]byte, protocol.StagingBufferLen),
		readTrackBuf:  make([]byte, protocol.MaxTrackLen),
		rxCh:          make(chan []byte, 16),
		ctrlCh:        make(chan ctrlRequest),
		doneCh:        make(chan struct{}),
	}
}
