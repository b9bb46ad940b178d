// Command fdcserver runs the Altair FDC+ disk server against a real
// serial port, bridging it to up to four mounted disk images.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/gofdc/fdcserver/fdc"
	"github.com/gofdc/fdcserver/protocol"
)

type diskFlags map[int]string

func (d diskFlags) String() string {
	return fmt.Sprintf("%v", map[int]string(d))
}

func (d diskFlags) Set(value string) error {
	drive, path, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected drive=path, got %q", value)
	}
	n, err := strconv.Atoi(drive)
	if err != nil {
		return fmt.Errorf("invalid drive index %q: %w", drive, err)
	}
	d[n] = path
	return nil
}

func main() {
	var (
		port     = flag.String("port", "", "serial port device (required)")
		baud     = flag.Int("baud", protocol.PreferredBaudRates()[0], "baud rate")
		timeout  = flag.Duration("timeout", fdc.InactivityTimeout, "link inactivity timeout")
		logLevel = flag.String("log-level", envOr("FDCSERVER_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	)
	disks := make(diskFlags)
	flag.Var(disks, "disk", "drive=path, repeatable, e.g. -disk 0=/path/to/image.dsk")
	flag.Parse()

	if *port == "" {
		fmt.Fprintln(os.Stderr, "Error: -port is required")
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New()
	logger.SetOutput(os.Stderr)
	if level, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(level)
	}

	listener := &stderrListener{log: logger}
	server := fdc.New(
		fdc.WithLogger(newLogrusAdapter(logger)),
		fdc.WithListener(listener),
		fdc.WithInactivityTimeout(*timeout),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- server.Run(ctx) }()

	if ok, err := server.OpenPort(ctx, *port, *baud); err != nil || !ok {
		logger.WithError(err).Fatalf("could not open %s", *port)
	}

	for drive, path := range disks {
		if ok, err := server.MountDisk(ctx, drive, path); err != nil || !ok {
			logger.WithError(err).Errorf("could not mount drive %d from %s", drive, path)
		}
	}

	logger.Infof("fdcserver listening on %s at %d baud", *port, *baud)

	if err := <-runErrCh; err != nil && ctx.Err() == nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// logrusAdapter satisfies fdc.Logger by forwarding to a *logrus.Logger.
type logrusAdapter struct {
	l *log.Logger
}

func newLogrusAdapter(l *log.Logger) *logrusAdapter {
	return &logrusAdapter{l: l}
}

func (a *logrusAdapter) Debug(msg string, kv ...interface{}) {
	a.l.WithFields(fieldsOf(kv)).Debug(msg)
}

func (a *logrusAdapter) Info(msg string, kv ...interface{}) {
	a.l.WithFields(fieldsOf(kv)).Info(msg)
}

func (a *logrusAdapter) Error(msg string, kv ...interface{}) {
	a.l.WithFields(fieldsOf(kv)).Error(msg)
}

func fieldsOf(kv []interface{}) log.Fields {
	fields := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

// stderrListener reports every notification to the log, standing in
// for the Qt GUI's slots in this headless server.
type stderrListener struct {
	fdc.BaseListener
	log *log.Logger
}

func (s *stderrListener) OnStatusChanged(status string) {
	s.log.Infof("status: %s", status)
}

func (s *stderrListener) OnMessageChanged(message string) {
	s.log.Info(message)
}

func (s *stderrListener) OnError(title, message string) {
	s.log.Errorf("%s: %s", title, message)
}

func (s *stderrListener) OnMountChanged(event fdc.MountEvent) {
	if event.Mounted {
		s.log.Infof("drive %d mounted: %s (%s, %d tracks)", event.Drive, event.Path, event.SizeLabel, event.MaxTrack)
		return
	}
	s.log.Infof("drive %d unmounted", event.Drive)
}

func (s *stderrListener) OnTrackChanged(drive int, track uint16) {
	s.log.Debugf("drive %d track -> %d", drive, track)
}

func (s *stderrListener) OnDriveChanged(drive int) {
	s.log.Debugf("drive selected -> %d", drive)
}

func (s *stderrListener) OnHeadChanged(drive int, loaded bool) {
	s.log.Debugf("drive %d head loaded -> %v", drive, loaded)
}
