package fdc

import (
	"fmt"

	"github.com/gofdc/fdcserver/drive"
	"github.com/gofdc/fdcserver/protocol"
)

// handleStat implements the STAT command. It is the only handler that
// touches driveSelected, and it deliberately tightens two behaviors
// relative to the original server: the drive-range comparison here
// uses strict "<" against drive.MaxDrive (the original's "<=" let a
// selection of exactly MaxDrive leak through to headChanged), and the
// previously selected drive's head status is only cleared when that
// selection was itself a real drive, not the "none selected"
// sentinel.
func (s *Server) handleStat(frame protocol.Frame) {
	s.statPkts++

	newDrive := int(frame.Param1 & 0xFF)
	headLoadedBit := frame.Param1>>8 != 0
	paramTrack := frame.Param2

	if newDrive < drive.MaxDrive && s.driveSelected != newDrive {
		if s.driveSelected != protocol.NoDriveSelected && s.driveSelected < drive.MaxDrive {
			if changed, _ := s.table.SetHeadLoaded(s.driveSelected, false); changed {
				s.cfg.Listener.OnHeadChanged(s.driveSelected, false)
			}
		}
		s.cfg.Listener.OnDriveChanged(newDrive)
	}

	if newDrive < drive.MaxDrive {
		if changed, _ := s.table.SetHeadLoaded(newDrive, headLoadedBit); changed {
			s.cfg.Listener.OnHeadChanged(newDrive, headLoadedBit)
		}
		if eff, changed, _ := s.table.UpdateTrack(newDrive, paramTrack); changed {
			s.cfg.Listener.OnTrackChanged(newDrive, eff)
		}
	}

	s.driveSelected = newDrive

	s.send(protocol.NewStatResponse(s.table.Bitmask()).Encode())

	if !s.connected {
		s.connected = true
		s.cfg.Listener.OnStatusChanged("Connected")
	}

	s.logCountersPeriodically()
}

// handleRead implements the READ command. An out-of-range drive gets
// an error notification and no wire response at all, matching the
// original server's readTrack. trackLen is clamped to
// protocol.MaxTrackLen before it is used to slice the reused output
// buffer, so a short read leaves the tail of that buffer holding
// whatever a previous READ last wrote there - the buffer is never
// re-zeroed between calls, deliberately reproducing the original's
// "stale tail" behavior rather than fixing it. The trailer checksum
// covers only the bytes the read actually reported, matching the
// original's local checksum accumulator.
func (s *Server) handleRead(frame protocol.Frame) {
	s.readPkts++

	driveNum := int(frame.Param1 >> 12)
	trackNum := frame.Param1 & 0x0FFF
	trackLen := frame.Param2

	if driveNum >= drive.MaxDrive {
		s.cfg.Listener.OnError("READ", fmt.Sprintf("drive %d is out of range", driveNum))
		return
	}

	if trackLen > protocol.MaxTrackLen {
		trackLen = protocol.MaxTrackLen
	}

	eff, changed, _ := s.table.UpdateTrack(driveNum, trackNum)
	if changed {
		s.cfg.Listener.OnTrackChanged(driveNum, eff)
	}

	buf := s.readTrackBuf[:trackLen]
	n, err := s.table.ReadTrack(driveNum, eff, buf)
	if err != nil && s.cfg.Logger != nil {
		s.cfg.Logger.Debug("read track", "drive", driveNum, "track", eff, "err", err)
	}

	checksum := protocol.Sum16(buf[:n])

	wire := make([]byte, len(buf)+protocol.TrackChecksumLen)
	copy(wire, buf)
	copy(wire[len(buf):], protocol.EncodeTrackChecksum(checksum))
	s.send(wire)
}

// handleWrit implements the WRIT command's first phase: it responds
// (OK or NOT_READY) whenever the target drive is in range, and it
// always arms the framer for the payload that follows, even when the
// target drive is out of range (error notification, no wire response)
// or not ready, reproducing the original server's unconditional "state =
// STATE_WRIT" after writeResponse - recovery from a rejected WRIT on
// a desynchronised link is left to the inactivity timeout, exactly as
// in the original.
func (s *Server) handleWrit(frame protocol.Frame) {
	s.writePkts++

	driveNum := int(frame.Param1 >> 12)
	trackNum := frame.Param1 & 0x0FFF
	trackLen := frame.Param2
	if trackLen > protocol.MaxTrackLen {
		trackLen = protocol.MaxTrackLen
	}

	s.pendingWrit = writCmd{driveNum: driveNum, trackNum: trackNum, trackLen: trackLen}
	s.state = stateAwaitWritePayload

	if driveNum >= drive.MaxDrive {
		s.cfg.Listener.OnError("WRIT", fmt.Sprintf("drive %d is out of range", driveNum))
		return
	}

	rcode := protocol.StatusNotReady
	if slot := s.table.Slot(driveNum); slot != nil && slot.Mounted() {
		rcode = protocol.StatusOK
	}
	s.send(protocol.NewWritResponse(rcode).Encode())
}

// handleWsta implements the WRIT command's second phase: the track
// payload and its trailer checksum, using the driveNum/trackNum/
// trackLen triple captured by handleWrit. trackLen was already
// validated against protocol.MaxTrackLen before the framer started
// accumulating this payload, so - unlike the original server - the
// trailer checksum is never read from an unvalidated offset into the
// staging buffer.
func (s *Server) handleWsta(payload []byte) {
	driveNum := s.pendingWrit.driveNum
	trackNum := s.pendingWrit.trackNum
	trackLen := s.pendingWrit.trackLen

	data := payload[:trackLen]
	wantChecksum := protocol.DecodeTrackChecksum(payload[trackLen : trackLen+protocol.TrackChecksumLen])

	var rcode uint16
	switch {
	case driveNum >= drive.MaxDrive:
		rcode = protocol.StatusNotReady
	case !s.driveMounted(driveNum):
		rcode = protocol.StatusNotReady
	case protocol.Sum16(data) != wantChecksum:
		rcode = protocol.StatusChecksumErr
		s.crcErrs++
	default:
		eff, changed, _ := s.table.UpdateTrack(driveNum, trackNum)
		if changed {
			s.cfg.Listener.OnTrackChanged(driveNum, eff)
		}
		n, err := s.table.WriteTrack(driveNum, eff, data)
		if err != nil || n != len(data) {
			if s.cfg.Logger != nil {
				s.cfg.Logger.Error("write track short", "drive", driveNum, "wrote", n, "want", len(data), "err", err)
			}
			rcode = protocol.StatusWriteErr
		} else {
			rcode = protocol.StatusOK
		}
	}

	s.send(protocol.NewWstaResponse(rcode).Encode())
	s.state = stateAwaitCmd
}

func (s *Server) driveMounted(driveNum int) bool {
	slot := s.table.Slot(driveNum)
	return slot != nil && slot.Mounted()
}

// logCountersPeriodically reproduces the original server's habit of
// dumping its packet counters to the debug log every tenth STAT
// command.
func (s *Server) logCountersPeriodically() {
	if s.cfg.Logger == nil || s.cfg.StatLogInterval <= 0 {
		return
	}
	if s.statPkts%uint64(s.cfg.StatLogInterval) != 0 {
		return
	}
	s.cfg.Logger.Debug("counters",
		"statPkts", s.statPkts,
		"readPkts", s.readPkts,
		"writePkts", s.writePkts,
		"outPkts", s.outPkts,
		"crcErrs", s.crcErrs,
	)
}
