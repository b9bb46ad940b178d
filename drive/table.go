package drive

import "os"

// MaxDrive is the number of drive slots in a Table. It mirrors
// protocol.MaxDrive; the two packages define it independently so that
// drive has no dependency on the wire-format package - the drive table
// is a lower-level component than the framer that sits on top of it.
const MaxDrive = 4

// Slot describes one drive's mount state.
type Slot struct {
	mounted    bool
	file       *os.File
	path       string
	maxTrack   uint16
	curTrack   uint16
	headLoaded bool
	sizeLabel  string
}

// Mounted reports whether a disk image is currently mounted.
func (s *Slot) Mounted() bool { return s.mounted }

// Path returns the backing file path, or "" when unmounted.
func (s *Slot) Path() string { return s.path }

// MaxTrack returns the inferred track count, or 0 when unmounted.
func (s *Slot) MaxTrack() uint16 { return s.maxTrack }

// CurTrack returns the last track reported for this drive. It is
// always 0 while unmounted.
func (s *Slot) CurTrack() uint16 { return s.curTrack }

// HeadLoaded reports the last head-load status reported by the
// controller for this drive.
func (s *Slot) HeadLoaded() bool { return s.headLoaded }

// SizeLabel returns the cosmetic size label ("75K", "330K", "8MB",
// "???"), or "" when unmounted.
func (s *Slot) SizeLabel() string { return s.sizeLabel }

// Table is the fixed set of MaxDrive drive slots.
type Table struct {
	slots [MaxDrive]Slot
}

// NewTable constructs an empty drive table; all slots start unmounted.
func NewTable() *Table {
	return &Table{}
}

func inRange(drive int) bool {
	return drive >= 0 && drive < MaxDrive
}

// Slot returns the slot for drive, or nil if drive is out of range.
// The returned pointer aliases the table's internal state and must
// only be read, never mutated, by callers outside this package.
func (t *Table) Slot(drive int) *Slot {
	if !inRange(drive) {
		return nil
	}
	return &t.slots[drive]
}

// Mount opens path for the given drive, closing any file already open
// on that slot first, and infers the drive's geometry from the file
// size. It reports (false, err) on any failure to open the file, in
// which case no existing geometry or mount state is disturbed beyond
// the close of the previous file.
func (t *Table) Mount(drive int, path string) (bool, error) {
	if !inRange(drive) {
		return false, &RangeError{Op: "mount", Drive: drive}
	}

	slot := &t.slots[drive]
	if slot.file != nil {
		_ = slot.file.Close()
		slot.file = nil
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return false, err
	}

	maxTrack, label := geometryFor(info.Size())

	slot.file = f
	slot.path = path
	slot.maxTrack = maxTrack
	slot.sizeLabel = label
	slot.mounted = true
	slot.curTrack = 0

	return true, nil
}

// Unmount closes the drive's backing file, if any, and resets its
// track and mount state. Unmount returns an error only for an
// out-of-range drive: unmounting an already-unmounted drive is a
// no-op, matching the original server's
// unconditional emit of mountChanged(drive, false, ...).
func (t *Table) Unmount(drive int) error {
	if !inRange(drive) {
		return &RangeError{Op: "unmount", Drive: drive}
	}

	slot := &t.slots[drive]
	if slot.file != nil {
		_ = slot.file.Close()
		slot.file = nil
	}
	slot.mounted = false
	slot.path = ""
	slot.maxTrack = 0
	slot.sizeLabel = ""
	slot.curTrack = 0

	return nil
}

// Bitmask returns the STAT response's mount bitmask: bit d set iff
// drive d is mounted.
func (t *Table) Bitmask() uint16 {
	var mask uint16
	for d := 0; d < MaxDrive; d++ {
		if t.slots[d].mounted {
			mask |= 1 << uint(d)
		}
	}
	return mask
}

// UpdateTrack coerces the effective track to 0 if drive is unmounted,
// then stores it if it differs from the slot's current track. It
// returns the effective track and whether the stored value changed.
func (t *Table) UpdateTrack(drive int, track uint16) (effective uint16, changed bool, err error) {
	if !inRange(drive) {
		return track, false, &RangeError{Op: "updateTrack", Drive: drive}
	}

	slot := &t.slots[drive]
	effective = track
	if !slot.mounted {
		effective = 0
	}

	if effective != slot.curTrack {
		slot.curTrack = effective
		changed = true
	}
	return effective, changed, nil
}

// SetHeadLoaded updates the head-load status for drive and reports
// whether it changed.
func (t *Table) SetHeadLoaded(drive int, loaded bool) (changed bool, err error) {
	if !inRange(drive) {
		return false, &RangeError{Op: "setHeadLoaded", Drive: drive}
	}
	slot := &t.slots[drive]
	changed = slot.headLoaded != loaded
	slot.headLoaded = loaded
	return changed, nil
}

// ReadTrack seeks to trackNum*len(buf) in drive's backing file and
// reads into buf. It returns the number of bytes actually read; a
// short read that returned at least one byte is returned without
// error so the caller can decide how to report it rather than
// treating a short track as a protocol error. A read that returns no
// bytes at all returns the underlying error (io.EOF past the end of
// the file).
func (t *Table) ReadTrack(drive int, trackNum uint16, buf []byte) (int, error) {
	if !inRange(drive) {
		return 0, &RangeError{Op: "readTrack", Drive: drive}
	}
	slot := &t.slots[drive]
	if slot.file == nil {
		return 0, os.ErrClosed
	}

	offset := int64(trackNum) * int64(len(buf))
	if _, err := slot.file.Seek(offset, 0); err != nil {
		return 0, err
	}
	n, err := slot.file.Read(buf)
	if n > 0 {
		return n, nil
	}
	return n, err
}

// WriteTrack seeks to trackNum*len(data) in drive's backing file and
// writes data. It returns the number of bytes actually written.
func (t *Table) WriteTrack(drive int, trackNum uint16, data []byte) (int, error) {
	if !inRange(drive) {
		return 0, &RangeError{Op: "writeTrack", Drive: drive}
	}
	slot := &t.slots[drive]
	if slot.file == nil {
		return 0, os.ErrClosed
	}

	offset := int64(trackNum) * int64(len(data))
	if _, err := slot.file.Seek(offset, 0); err != nil {
		return 0, err
	}
	return slot.file.Write(data)
}
