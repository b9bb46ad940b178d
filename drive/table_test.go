package drive

import (
	"os"
	"path/filepath"
	"testing"
)

func mustTempImage(t *testing.T, size int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "image.dsk")
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestMountOutOfRange(t *testing.T) {
	table := NewTable()
	mounted, err := table.Mount(MaxDrive, "whatever")
	if mounted || err == nil {
		t.Fatalf("Mount(out of range) = (%v, %v), want (false, error)", mounted, err)
	}
	if _, ok := err.(*RangeError); !ok {
		t.Errorf("err = %T, want *RangeError", err)
	}
}

func Test330KGeometry(t *testing.T) {
	path := mustTempImage(t, size330K)
	table := NewTable()

	ok, err := table.Mount(1, path)
	if err != nil || !ok {
		t.Fatalf("Mount: ok=%v err=%v", ok, err)
	}

	slot := table.Slot(1)
	if slot.MaxTrack() != 76 {
		t.Errorf("MaxTrack = %d, want 76", slot.MaxTrack())
	}
	if slot.SizeLabel() != "330K" {
		t.Errorf("SizeLabel = %q, want 330K", slot.SizeLabel())
	}
	if slot.CurTrack() != 0 {
		t.Errorf("CurTrack after mount = %d, want 0", slot.CurTrack())
	}
}

func Test75KGeometry(t *testing.T) {
	path := mustTempImage(t, size75K)
	table := NewTable()
	if ok, err := table.Mount(0, path); !ok || err != nil {
		t.Fatalf("Mount: ok=%v err=%v", ok, err)
	}
	slot := table.Slot(0)
	if slot.MaxTrack() != 34 || slot.SizeLabel() != "75K" {
		t.Errorf("got maxTrack=%d label=%q, want 34/75K", slot.MaxTrack(), slot.SizeLabel())
	}
}

func TestUnknownSizeGeometry(t *testing.T) {
	path := mustTempImage(t, 12345)
	table := NewTable()
	if ok, err := table.Mount(0, path); !ok || err != nil {
		t.Fatalf("Mount: ok=%v err=%v", ok, err)
	}
	slot := table.Slot(0)
	if slot.MaxTrack() != 2047 || slot.SizeLabel() != "???" {
		t.Errorf("got maxTrack=%d label=%q, want 2047/???", slot.MaxTrack(), slot.SizeLabel())
	}
}

func TestUnmountResetsCurTrackAndBitmask(t *testing.T) {
	path := mustTempImage(t, size75K)
	table := NewTable()
	if ok, err := table.Mount(2, path); !ok || err != nil {
		t.Fatalf("Mount: ok=%v err=%v", ok, err)
	}
	if _, _, err := table.UpdateTrack(2, 5); err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}
	if table.Slot(2).CurTrack() != 5 {
		t.Fatalf("CurTrack before unmount = %d, want 5", table.Slot(2).CurTrack())
	}

	if table.Bitmask() != 1<<2 {
		t.Errorf("Bitmask = %04x, want %04x", table.Bitmask(), uint16(1<<2))
	}

	if err := table.Unmount(2); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	if table.Slot(2).CurTrack() != 0 {
		t.Errorf("CurTrack after unmount = %d, want 0", table.Slot(2).CurTrack())
	}
	if table.Bitmask()&(1<<2) != 0 {
		t.Errorf("Bitmask still has drive 2 set after unmount")
	}
}

func TestUpdateTrackCoercesToZeroWhenUnmounted(t *testing.T) {
	table := NewTable()
	effective, changed, err := table.UpdateTrack(0, 17)
	if err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}
	if effective != 0 {
		t.Errorf("effective track on unmounted drive = %d, want 0", effective)
	}
	_ = changed
}

func TestReadWriteTrackRoundTrip(t *testing.T) {
	path := mustTempImage(t, size75K)
	table := NewTable()
	if ok, err := table.Mount(0, path); !ok || err != nil {
		t.Fatalf("Mount: ok=%v err=%v", ok, err)
	}

	payload := make([]byte, 137)
	for i := range payload {
		payload[i] = byte(i)
	}

	if n, err := table.WriteTrack(0, 10, payload); err != nil || n != len(payload) {
		t.Fatalf("WriteTrack: n=%d err=%v", n, err)
	}

	readBuf := make([]byte, 137)
	n, err := table.ReadTrack(0, 10, readBuf)
	if err != nil {
		t.Fatalf("ReadTrack: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("ReadTrack returned %d bytes, want %d", n, len(payload))
	}
	for i := range payload {
		if readBuf[i] != payload[i] {
			t.Fatalf("byte %d = %02x, want %02x", i, readBuf[i], payload[i])
		}
	}
}
