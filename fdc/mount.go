package fdc

import (
	"context"

	"github.com/gofdc/fdcserver/drive"
)

// MountDisk attaches the disk image at path to drive, inferring its
// geometry from the file's size. It reports whether the mount
// succeeded.
func (s *Server) MountDisk(ctx context.Context, driveNum int, path string) (bool, error) {
	v, err := s.do(ctx, func() (interface{}, error) {
		return s.mountLocked(driveNum, path)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// UnmountDisk detaches whatever disk image is mounted on drive, if
// any.
func (s *Server) UnmountDisk(ctx context.Context, driveNum int) error {
	_, err := s.do(ctx, func() (interface{}, error) {
		return nil, s.unmountLocked(driveNum)
	})
	return err
}

func (s *Server) mountLocked(driveNum int, path string) (bool, error) {
	ok, err := s.table.Mount(driveNum, path)
	if err != nil || !ok {
		return false, err
	}

	slot := s.table.Slot(driveNum)
	s.cfg.Listener.OnMountChanged(MountEvent{
		Drive:     driveNum,
		Mounted:   true,
		Path:      path,
		MaxTrack:  slot.MaxTrack(),
		SizeLabel: slot.SizeLabel(),
	})
	s.cfg.Listener.OnTrackChanged(driveNum, 0)
	return true, nil
}

func (s *Server) unmountLocked(driveNum int) error {
	slot := s.table.Slot(driveNum)
	if slot == nil {
		return &drive.RangeError{Op: "unmount", Drive: driveNum}
	}

	wasMounted := slot.Mounted()
	prevTrack := slot.CurTrack()

	if err := s.table.Unmount(driveNum); err != nil {
		return err
	}

	if wasMounted && prevTrack != 0 {
		s.cfg.Listener.OnTrackChanged(driveNum, 0)
	}
	s.cfg.Listener.OnMountChanged(MountEvent{Drive: driveNum, Mounted: false})
	return nil
}
