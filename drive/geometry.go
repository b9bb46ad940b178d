package drive

// Known disk-image sizes and the geometry the server infers from
// them. Transcribed from the original FDC+ server's mountDisk, which
// switches on exact file size in bytes — disk images are raw
// sequential tracks with no header or metadata to read instead.
const (
	size75K  = 76800
	size330K = 337664
	size8MB  = 8978432
)

// unknownMaxTrack is the maxTrack value used whenever the file size
// doesn't match one of the known geometries. The original source uses
// the same value (2047) for both the 8MB image, whose 2048 tracks of
// 4384 bytes make up exactly size8MB bytes, and the unrecognized case.
const unknownMaxTrack = 2047

// geometryFor infers (maxTrack, sizeLabel) from a disk image's size in
// bytes.
func geometryFor(size int64) (maxTrack uint16, sizeLabel string) {
	switch size {
	case size75K:
		return 34, "75K"
	case size330K:
		return 76, "330K"
	case size8MB:
		return unknownMaxTrack, "8MB"
	default:
		return unknownMaxTrack, "???"
	}
}
