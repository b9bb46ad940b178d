package protocol

// MaxDrive is the number of drive slots the server exposes.
const MaxDrive = 4

// NoDriveSelected is the sentinel drive-selected value meaning "none".
const NoDriveSelected = 0xff

// Frame layout constants, per the Altair FDC+ wire protocol.
const (
	// CommandLen is the length of the COMMAND tag field.
	CommandLen = 4

	// WordLen is the length of a single little-endian parameter word.
	WordLen = 2

	// ChecksumLen is the length of the trailing checksum field on a
	// command/response frame.
	ChecksumLen = 2

	// BodyLen is the number of bytes the frame checksum is computed
	// over: COMMAND + PARAM1 + PARAM2 (everything before CHECKSUM).
	BodyLen = CommandLen + WordLen + WordLen

	// FrameLen is the total size of a command or response frame.
	FrameLen = BodyLen + ChecksumLen

	// TrackChecksumLen is the length of the checksum trailer that
	// follows a track payload.
	TrackChecksumLen = 2

	// MaxTrackLen is the largest track payload the server will accept
	// or emit, per spec: 137 sectors * 32 bytes.
	MaxTrackLen = 137 * 32

	// StagingBufferLen is the size of the framer's inbound staging
	// buffer: large enough for the biggest possible write payload
	// (MaxTrackLen data bytes plus its checksum trailer).
	StagingBufferLen = MaxTrackLen + TrackChecksumLen
)

// Command tags, exchanged as four ASCII bytes.
const (
	CmdStat = "STAT"
	CmdRead = "READ"
	CmdWrit = "WRIT"
	CmdWsta = "WSTA"
)

// Response codes returned in a frame's RCODE field.
const (
	// StatusOK indicates the command completed successfully.
	StatusOK uint16 = 0x0000

	// StatusNotReady indicates the target drive is not mounted.
	StatusNotReady uint16 = 0x0001

	// StatusChecksumErr indicates a track payload's trailer checksum
	// did not match the payload.
	StatusChecksumErr uint16 = 0x0002

	// StatusWriteErr indicates a short write to the backing file.
	StatusWriteErr uint16 = 0x0003
)

// Baud rates the server supports. 403200 is preferred because it
// allows full-speed operation with the most accurate clock match to
// the FDC; 460800 also runs at full speed but the clock is off by
// about 3.5%; 230400 is the most broadly available rate but runs the
// link at 80-90% of real disk speed.
const (
	Baud230400 = 230400
	Baud403200 = 403200
	Baud460800 = 460800
)

// PreferredBaudRates returns the supported baud rates in the order the
// original FDC+ server comment documents: most accurate/fastest first.
func PreferredBaudRates() []int {
	return []int{Baud403200, Baud460800, Baud230400}
}
