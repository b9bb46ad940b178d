// Package protocol implements the Altair FDC+ serial disk server wire
// format.
//
// # Protocol Overview
//
// The FDC+ link is command/response, always initiated by the
// controller:
//
//	Command:  [COMMAND(4)][PARAM1(2)][PARAM2(2)][CHECKSUM(2)]
//	Response: [COMMAND(4)][RCODE(2)][RDATA(2)][CHECKSUM(2)]
//
// All multi-byte fields are little-endian. COMMAND is four ASCII bytes
// ("STAT", "READ", "WRIT", "WSTA"). CHECKSUM is the 16-bit wrapping sum
// of the first eight bytes of the frame — not a CRC.
//
// A READ response is not wrapped in a Frame: it is raw track bytes
// followed by a 16-bit little-endian checksum of those bytes. A WRIT
// command is followed, after the server's WRIT response, by the same
// track-plus-checksum shape sent from controller to server.
//
// # Frame builders
//
// Use the New*Response functions to build outbound frames:
//
//	resp := protocol.NewStatResponse(mounted)
//	resp := protocol.NewWritResponse(protocol.StatusOK)
//
// # Frame decoding
//
// Use DecodeFrame to validate and parse an inbound 10-byte command:
//
//	frame, err := protocol.DecodeFrame(buf)
//	if err != nil {
//	    // bad checksum: drop silently, per spec
//	}
package protocol
