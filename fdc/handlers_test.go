package fdc

import (
	"context"
	"os"
	"testing"

	"github.com/gofdc/fdcserver/protocol"
)

// TestReadShortReadReproducesStaleTail exercises a deliberately
// reproduced quirk: the server's READ output buffer is allocated once
// per Server and never re-zeroed between calls. A short read (one
// that runs past end-of-file) leaves whatever a previous, longer READ
// last wrote there past the point the current read actually reached,
// and the trailer checksum is computed only over the bytes the
// current read reported - a checksum of zero when nothing at all was
// read, not a checksum over the stale bytes.
func TestReadShortReadReproducesStaleTail(t *testing.T) {
	s, peer, cancel := newRunningServer(t)
	defer cancel()

	// A file exactly one 137-byte track long: track 0 is a full read,
	// track 1 runs straight off the end. geometryFor(137) lands in the
	// unknown-size bucket, so maxTrack is large enough for track 1 to
	// still be "in range" from the framer's point of view; only the
	// backing file itself is short.
	dir := t.TempDir()
	path := dir + "/image.dsk"
	firstPattern := make([]byte, 137)
	for i := range firstPattern {
		firstPattern[i] = 0xAA
	}
	if err := os.WriteFile(path, firstPattern, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if ok, err := s.MountDisk(context.Background(), 0, path); err != nil || !ok {
		t.Fatalf("MountDisk: ok=%v err=%v", ok, err)
	}

	if err := peer.send(encodeCommand(protocol.CmdRead, 0<<12|0, 137)); err != nil {
		t.Fatalf("send READ track 0: %v", err)
	}
	firstWire, err := peer.recv(137 + protocol.TrackChecksumLen)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(firstWire[:137]) != string(firstPattern) {
		t.Fatalf("track 0 payload did not round-trip")
	}

	if err := peer.send(encodeCommand(protocol.CmdRead, 0<<12|1, 137)); err != nil {
		t.Fatalf("send READ track 1: %v", err)
	}
	secondWire, err := peer.recv(137 + protocol.TrackChecksumLen)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}

	for i, b := range secondWire[:137] {
		if b != firstPattern[i] {
			t.Fatalf("byte %d of short read = %#02x, want stale %#02x from the previous READ", i, b, firstPattern[i])
		}
	}
	checksum := protocol.DecodeTrackChecksum(secondWire[137:])
	if checksum != 0 {
		t.Errorf("short-read trailer checksum = %#04x, want 0 (nothing was actually read)", checksum)
	}
}

// TestWritOutOfRangeStillArmsPayloadPhase reproduces the original
// server's unconditional "state = STATE_WRIT" after calling
// writeResponse: even when the target drive is out of range and gets
// no wire response at all, the framer still expects - and must
// consume - a track payload before it will process another command.
// Desynchronisation recovers only via the inactivity timeout, exactly
// as in the original.
func TestWritOutOfRangeStillArmsPayloadPhase(t *testing.T) {
	s, peer, cancel := newRunningServer(t)
	defer cancel()

	if err := peer.send(encodeCommand(protocol.CmdWrit, 7<<12|0, 16)); err != nil {
		t.Fatalf("send WRIT: %v", err)
	}

	v, err := s.do(context.Background(), func() (interface{}, error) {
		return s.state, nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if v.(framerState) != stateAwaitWritePayload {
		t.Errorf("state after out-of-range WRIT = %v, want stateAwaitWritePayload", v)
	}

	payload := make([]byte, 16)
	wire := append(append([]byte{}, payload...), protocol.EncodeTrackChecksum(protocol.Sum16(payload))...)
	if err := peer.send(wire); err != nil {
		t.Fatalf("send payload: %v", err)
	}

	resp, err := peer.recv(protocol.FrameLen)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	frame, err := protocol.DecodeFrame(resp)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if frame.CommandString() != protocol.CmdWsta || frame.Param1 != protocol.StatusNotReady {
		t.Errorf("WSTA response = %+v, want StatusNotReady", frame)
	}
}
