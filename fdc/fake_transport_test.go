package fdc

import (
	"io"
)

// fakeTransport is an in-memory io.ReadWriteCloser standing in for a
// real serial port. Bytes written by the server go into the fromServer
// pipe, which the test reads; bytes the test writes reach the server
// through the toServer pipe.
type fakeTransport struct {
	fromServerR *io.PipeReader
	fromServerW *io.PipeWriter
	toServerR   *io.PipeReader
	toServerW   *io.PipeWriter
}

func newFakeTransport() (*fakeTransport, *testPeer) {
	fromServerR, fromServerW := io.Pipe()
	toServerR, toServerW := io.Pipe()

	ft := &fakeTransport{
		fromServerR: fromServerR,
		fromServerW: fromServerW,
		toServerR:   toServerR,
		toServerW:   toServerW,
	}
	peer := &testPeer{r: fromServerR, w: toServerW}
	return ft, peer
}

func (f *fakeTransport) Read(p []byte) (int, error)  { return f.toServerR.Read(p) }
func (f *fakeTransport) Write(p []byte) (int, error) { return f.fromServerW.Write(p) }
func (f *fakeTransport) Close() error {
	_ = f.fromServerW.Close()
	_ = f.toServerW.Close()
	return nil
}

// testPeer is the test's end of the fake transport: it writes command
// frames to the server and reads back response frames.
type testPeer struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *testPeer) send(buf []byte) error {
	_, err := p.w.Write(buf)
	return err
}

func (p *testPeer) recv(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(p.r, buf)
	return buf, err
}
