package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameSize bounds a single request/reply body, guarding against a
// runaway length prefix from a misbehaving or hostile local peer.
const maxFrameSize = 16 << 20

// ReadFrame reads one length-prefixed frame (4-byte big-endian length
// followed by that many bytes of compact JSON) from r and parses it.
func ReadFrame(r io.Reader) (Node, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Null(), err
	}
	size := binary.BigEndian.Uint32(lenBuf[:])
	if size > maxFrameSize {
		return Null(), fmt.Errorf("wire: frame of %d bytes exceeds limit", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return Null(), err
	}
	return Parse(body)
}

// WriteFrame encodes n as compact JSON and writes it to w with a 4-byte
// big-endian length prefix.
func WriteFrame(w io.Writer, n Node) error {
	body, err := Emit(n)
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Accumulator buffers partial reads for a single client connection,
// tracking at most one pending parsed request per session. It assumes a
// length-prefixed frame: once the declared length's worth of body bytes
// has arrived, Take returns the parsed Node and resets the buffer for the
// next frame.
type Accumulator struct {
	lenKnown bool
	want     uint32
	buf      []byte
}

// Feed appends newly read bytes to the accumulator.
func (a *Accumulator) Feed(b []byte) {
	a.buf = append(a.buf, b...)
}

// Take attempts to extract one complete frame from the buffered bytes. It
// returns ok=false if more data is needed.
func (a *Accumulator) Take() (Node, bool, error) {
	if !a.lenKnown {
		if len(a.buf) < 4 {
			return Null(), false, nil
		}
		a.want = binary.BigEndian.Uint32(a.buf[:4])
		if a.want > maxFrameSize {
			return Null(), false, fmt.Errorf("wire: frame of %d bytes exceeds limit", a.want)
		}
		a.buf = a.buf[4:]
		a.lenKnown = true
	}
	if uint32(len(a.buf)) < a.want {
		return Null(), false, nil
	}
	body := a.buf[:a.want]
	a.buf = a.buf[a.want:]
	a.lenKnown = false
	a.want = 0
	n, err := Parse(body)
	if err != nil {
		return Null(), false, err
	}
	return n, true, nil
}
