// Package wire implements the session's on-the-wire framing and the
// fixed-layout message bodies exchanged by the four protocol phases.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxFrameSize bounds how large a single frame body may declare itself,
// guarding against a hostile or corrupted length prefix forcing an
// unbounded allocation.
const MaxFrameSize = 64 << 20

// ErrFrameTooLarge is returned by ReadFrame when the declared body length
// exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")

// WriteFrame writes a 4-byte big-endian length prefix followed by body.
func WriteFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// ReadFrame reads one length-prefixed frame body.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
