package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
)

var (
	ErrEmptyMessage       = errors.New("empty message")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrTruncatedPayload   = errors.New("truncated payload")
	ErrMalformedFrame     = errors.New("malformed frame")
)

// Frames is an ordered sequence of opaque byte buffers. One message occupies
// one frame sequence on the transport; the envelope and payload codecs agree
// on frame positions, never on a global length table.
type Frames [][]byte

// Concat returns the concatenation of all frame bytes in order. Signatures
// are computed over exactly this concatenation of the body frames.
func (f Frames) Concat() []byte {
	return bytes.Join(f, nil)
}

// Count frames are 4-byte big-endian two's-complement integers.
const countFrameSize = 4

// MissingSentinel is the count value signaling "no data available", as
// distinct from a zero-item count.
const MissingSentinel int32 = -1

func countFrame(n int32) []byte {
	buf := make([]byte, countFrameSize)
	binary.BigEndian.PutUint32(buf, uint32(n))
	return buf
}

// frameReader walks a frame sequence positionally. Every accessor fails with
// ErrTruncatedPayload once the sequence is exhausted and with
// ErrMalformedFrame when a fixed-size frame has the wrong byte length, so
// decoders never index out of bounds on attacker-supplied input.
type frameReader struct {
	frames Frames
	pos    int
}

func newFrameReader(frames Frames) *frameReader {
	return &frameReader{frames: frames}
}

// remaining returns the number of unread frames.
func (r *frameReader) remaining() int {
	return len(r.frames) - r.pos
}

// next returns the next frame.
func (r *frameReader) next() ([]byte, error) {
	if r.pos >= len(r.frames) {
		return nil, fmt.Errorf("%w: expected frame %d, have %d frames", ErrTruncatedPayload, r.pos, len(r.frames))
	}
	frame := r.frames[r.pos]
	r.pos++
	return frame, nil
}

// count reads a count frame. The missing sentinel is a valid result; callers
// that do not accept it use nonNegativeCount.
func (r *frameReader) count() (int32, error) {
	frame, err := r.next()
	if err != nil {
		return 0, err
	}
	if len(frame) != countFrameSize {
		return 0, fmt.Errorf("%w: count frame is %d bytes, want %d", ErrMalformedFrame, len(frame), countFrameSize)
	}
	return int32(binary.BigEndian.Uint32(frame)), nil
}

// nonNegativeCount reads a count frame that must not be negative and that
// must be satisfiable by the remaining frames, each counted item consuming at
// least minFrames frames.
func (r *frameReader) nonNegativeCount(minFrames int) (int, error) {
	n, err := r.count()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrMalformedFrame, n)
	}
	if int(n)*minFrames > r.remaining() {
		return 0, fmt.Errorf("%w: count %d needs %d frames, %d remain", ErrTruncatedPayload, n, int(n)*minFrames, r.remaining())
	}
	return int(n), nil
}

// hash reads a fixed-size block hash frame.
func (r *frameReader) hash() (chain.Hash, error) {
	frame, err := r.next()
	if err != nil {
		return chain.Hash{}, err
	}
	h, err := chain.HashFromBytes(frame)
	if err != nil {
		return chain.Hash{}, fmt.Errorf("%w: hash frame is %d bytes, want %d", ErrMalformedFrame, len(frame), chain.HashSize)
	}
	return h, nil
}

// address reads a fixed-size account address frame.
func (r *frameReader) address() (chain.Address, error) {
	frame, err := r.next()
	if err != nil {
		return chain.Address{}, err
	}
	a, err := chain.AddressFromBytes(frame)
	if err != nil {
		return chain.Address{}, fmt.Errorf("%w: address frame is %d bytes, want %d", ErrMalformedFrame, len(frame), chain.AddressSize)
	}
	return a, nil
}
