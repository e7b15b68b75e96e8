package network

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/VertexaChain/vertexa-node/pkg/wire"
)

// Limits applied to remote input before any allocation happens.
const (
	maxFrames    = 1 << 16
	maxFrameSize = 4 << 20 // 4 MiB
)

// WriteFrames writes one frame sequence to the stream: a uvarint frame
// count, then a uvarint length followed by the raw bytes for each frame.
// This framing belongs to the transport; the wire protocol itself never
// length-prefixes its frame sequences.
func WriteFrames(w io.Writer, frames wire.Frames) error {
	var buf [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(buf[:], uint64(len(frames)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	for _, frame := range frames {
		n = binary.PutUvarint(buf[:], uint64(len(frame)))
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrames reads one frame sequence written by WriteFrames. It reads
// exactly the bytes of one sequence, so request and reply can share a
// stream.
func ReadFrames(r io.Reader) (wire.Frames, error) {
	br := byteReader{r}

	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame count: %w", err)
	}
	if count > maxFrames {
		return nil, fmt.Errorf("frame count %d exceeds limit %d", count, maxFrames)
	}

	frames := make(wire.Frames, 0, count)
	for i := uint64(0); i < count; i++ {
		size, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame length: %w", err)
		}
		if size > maxFrameSize {
			return nil, fmt.Errorf("frame of %d bytes exceeds limit %d", size, maxFrameSize)
		}
		frame := make([]byte, size)
		if _, err := io.ReadFull(r, frame); err != nil {
			return nil, fmt.Errorf("failed to read frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// byteReader adapts an io.Reader for binary.ReadUvarint without buffering
// past the varint, keeping the stream position exact.
type byteReader struct {
	r io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var p [1]byte
	if _, err := io.ReadFull(b.r, p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}
