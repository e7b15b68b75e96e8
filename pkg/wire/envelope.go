package wire

import (
	"fmt"

	"github.com/VertexaChain/vertexa-node/pkg/crypto"
)

// Payload is implemented by every concrete message variant. BodyFrames is the
// variant's own encoding; the envelope never inspects body frames beyond
// signing their concatenation.
type Payload interface {
	Type() MsgType
	BodyFrames() (Frames, error)
}

// Decoder reconstructs a concrete payload from raw body frames.
type Decoder func(body Frames) (Payload, error)

// decoders maps each message type to its decoder. Populated once in init and
// read-only afterwards, so concurrent Parse calls need no locking.
var decoders map[MsgType]Decoder

func init() {
	decoders = map[MsgType]Decoder{
		MsgTypePing:            decodePing,
		MsgTypePong:            decodePong,
		MsgTypePeerSetDelta:    decodePeerSetDelta,
		MsgTypeGetBlockHashes:  decodeGetBlockHashes,
		MsgTypeBlockHashes:     decodeBlockHashes,
		MsgTypeTxIds:           decodeTxIds,
		MsgTypeGetBlocks:       decodeGetBlocks,
		MsgTypeGetTxs:          decodeGetTxs,
		MsgTypeBlocks:          decodeBlocks,
		MsgTypeTx:              decodeTx,
		MsgTypeGetRecentStates: decodeGetRecentStates,
		MsgTypeRecentStates:    decodeRecentStates,
	}
}

// Message is a payload together with its routing identity. Identity is set
// once, either by the sender before encoding or from the first frame during
// a request-direction parse; reply-direction messages carry none.
type Message struct {
	Payload  Payload
	Identity []byte
}

// Envelope header widths, in frames. Request-direction envelopes carry the
// routing identity as their first frame.
const (
	replyHeaderFrames   = 3
	requestHeaderFrames = 4
)

// EncodeMessage frames and signs a message for transmission:
//
//	[identity?, type_tag, public_key, signature, body...]
//
// The signature covers the exact concatenation of the body frame bytes and
// nothing else.
func EncodeMessage(msg *Message, keys *crypto.KeyPair) (Frames, error) {
	body, err := msg.Payload.BodyFrames()
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", msg.Payload.Type(), err)
	}

	signature := keys.Sign(body.Concat())

	out := make(Frames, 0, requestHeaderFrames+len(body))
	if msg.Identity != nil {
		out = append(out, msg.Identity)
	}
	out = append(out, []byte{byte(msg.Payload.Type())}, keys.PublicKey(), signature)
	out = append(out, body...)
	return out, nil
}

// Parse verifies and decodes a raw frame sequence. The signature check is a
// trust boundary: no decoder runs on an unverified body. Parsing is stateless
// per call; a failed message never affects other in-flight messages.
func Parse(raw Frames, isReply bool) (*Message, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyMessage
	}

	headerWidth := replyHeaderFrames
	if !isReply {
		headerWidth = requestHeaderFrames
	}
	if len(raw) < headerWidth {
		return nil, fmt.Errorf("%w: envelope has %d frames, want at least %d", ErrTruncatedPayload, len(raw), headerWidth)
	}

	var identity []byte
	offset := 0
	if !isReply {
		identity = raw[0]
		offset = 1
	}

	tagFrame := raw[offset]
	if len(tagFrame) != 1 {
		return nil, fmt.Errorf("%w: type frame is %d bytes, want 1", ErrMalformedFrame, len(tagFrame))
	}
	publicKey := raw[offset+1]
	signature := raw[offset+2]
	body := Frames(raw[headerWidth:])

	if !crypto.Verify(publicKey, body.Concat(), signature) {
		return nil, ErrInvalidSignature
	}

	tag := MsgType(tagFrame[0])
	decode, ok := decoders[tag]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownMessageType, byte(tag))
	}

	payload, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}

	return &Message{Payload: payload, Identity: identity}, nil
}
