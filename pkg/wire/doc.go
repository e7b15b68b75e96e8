// Package wire implements the Vertexa peer-to-peer wire protocol.
//
// The wire package defines the signed message envelope, the message type
// registry, and the per-variant payload codecs used to exchange sync-related
// facts between Vertexa nodes.
//
// # Protocol Overview
//
// Messages travel as ordered sequences of opaque byte buffers ("frames").
// There is no length table: counts are inlined immediately before the
// variable-length run they describe, so a streaming reader never needs
// lookahead beyond one frame.
//
// # Envelope Format
//
// Every message is wrapped in a signed envelope:
//
//	Request direction: [identity, type_tag(1 byte), public_key, signature, body...]
//	Reply direction:   [type_tag(1 byte), public_key, signature, body...]
//
// The identity frame is an opaque routing token carried only by
// request-direction messages that expect routed replies. The signature covers
// the exact concatenation of the body frame bytes, never the header itself.
//
// # Message Types
//
// Liveness:
//   - Ping/Pong: Keep-alive messages
//
// Peer set:
//   - PeerSetDelta: Peers added/removed since the last announcement
//
// Chain data:
//   - GetBlockHashes/BlockHashes: Block hash runs
//   - TxIds: Transaction id announcements
//   - GetBlocks/Blocks: Full blocks (opaque chain encoding)
//   - GetTxs/Tx: Full transactions (opaque chain encoding)
//
// State sync:
//   - GetRecentStates/RecentStates: Per-account state-reference trails and
//     selected block-state snapshots, letting a lagging node reconstruct
//     recent world state without replaying every transaction
//
// # Frame Encoding
//
// Fixed-size frames carry block hashes (32 bytes) and account addresses
// (20 bytes). Count frames are 4-byte big-endian two's-complement integers;
// the value -1 on the RecentStates account count is the "missing" sentinel,
// distinguishing "no data at all" from "zero accounts". State blob frames
// are opaque and produced/consumed by an injected state codec.
//
// # Security Considerations
//
// Parse verifies the envelope signature before any payload decoder runs; an
// unverifiable message is rejected with ErrInvalidSignature and its body is
// never interpreted. Decoders walk frames positionally and fail fast with
// ErrTruncatedPayload or ErrMalformedFrame on attacker-supplied input. All
// parse failures are terminal for the single message being processed; drop
// and disconnect policy belongs to the transport layer.
//
// # Usage Example
//
//	// Request recent states from a peer
//	msg := &wire.Message{
//	    Payload:  &wire.GetRecentStates{Block: head},
//	    Identity: token,
//	}
//	frames, err := wire.EncodeMessage(msg, keys)
//
//	// Receive and verify a reply
//	reply, err := wire.Parse(frames, true)
//	if states, ok := reply.Payload.(*wire.RecentStates); ok {
//	    // apply states...
//	}
package wire
