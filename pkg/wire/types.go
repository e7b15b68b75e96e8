package wire

// MsgType is the one-byte tag identifying a message variant on the wire.
type MsgType byte

// Message types
const (
	// Liveness
	MsgTypePing MsgType = 0x01
	MsgTypePong MsgType = 0x02

	// Peer set
	MsgTypePeerSetDelta MsgType = 0x03

	// Chain data
	MsgTypeGetBlockHashes MsgType = 0x04
	MsgTypeBlockHashes    MsgType = 0x05
	MsgTypeTxIds          MsgType = 0x06
	MsgTypeGetBlocks      MsgType = 0x07
	MsgTypeGetTxs         MsgType = 0x08
	MsgTypeBlocks         MsgType = 0x09
	MsgTypeTx             MsgType = 0x0A

	// State sync
	MsgTypeGetRecentStates MsgType = 0x0B
	MsgTypeRecentStates    MsgType = 0x0C
)

// String returns the message type name
func (t MsgType) String() string {
	switch t {
	case MsgTypePing:
		return "Ping"
	case MsgTypePong:
		return "Pong"
	case MsgTypePeerSetDelta:
		return "PeerSetDelta"
	case MsgTypeGetBlockHashes:
		return "GetBlockHashes"
	case MsgTypeBlockHashes:
		return "BlockHashes"
	case MsgTypeTxIds:
		return "TxIds"
	case MsgTypeGetBlocks:
		return "GetBlocks"
	case MsgTypeGetTxs:
		return "GetTxs"
	case MsgTypeBlocks:
		return "Blocks"
	case MsgTypeTx:
		return "Tx"
	case MsgTypeGetRecentStates:
		return "GetRecentStates"
	case MsgTypeRecentStates:
		return "RecentStates"
	default:
		return "Unknown"
	}
}
