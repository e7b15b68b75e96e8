package wire

import (
	"fmt"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
)

// ===== LIVENESS =====

// Ping is a keep-alive request.
type Ping struct{}

// Pong answers a Ping.
type Pong struct{}

func (Ping) Type() MsgType { return MsgTypePing }
func (Pong) Type() MsgType { return MsgTypePong }

func (Ping) BodyFrames() (Frames, error) { return nil, nil }
func (Pong) BodyFrames() (Frames, error) { return nil, nil }

func decodePing(Frames) (Payload, error) { return &Ping{}, nil }
func decodePong(Frames) (Payload, error) { return &Pong{}, nil }

// ===== PEER SET =====

// PeerSetDelta announces peers added to and removed from the sender's peer
// set since its last announcement.
type PeerSetDelta struct {
	Added   []ma.Multiaddr
	Removed []ma.Multiaddr
}

func (*PeerSetDelta) Type() MsgType { return MsgTypePeerSetDelta }

func (m *PeerSetDelta) BodyFrames() (Frames, error) {
	out := Frames{countFrame(int32(len(m.Added)))}
	for _, addr := range m.Added {
		out = append(out, addr.Bytes())
	}
	out = append(out, countFrame(int32(len(m.Removed))))
	for _, addr := range m.Removed {
		out = append(out, addr.Bytes())
	}
	return out, nil
}

func decodePeerSetDelta(body Frames) (Payload, error) {
	r := newFrameReader(body)
	msg := &PeerSetDelta{}

	var err error
	if msg.Added, err = decodeMultiaddrRun(r); err != nil {
		return nil, err
	}
	if msg.Removed, err = decodeMultiaddrRun(r); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeMultiaddrRun(r *frameReader) ([]ma.Multiaddr, error) {
	n, err := r.nonNegativeCount(1)
	if err != nil {
		return nil, err
	}
	addrs := make([]ma.Multiaddr, 0, n)
	for i := 0; i < n; i++ {
		frame, err := r.next()
		if err != nil {
			return nil, err
		}
		addr, err := ma.NewMultiaddrBytes(frame)
		if err != nil {
			return nil, fmt.Errorf("%w: bad multiaddr: %v", ErrMalformedFrame, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// ===== CHAIN DATA =====

// GetBlockHashes requests up to Max block hashes descending from From.
type GetBlockHashes struct {
	From chain.Hash
	Max  int32
}

func (*GetBlockHashes) Type() MsgType { return MsgTypeGetBlockHashes }

func (m *GetBlockHashes) BodyFrames() (Frames, error) {
	return Frames{m.From.Bytes(), countFrame(m.Max)}, nil
}

func decodeGetBlockHashes(body Frames) (Payload, error) {
	r := newFrameReader(body)
	msg := &GetBlockHashes{}

	var err error
	if msg.From, err = r.hash(); err != nil {
		return nil, err
	}
	if msg.Max, err = r.count(); err != nil {
		return nil, err
	}
	if msg.Max < 0 {
		return nil, fmt.Errorf("%w: negative max %d", ErrMalformedFrame, msg.Max)
	}
	return msg, nil
}

// BlockHashes carries a run of block hashes.
type BlockHashes struct {
	Hashes []chain.Hash
}

// TxIds announces transaction ids known to the sender.
type TxIds struct {
	Ids []chain.Hash
}

// GetBlocks requests full blocks by hash.
type GetBlocks struct {
	Hashes []chain.Hash
}

// GetTxs requests full transactions by id.
type GetTxs struct {
	Ids []chain.Hash
}

func (*BlockHashes) Type() MsgType { return MsgTypeBlockHashes }
func (*TxIds) Type() MsgType       { return MsgTypeTxIds }
func (*GetBlocks) Type() MsgType   { return MsgTypeGetBlocks }
func (*GetTxs) Type() MsgType      { return MsgTypeGetTxs }

func (m *BlockHashes) BodyFrames() (Frames, error) { return encodeHashRun(m.Hashes), nil }
func (m *TxIds) BodyFrames() (Frames, error)       { return encodeHashRun(m.Ids), nil }
func (m *GetBlocks) BodyFrames() (Frames, error)   { return encodeHashRun(m.Hashes), nil }
func (m *GetTxs) BodyFrames() (Frames, error)      { return encodeHashRun(m.Ids), nil }

func decodeBlockHashes(body Frames) (Payload, error) {
	hashes, err := decodeHashRun(newFrameReader(body))
	if err != nil {
		return nil, err
	}
	return &BlockHashes{Hashes: hashes}, nil
}

func decodeTxIds(body Frames) (Payload, error) {
	ids, err := decodeHashRun(newFrameReader(body))
	if err != nil {
		return nil, err
	}
	return &TxIds{Ids: ids}, nil
}

func decodeGetBlocks(body Frames) (Payload, error) {
	hashes, err := decodeHashRun(newFrameReader(body))
	if err != nil {
		return nil, err
	}
	return &GetBlocks{Hashes: hashes}, nil
}

func decodeGetTxs(body Frames) (Payload, error) {
	ids, err := decodeHashRun(newFrameReader(body))
	if err != nil {
		return nil, err
	}
	return &GetTxs{Ids: ids}, nil
}

func encodeHashRun(hashes []chain.Hash) Frames {
	out := make(Frames, 0, 1+len(hashes))
	out = append(out, countFrame(int32(len(hashes))))
	for _, h := range hashes {
		out = append(out, h.Bytes())
	}
	return out
}

func decodeHashRun(r *frameReader) ([]chain.Hash, error) {
	n, err := r.nonNegativeCount(1)
	if err != nil {
		return nil, err
	}
	hashes := make([]chain.Hash, 0, n)
	for i := 0; i < n; i++ {
		h, err := r.hash()
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

// Blocks carries full blocks in their opaque chain encoding.
type Blocks struct {
	Raw [][]byte
}

func (*Blocks) Type() MsgType { return MsgTypeBlocks }

func (m *Blocks) BodyFrames() (Frames, error) {
	out := make(Frames, 0, 1+len(m.Raw))
	out = append(out, countFrame(int32(len(m.Raw))))
	for _, raw := range m.Raw {
		out = append(out, raw)
	}
	return out, nil
}

func decodeBlocks(body Frames) (Payload, error) {
	r := newFrameReader(body)
	n, err := r.nonNegativeCount(1)
	if err != nil {
		return nil, err
	}
	msg := &Blocks{Raw: make([][]byte, 0, n)}
	for i := 0; i < n; i++ {
		raw, err := r.next()
		if err != nil {
			return nil, err
		}
		msg.Raw = append(msg.Raw, raw)
	}
	return msg, nil
}

// Tx carries a single transaction in its opaque chain encoding.
type Tx struct {
	Raw []byte
}

func (*Tx) Type() MsgType { return MsgTypeTx }

func (m *Tx) BodyFrames() (Frames, error) {
	return Frames{m.Raw}, nil
}

func decodeTx(body Frames) (Payload, error) {
	r := newFrameReader(body)
	raw, err := r.next()
	if err != nil {
		return nil, err
	}
	return &Tx{Raw: raw}, nil
}

// ===== STATE SYNC =====

// GetRecentStates asks a peer for the recent-state data anchored at Block.
type GetRecentStates struct {
	Block chain.Hash
}

func (*GetRecentStates) Type() MsgType { return MsgTypeGetRecentStates }

func (m *GetRecentStates) BodyFrames() (Frames, error) {
	return Frames{m.Block.Bytes()}, nil
}

func decodeGetRecentStates(body Frames) (Payload, error) {
	r := newFrameReader(body)
	block, err := r.hash()
	if err != nil {
		return nil, err
	}
	return &GetRecentStates{Block: block}, nil
}
