package wire

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
)

// RecentStates is the reply to GetRecentStates. It describes, anchored at
// Block, either nothing at all (Missing) or:
//
//   - Trails: for every tracked account, the ordered list of block hashes at
//     which that account's state changed, most recent last.
//   - Snapshots: for a subset of those block hashes, the concrete per-account
//     state values recorded at that block, as opaque blobs. Blocks without a
//     snapshot are reconstructed by the receiver by replaying deltas along
//     the trail.
//
// A snapshot block hash must appear in at least one trail; BodyFrames rejects
// payloads violating that. Missing is encoded as a -1 account count, so "no
// data at all" stays distinguishable from "zero accounts".
type RecentStates struct {
	Block     chain.Hash
	Missing   bool
	Trails    map[chain.Address][]chain.Hash
	Snapshots map[chain.Hash]map[chain.Address][]byte
}

func (*RecentStates) Type() MsgType { return MsgTypeRecentStates }

// BodyFrames encodes the payload. Counts are emitted immediately before the
// run they describe, and map iteration is sorted bytewise so the encoding is
// deterministic; receivers must not read meaning into the ordering.
func (m *RecentStates) BodyFrames() (Frames, error) {
	out := Frames{m.Block.Bytes()}

	if m.Missing {
		return append(out, countFrame(MissingSentinel)), nil
	}

	trailBlocks := make(map[chain.Hash]struct{})
	out = append(out, countFrame(int32(len(m.Trails))))
	for _, addr := range sortedAddresses(m.Trails) {
		trail := m.Trails[addr]
		out = append(out, addr.Bytes(), countFrame(int32(len(trail))))
		for _, h := range trail {
			out = append(out, h.Bytes())
			trailBlocks[h] = struct{}{}
		}
	}

	out = append(out, countFrame(int32(len(m.Snapshots))))
	for _, block := range sortedSnapshotBlocks(m.Snapshots) {
		if _, ok := trailBlocks[block]; !ok {
			return nil, fmt.Errorf("snapshot block %s not referenced by any trail", block)
		}
		states := m.Snapshots[block]
		out = append(out, block.Bytes(), countFrame(int32(len(states))))
		for _, addr := range sortedAddresses(states) {
			out = append(out, addr.Bytes(), states[addr])
		}
	}

	return out, nil
}

func decodeRecentStates(body Frames) (Payload, error) {
	r := newFrameReader(body)

	block, err := r.hash()
	if err != nil {
		return nil, err
	}

	accounts, err := r.count()
	if err != nil {
		return nil, err
	}
	if accounts == MissingSentinel {
		return &RecentStates{Block: block, Missing: true}, nil
	}
	if accounts < 0 {
		return nil, fmt.Errorf("%w: negative account count %d", ErrMalformedFrame, accounts)
	}
	if int(accounts)*2 > r.remaining() {
		return nil, fmt.Errorf("%w: %d accounts need at least %d frames, %d remain", ErrTruncatedPayload, accounts, int(accounts)*2, r.remaining())
	}

	msg := &RecentStates{
		Block:     block,
		Trails:    make(map[chain.Address][]chain.Hash, accounts),
		Snapshots: make(map[chain.Hash]map[chain.Address][]byte),
	}

	for i := 0; i < int(accounts); i++ {
		addr, err := r.address()
		if err != nil {
			return nil, err
		}
		trailLen, err := r.nonNegativeCount(1)
		if err != nil {
			return nil, err
		}
		trail := make([]chain.Hash, 0, trailLen)
		for j := 0; j < trailLen; j++ {
			h, err := r.hash()
			if err != nil {
				return nil, err
			}
			trail = append(trail, h)
		}
		msg.Trails[addr] = trail
	}

	snapshots, err := r.nonNegativeCount(2)
	if err != nil {
		return nil, err
	}
	for i := 0; i < snapshots; i++ {
		snapBlock, err := r.hash()
		if err != nil {
			return nil, err
		}
		pairs, err := r.nonNegativeCount(2)
		if err != nil {
			return nil, err
		}
		states := make(map[chain.Address][]byte, pairs)
		for j := 0; j < pairs; j++ {
			addr, err := r.address()
			if err != nil {
				return nil, err
			}
			blob, err := r.next()
			if err != nil {
				return nil, err
			}
			states[addr] = blob
		}
		msg.Snapshots[snapBlock] = states
	}

	return msg, nil
}

func sortedAddresses[V any](m map[chain.Address]V) []chain.Address {
	addrs := make([]chain.Address, 0, len(m))
	for addr := range m {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return addrs
}

func sortedSnapshotBlocks(m map[chain.Hash]map[chain.Address][]byte) []chain.Hash {
	blocks := make([]chain.Hash, 0, len(m))
	for block := range m {
		blocks = append(blocks, block)
	}
	sort.Slice(blocks, func(i, j int) bool {
		return bytes.Compare(blocks[i][:], blocks[j][:]) < 0
	})
	return blocks
}
