package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
	"github.com/VertexaChain/vertexa-node/pkg/wire"
)

func testStore(t *testing.T) *StateStore {
	t.Helper()
	s, err := NewStateStore(t.TempDir(), chain.JSONStateCodec{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addr(b byte) chain.Address {
	var a chain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func hash(b byte) chain.Hash {
	var h chain.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestRecordAndTrail(t *testing.T) {
	s := testStore(t)

	state := &chain.AccountState{Nonce: 1, Balance: 100}
	require.NoError(t, s.RecordStateChange(addr(1), hash(10), state, false))
	require.NoError(t, s.RecordStateChange(addr(1), hash(11), state, true))
	require.NoError(t, s.RecordStateChange(addr(2), hash(11), state, false))

	trail, err := s.TrailFor(addr(1))
	require.NoError(t, err)
	assert.Equal(t, []chain.Hash{hash(10), hash(11)}, trail)

	trail, err = s.TrailFor(addr(2))
	require.NoError(t, err)
	assert.Equal(t, []chain.Hash{hash(11)}, trail)

	_, err = s.TrailFor(addr(9))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotAt(t *testing.T) {
	s := testStore(t)

	state := &chain.AccountState{Nonce: 7, Balance: 42, StorageRoot: hash(0xAA)}
	require.NoError(t, s.RecordStateChange(addr(1), hash(10), state, true))

	states, err := s.SnapshotAt(hash(10))
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, state, states[addr(1)])

	_, err = s.SnapshotAt(hash(99))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildRecentStatesMissing(t *testing.T) {
	s := testStore(t)

	msg, err := s.BuildRecentStates(hash(1))
	require.NoError(t, err)
	assert.True(t, msg.Missing)
	assert.Equal(t, hash(1), msg.Block)

	// The missing payload must encode to exactly two frames.
	body, err := msg.BodyFrames()
	require.NoError(t, err)
	assert.Len(t, body, 2)
}

func TestBuildRecentStates(t *testing.T) {
	s := testStore(t)

	state1 := &chain.AccountState{Nonce: 1, Balance: 10}
	state2 := &chain.AccountState{Nonce: 2, Balance: 20}
	require.NoError(t, s.RecordStateChange(addr(1), hash(10), state1, false))
	require.NoError(t, s.RecordStateChange(addr(1), hash(11), state1, true))
	require.NoError(t, s.RecordStateChange(addr(2), hash(11), state2, true))

	msg, err := s.BuildRecentStates(hash(11))
	require.NoError(t, err)
	require.False(t, msg.Missing)

	assert.Equal(t, []chain.Hash{hash(10), hash(11)}, msg.Trails[addr(1)])
	assert.Equal(t, []chain.Hash{hash(11)}, msg.Trails[addr(2)])
	require.Contains(t, msg.Snapshots, hash(11))
	assert.Len(t, msg.Snapshots[hash(11)], 2)

	// The payload built from the store must satisfy the codec invariants.
	_, err = msg.BodyFrames()
	require.NoError(t, err)
}

func TestApplyRecentStates(t *testing.T) {
	serving := testStore(t)
	lagging := testStore(t)

	state := &chain.AccountState{Nonce: 3, Balance: 30}
	require.NoError(t, serving.RecordStateChange(addr(1), hash(10), state, false))
	require.NoError(t, serving.RecordStateChange(addr(1), hash(11), state, true))

	msg, err := serving.BuildRecentStates(hash(11))
	require.NoError(t, err)

	require.NoError(t, lagging.ApplyRecentStates(msg))

	trail, err := lagging.TrailFor(addr(1))
	require.NoError(t, err)
	assert.Equal(t, []chain.Hash{hash(10), hash(11)}, trail)

	states, err := lagging.SnapshotAt(hash(11))
	require.NoError(t, err)
	assert.Equal(t, state, states[addr(1)])
}

func TestApplyRecentStatesReplacesTrail(t *testing.T) {
	s := testStore(t)

	state := &chain.AccountState{Nonce: 1}
	require.NoError(t, s.RecordStateChange(addr(1), hash(1), state, false))

	msg := &wire.RecentStates{
		Block: hash(11),
		Trails: map[chain.Address][]chain.Hash{
			addr(1): {hash(10), hash(11)},
		},
		Snapshots: map[chain.Hash]map[chain.Address][]byte{},
	}
	require.NoError(t, s.ApplyRecentStates(msg))

	trail, err := s.TrailFor(addr(1))
	require.NoError(t, err)
	assert.Equal(t, []chain.Hash{hash(10), hash(11)}, trail)
}

func TestApplyRecentStatesDropsOrphanSnapshots(t *testing.T) {
	s := testStore(t)

	msg := &wire.RecentStates{
		Block: hash(11),
		Trails: map[chain.Address][]chain.Hash{
			addr(1): {hash(11)},
		},
		Snapshots: map[chain.Hash]map[chain.Address][]byte{
			hash(99): {addr(1): []byte(`{"nonce":9}`)},
		},
	}
	require.NoError(t, s.ApplyRecentStates(msg))

	_, err := s.SnapshotAt(hash(99))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyRecentStatesMissing(t *testing.T) {
	s := testStore(t)

	err := s.ApplyRecentStates(&wire.RecentStates{Block: hash(1), Missing: true})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestStats(t *testing.T) {
	s := testStore(t)

	accounts, snapshots, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, accounts)
	assert.Zero(t, snapshots)

	state := &chain.AccountState{}
	require.NoError(t, s.RecordStateChange(addr(1), hash(10), state, true))
	require.NoError(t, s.RecordStateChange(addr(2), hash(10), state, false))

	accounts, snapshots, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, accounts)
	assert.Equal(t, 1, snapshots)
}
