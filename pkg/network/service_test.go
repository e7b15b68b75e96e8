package network

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
	"github.com/VertexaChain/vertexa-node/pkg/crypto"
	"github.com/VertexaChain/vertexa-node/pkg/store"
)

func testService(t *testing.T) *SyncService {
	t.Helper()

	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	st, err := store.NewStateStore(t.TempDir(), chain.JSONStateCodec{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc, err := NewSyncService(&Config{
		ListenAddr: "/ip4/127.0.0.1/tcp/0",
		Keys:       keys,
		Store:      st,
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	return svc
}

func connect(t *testing.T, from, to *SyncService) peer.ID {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := from.host.Connect(ctx, peer.AddrInfo{
		ID:    to.host.ID(),
		Addrs: to.host.Addrs(),
	})
	require.NoError(t, err)
	return to.host.ID()
}

func testHash(b byte) chain.Hash {
	var h chain.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func testAddress(b byte) chain.Address {
	var a chain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestPingPong(t *testing.T) {
	a := testService(t)
	b := testService(t)
	id := connect(t, a, b)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, a.PingPeer(ctx, id))
	assert.GreaterOrEqual(t, a.PeerCount(), 1)
}

func TestRequestRecentStates(t *testing.T) {
	a := testService(t)
	b := testService(t)
	id := connect(t, a, b)

	state := &chain.AccountState{Nonce: 5, Balance: 500}
	require.NoError(t, b.store.RecordStateChange(testAddress(1), testHash(10), state, false))
	require.NoError(t, b.store.RecordStateChange(testAddress(1), testHash(11), state, true))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	states, err := a.RequestRecentStates(ctx, id, testHash(11))
	require.NoError(t, err)
	require.False(t, states.Missing)
	assert.Equal(t, []chain.Hash{testHash(10), testHash(11)}, states.Trails[testAddress(1)])
	assert.Contains(t, states.Snapshots, testHash(11))

	// Apply on the requesting side and verify the trail landed.
	require.NoError(t, a.store.ApplyRecentStates(states))
	trail, err := a.store.TrailFor(testAddress(1))
	require.NoError(t, err)
	assert.Equal(t, []chain.Hash{testHash(10), testHash(11)}, trail)
}

func TestRequestRecentStatesMissing(t *testing.T) {
	a := testService(t)
	b := testService(t)
	id := connect(t, a, b)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	states, err := a.RequestRecentStates(ctx, id, testHash(0x77))
	require.NoError(t, err)
	assert.True(t, states.Missing)
	assert.Equal(t, testHash(0x77), states.Block)
}

func TestAddrsIncludePeerID(t *testing.T) {
	svc := testService(t)

	addrs := svc.Addrs()
	require.NotEmpty(t, addrs)
	for _, addr := range addrs {
		assert.Contains(t, addr, "/p2p/")
	}
}
