package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
	"github.com/VertexaChain/vertexa-node/pkg/store"
)

type fakeNode struct {
	peers int
	addrs []string
}

func (f *fakeNode) PeerCount() int  { return f.peers }
func (f *fakeNode) Addrs() []string { return f.addrs }

func testServer(t *testing.T) (*Server, *store.StateStore) {
	t.Helper()

	st, err := store.NewStateStore(t.TempDir(), chain.JSONStateCodec{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	node := &fakeNode{peers: 2, addrs: []string{"/ip4/127.0.0.1/tcp/9560/p2p/test"}}
	return NewServer(st, node, DefaultConfig()), st
}

func testAddress(b byte) chain.Address {
	var a chain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func testHash(b byte) chain.Hash {
	var h chain.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func doGet(t *testing.T, server *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

func TestStatusEndpoint(t *testing.T) {
	server, st := testServer(t)

	state := &chain.AccountState{Nonce: 1}
	require.NoError(t, st.RecordStateChange(testAddress(1), testHash(10), state, true))

	w := doGet(t, server, "/api/v1/status")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Accounts)
	assert.Equal(t, 1, resp.Snapshots)
	assert.Equal(t, 2, resp.Peers)
}

func TestTrailEndpoint(t *testing.T) {
	server, st := testServer(t)

	state := &chain.AccountState{Nonce: 1}
	require.NoError(t, st.RecordStateChange(testAddress(1), testHash(10), state, false))
	require.NoError(t, st.RecordStateChange(testAddress(1), testHash(11), state, false))

	w := doGet(t, server, fmt.Sprintf("/api/v1/trail/%s", testAddress(1)))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp TrailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{testHash(10).String(), testHash(11).String()}, resp.Trail)

	w = doGet(t, server, fmt.Sprintf("/api/v1/trail/%s", testAddress(9)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(t, server, "/api/v1/trail/nothex")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshotEndpoint(t *testing.T) {
	server, st := testServer(t)

	state := &chain.AccountState{Nonce: 7, Balance: 700}
	require.NoError(t, st.RecordStateChange(testAddress(1), testHash(10), state, true))

	w := doGet(t, server, fmt.Sprintf("/api/v1/snapshot/%s", testHash(10)))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Contains(t, resp.States, testAddress(1).String())
	assert.Equal(t, uint64(7), resp.States[testAddress(1).String()].Nonce)

	w = doGet(t, server, fmt.Sprintf("/api/v1/snapshot/%s", testHash(0x55)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(t, server, "/api/v1/snapshot/short")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
