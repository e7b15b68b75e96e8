// Package network carries wire-protocol frame sequences between Vertexa
// nodes over libp2p streams and serves the sync request/response exchange.
package network

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/libp2p/go-libp2p"
	p2pcrypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	p2pnetwork "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
	"github.com/VertexaChain/vertexa-node/pkg/crypto"
	"github.com/VertexaChain/vertexa-node/pkg/store"
	"github.com/VertexaChain/vertexa-node/pkg/wire"
)

// ProtocolID identifies the sync protocol on libp2p streams.
const ProtocolID = protocol.ID("/vertexa/sync/1.0.0")

const streamTimeout = 30 * time.Second

// identityTokenSize is the size of the routing token sent on
// request-direction envelopes.
const identityTokenSize = 16

// Config contains configuration for creating a sync service.
type Config struct {
	ListenAddr string // multiaddr, e.g. /ip4/0.0.0.0/tcp/9560
	Keys       *crypto.KeyPair
	Store      *store.StateStore
}

// SyncService answers and issues sync requests. One stream carries one
// request-direction frame sequence and, when the message kind has a reply,
// one reply-direction sequence back.
type SyncService struct {
	host  host.Host
	keys  *crypto.KeyPair
	store *store.StateStore
}

// NewSyncService creates the libp2p host and registers the stream handler.
// The host identity is derived from the node's signing key.
func NewSyncService(cfg *Config) (*SyncService, error) {
	priv, err := p2pcrypto.UnmarshalEd25519PrivateKey(cfg.Keys.Private())
	if err != nil {
		return nil, fmt.Errorf("failed to convert identity key: %w", err)
	}

	h, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(cfg.ListenAddr),
		libp2p.DefaultTransports,
		libp2p.DefaultMuxers,
		libp2p.DefaultSecurity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create libp2p host: %w", err)
	}

	s := &SyncService{host: h, keys: cfg.Keys, store: cfg.Store}
	h.SetStreamHandler(ProtocolID, s.handleStream)
	return s, nil
}

// Host returns the libp2p host.
func (s *SyncService) Host() host.Host {
	return s.host
}

// Addrs returns the full dialable addresses of this node.
func (s *SyncService) Addrs() []string {
	p2pPart := fmt.Sprintf("/p2p/%s", s.host.ID())
	var out []string
	for _, addr := range s.host.Addrs() {
		out = append(out, addr.String()+p2pPart)
	}
	return out
}

// PeerCount returns the number of connected peers.
func (s *SyncService) PeerCount() int {
	return len(s.host.Network().Peers())
}

// Close shuts down the host.
func (s *SyncService) Close() error {
	return s.host.Close()
}

// handleStream processes one incoming request. A message that fails to
// parse is discarded and the stream reset; the failure never affects other
// streams.
func (s *SyncService) handleStream(stream p2pnetwork.Stream) {
	defer stream.Close()
	_ = stream.SetDeadline(time.Now().Add(streamTimeout))

	remote := stream.Conn().RemotePeer()

	frames, err := ReadFrames(stream)
	if err != nil {
		log.Printf("⚠️  Dropping stream from %s: %v", remote, err)
		_ = stream.Reset()
		return
	}

	msg, err := wire.Parse(frames, false)
	if err != nil {
		log.Printf("⚠️  Rejecting message from %s: %v", remote, err)
		_ = stream.Reset()
		return
	}

	var reply wire.Payload
	switch payload := msg.Payload.(type) {
	case *wire.Ping:
		reply = &wire.Pong{}
	case *wire.GetRecentStates:
		states, err := s.store.BuildRecentStates(payload.Block)
		if err != nil {
			log.Printf("⚠️  Failed to build recent states for %s: %v", remote, err)
			_ = stream.Reset()
			return
		}
		reply = states
	default:
		// Valid protocol message this service does not serve.
		log.Printf("No handler for %s message from %s, dropping", msg.Payload.Type(), remote)
		return
	}

	out, err := wire.EncodeMessage(&wire.Message{Payload: reply}, s.keys)
	if err != nil {
		log.Printf("⚠️  Failed to encode %s reply: %v", reply.Type(), err)
		_ = stream.Reset()
		return
	}
	if err := WriteFrames(stream, out); err != nil {
		log.Printf("⚠️  Failed to send %s reply to %s: %v", reply.Type(), remote, err)
		_ = stream.Reset()
	}
}

// Connect dials a peer by its full multiaddr (including the /p2p/ component)
// and returns its peer ID.
func (s *SyncService) Connect(ctx context.Context, addr string) (peer.ID, error) {
	maddr, err := ma.NewMultiaddr(addr)
	if err != nil {
		return "", fmt.Errorf("invalid peer address %s: %w", addr, err)
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return "", fmt.Errorf("invalid peer address %s: %w", addr, err)
	}
	if err := s.host.Connect(ctx, *info); err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return info.ID, nil
}

// PingPeer performs a signed Ping round trip.
func (s *SyncService) PingPeer(ctx context.Context, id peer.ID) error {
	reply, err := s.roundTrip(ctx, id, &wire.Ping{})
	if err != nil {
		return err
	}
	if _, ok := reply.Payload.(*wire.Pong); !ok {
		return fmt.Errorf("unexpected %s reply to Ping", reply.Payload.Type())
	}
	return nil
}

// RequestRecentStates asks a peer for the recent-state data anchored at
// block. The reply is verified and decoded but not applied; callers decide
// what to do with a Missing reply.
func (s *SyncService) RequestRecentStates(ctx context.Context, id peer.ID, block chain.Hash) (*wire.RecentStates, error) {
	reply, err := s.roundTrip(ctx, id, &wire.GetRecentStates{Block: block})
	if err != nil {
		return nil, err
	}
	states, ok := reply.Payload.(*wire.RecentStates)
	if !ok {
		return nil, fmt.Errorf("unexpected %s reply to GetRecentStates", reply.Payload.Type())
	}
	return states, nil
}

// roundTrip sends one request-direction message and parses the
// reply-direction answer from the same stream.
func (s *SyncService) roundTrip(ctx context.Context, id peer.ID, payload wire.Payload) (*wire.Message, error) {
	stream, err := s.host.NewStream(ctx, id, ProtocolID)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(deadline)
	} else {
		_ = stream.SetDeadline(time.Now().Add(streamTimeout))
	}

	token, err := crypto.GenerateNonce(identityTokenSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity token: %w", err)
	}

	frames, err := wire.EncodeMessage(&wire.Message{Payload: payload, Identity: token}, s.keys)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", payload.Type(), err)
	}
	if err := WriteFrames(stream, frames); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", payload.Type(), err)
	}
	_ = stream.CloseWrite()

	replyFrames, err := ReadFrames(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	return wire.Parse(replyFrames, true)
}
