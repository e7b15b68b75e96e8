package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/VertexaChain/vertexa-node/pkg/api"
	"github.com/VertexaChain/vertexa-node/pkg/chain"
	"github.com/VertexaChain/vertexa-node/pkg/crypto"
	"github.com/VertexaChain/vertexa-node/pkg/network"
	"github.com/VertexaChain/vertexa-node/pkg/store"
)

const (
	defaultListenAddr = "/ip4/0.0.0.0/tcp/9560"
	defaultKeyPath    = "./keys/node.pem"
	defaultDataDir    = "./data"
	defaultAPIPort    = 8560
)

var (
	listenAddr  = flag.String("listen", defaultListenAddr, "Multiaddr to listen on")
	keyPath     = flag.String("key", defaultKeyPath, "Path to private key file")
	generateKey = flag.Bool("genkey", false, "Generate new private key")
	dataDir     = flag.String("data", defaultDataDir, "Data directory for the state store")
	apiPort     = flag.Int("api", defaultAPIPort, "HTTP status API port (0 to disable)")
	peerAddr    = flag.String("peer", "", "Multiaddr of a peer to sync from")
	syncBlock   = flag.String("sync", "", "Block hash (hex) to request recent states for")
)

func main() {
	flag.Parse()

	printBanner()

	keys, err := loadOrGenerateKey(*keyPath, *generateKey)
	if err != nil {
		log.Fatalf("Failed to load/generate key: %v", err)
	}

	log.Printf("✓ Node identity loaded from %s", *keyPath)
	log.Printf("   Address: %s", keys.Address())

	st, err := store.NewStateStore(*dataDir, chain.JSONStateCodec{})
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}
	defer st.Close()

	log.Printf("✓ State store opened at %s", *dataDir)

	svc, err := network.NewSyncService(&network.Config{
		ListenAddr: *listenAddr,
		Keys:       keys,
		Store:      st,
	})
	if err != nil {
		log.Fatalf("Failed to start sync service: %v", err)
	}
	defer svc.Close()

	for _, addr := range svc.Addrs() {
		log.Printf("✓ Listening on %s", addr)
	}

	var apiServer *api.Server
	if *apiPort > 0 {
		cfg := api.DefaultConfig()
		cfg.Port = *apiPort
		apiServer = api.NewServer(st, svc, cfg)
		apiServer.Start()
		log.Printf("✓ Status API listening on :%d", *apiPort)
	} else {
		log.Println("⚠️  Status API disabled")
	}

	if *peerAddr != "" {
		if err := syncFromPeer(svc, st, *peerAddr, *syncBlock); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
	}

	waitForShutdown(apiServer)
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════════╗")
	fmt.Println("║            Vertexa State Sync Node v1.0           ║")
	fmt.Println("║      Signed frame protocol / recent-state sync    ║")
	fmt.Println("╚═══════════════════════════════════════════════════╝")
	fmt.Println()
}

func loadOrGenerateKey(keyPath string, generate bool) (*crypto.KeyPair, error) {
	// Check if key file exists
	if _, err := os.Stat(keyPath); err == nil && !generate {
		log.Println("Loading existing private key...")
		pemData, err := crypto.LoadKeyFromFile(keyPath)
		if err != nil {
			return nil, err
		}
		return crypto.ImportPrivateKeyPEM(pemData)
	}

	// Generate new key
	log.Println("Generating new ed25519 key pair...")
	keys, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	pemData, err := crypto.ExportPrivateKeyPEM(keys)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, err
	}

	if err := crypto.SaveKeyToFile(keyPath, pemData); err != nil {
		return nil, err
	}

	log.Printf("✓ New key saved to %s", keyPath)

	return keys, nil
}

func syncFromPeer(svc *network.SyncService, st *store.StateStore, peerAddr, syncBlock string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	log.Printf("⏳ Connecting to peer %s...", peerAddr)
	id, err := svc.Connect(ctx, peerAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to peer: %w", err)
	}

	if err := svc.PingPeer(ctx, id); err != nil {
		return fmt.Errorf("peer did not answer ping: %w", err)
	}
	log.Printf("✓ Connected to %s", id)

	if syncBlock == "" {
		return nil
	}

	block, err := chain.HashFromHex(syncBlock)
	if err != nil {
		return fmt.Errorf("invalid -sync block hash: %w", err)
	}

	log.Printf("⏳ Requesting recent states at block %s...", block)
	states, err := svc.RequestRecentStates(ctx, id, block)
	if err != nil {
		return fmt.Errorf("failed to request recent states: %w", err)
	}

	if states.Missing {
		log.Printf("⚠️  Peer does not know block %s", block)
		return nil
	}

	if err := st.ApplyRecentStates(states); err != nil {
		return fmt.Errorf("failed to apply recent states: %w", err)
	}

	log.Printf("✓ Applied recent states: %d accounts, %d snapshots", len(states.Trails), len(states.Snapshots))
	return nil
}

func waitForShutdown(apiServer *api.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down...")

	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(ctx); err != nil {
			log.Printf("⚠️  API shutdown error: %v", err)
		}
	}

	log.Println("✓ Shutdown complete")
}
