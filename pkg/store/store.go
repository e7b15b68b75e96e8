// Package store persists the recent-state history a node needs to answer and
// ingest recent-state sync messages: per-account state-reference trails and
// the block-state snapshots selected for verbatim shipping.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
	"github.com/VertexaChain/vertexa-node/pkg/wire"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrNoData is returned when applying a reply whose sender reported the
	// missing sentinel instead of state data.
	ErrNoData = errors.New("peer reported no synced state")
)

// StateStore is the SQLite-backed store of recent account-state history.
type StateStore struct {
	db    *sql.DB
	codec chain.StateCodec
	path  string
}

// NewStateStore opens (creating if needed) the state database in dataDir.
func NewStateStore(dataDir string, codec chain.StateCodec) (*StateStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS state_trails (
			address BLOB NOT NULL,
			position INTEGER NOT NULL,
			block_hash BLOB NOT NULL,
			PRIMARY KEY (address, position)
		);
		CREATE INDEX IF NOT EXISTS idx_trails_block ON state_trails(block_hash);

		CREATE TABLE IF NOT EXISTS state_snapshots (
			block_hash BLOB NOT NULL,
			address BLOB NOT NULL,
			state BLOB NOT NULL,
			PRIMARY KEY (block_hash, address)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &StateStore{db: db, codec: codec, path: dbPath}, nil
}

// Close closes the database.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *StateStore) Path() string {
	return s.path
}

// RecordStateChange appends block to addr's state-reference trail. When
// snapshot is true the concrete state is also stored at that block, making
// it available verbatim to lagging peers.
func (s *StateStore) RecordStateChange(addr chain.Address, block chain.Hash, state *chain.AccountState, snapshot bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO state_trails (address, position, block_hash)
		VALUES (?, (SELECT COALESCE(MAX(position)+1, 0) FROM state_trails WHERE address = ?), ?)`,
		addr.Bytes(), addr.Bytes(), block.Bytes())
	if err != nil {
		return fmt.Errorf("failed to append trail: %w", err)
	}

	if snapshot {
		blob, err := s.codec.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		_, err = tx.Exec(`
			INSERT OR REPLACE INTO state_snapshots (block_hash, address, state)
			VALUES (?, ?, ?)`,
			block.Bytes(), addr.Bytes(), blob)
		if err != nil {
			return fmt.Errorf("failed to store snapshot: %w", err)
		}
	}

	return tx.Commit()
}

// TrailFor returns addr's state-reference trail, most recent last.
func (s *StateStore) TrailFor(addr chain.Address) ([]chain.Hash, error) {
	rows, err := s.db.Query(`
		SELECT block_hash FROM state_trails
		WHERE address = ? ORDER BY position`,
		addr.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to query trail: %w", err)
	}
	defer rows.Close()

	var trail []chain.Hash
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan trail row: %w", err)
		}
		h, err := chain.HashFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt trail row: %w", err)
		}
		trail = append(trail, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(trail) == 0 {
		return nil, ErrNotFound
	}
	return trail, nil
}

// SnapshotAt returns the decoded account states recorded at block.
func (s *StateStore) SnapshotAt(block chain.Hash) (map[chain.Address]*chain.AccountState, error) {
	rows, err := s.db.Query(`
		SELECT address, state FROM state_snapshots WHERE block_hash = ?`,
		block.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	states := make(map[chain.Address]*chain.AccountState)
	for rows.Next() {
		var rawAddr, blob []byte
		if err := rows.Scan(&rawAddr, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		addr, err := chain.AddressFromBytes(rawAddr)
		if err != nil {
			return nil, fmt.Errorf("corrupt snapshot row: %w", err)
		}
		state, err := s.codec.Unmarshal(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal state: %w", err)
		}
		states[addr] = state
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, ErrNotFound
	}
	return states, nil
}

// knowsBlock reports whether block appears in any account's trail.
func (s *StateStore) knowsBlock(block chain.Hash) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM state_trails WHERE block_hash = ?)`,
		block.Bytes()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return exists, nil
}

// BuildRecentStates assembles the reply payload for a GetRecentStates
// request anchored at ref. A ref block absent from every trail yields the
// missing payload.
func (s *StateStore) BuildRecentStates(ref chain.Hash) (*wire.RecentStates, error) {
	known, err := s.knowsBlock(ref)
	if err != nil {
		return nil, err
	}
	if !known {
		return &wire.RecentStates{Block: ref, Missing: true}, nil
	}

	msg := &wire.RecentStates{
		Block:     ref,
		Trails:    make(map[chain.Address][]chain.Hash),
		Snapshots: make(map[chain.Hash]map[chain.Address][]byte),
	}

	rows, err := s.db.Query(`
		SELECT address, block_hash FROM state_trails ORDER BY address, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rawAddr, rawBlock []byte
		if err := rows.Scan(&rawAddr, &rawBlock); err != nil {
			return nil, fmt.Errorf("failed to scan trail row: %w", err)
		}
		addr, err := chain.AddressFromBytes(rawAddr)
		if err != nil {
			return nil, fmt.Errorf("corrupt trail row: %w", err)
		}
		block, err := chain.HashFromBytes(rawBlock)
		if err != nil {
			return nil, fmt.Errorf("corrupt trail row: %w", err)
		}
		msg.Trails[addr] = append(msg.Trails[addr], block)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snapRows, err := s.db.Query(`
		SELECT block_hash, address, state FROM state_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer snapRows.Close()

	for snapRows.Next() {
		var rawBlock, rawAddr, blob []byte
		if err := snapRows.Scan(&rawBlock, &rawAddr, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		block, err := chain.HashFromBytes(rawBlock)
		if err != nil {
			return nil, fmt.Errorf("corrupt snapshot row: %w", err)
		}
		addr, err := chain.AddressFromBytes(rawAddr)
		if err != nil {
			return nil, fmt.Errorf("corrupt snapshot row: %w", err)
		}
		if msg.Snapshots[block] == nil {
			msg.Snapshots[block] = make(map[chain.Address][]byte)
		}
		msg.Snapshots[block][addr] = blob
	}
	if err := snapRows.Err(); err != nil {
		return nil, err
	}

	return msg, nil
}

// ApplyRecentStates ingests a verified RecentStates reply, replacing any
// local trail for the accounts it mentions. Snapshot entries whose block
// hash appears in no received trail are dropped, restoring the invariant a
// permissive decoder does not enforce.
func (s *StateStore) ApplyRecentStates(msg *wire.RecentStates) error {
	if msg.Missing {
		return ErrNoData
	}

	trailBlocks := make(map[chain.Hash]struct{})
	for _, trail := range msg.Trails {
		for _, block := range trail {
			trailBlocks[block] = struct{}{}
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for addr, trail := range msg.Trails {
		if _, err := tx.Exec(`DELETE FROM state_trails WHERE address = ?`, addr.Bytes()); err != nil {
			return fmt.Errorf("failed to clear trail: %w", err)
		}
		for pos, block := range trail {
			_, err := tx.Exec(`
				INSERT INTO state_trails (address, position, block_hash)
				VALUES (?, ?, ?)`,
				addr.Bytes(), pos, block.Bytes())
			if err != nil {
				return fmt.Errorf("failed to insert trail: %w", err)
			}
		}
	}

	for block, states := range msg.Snapshots {
		if _, ok := trailBlocks[block]; !ok {
			continue
		}
		for addr, blob := range states {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO state_snapshots (block_hash, address, state)
				VALUES (?, ?, ?)`,
				block.Bytes(), addr.Bytes(), blob)
			if err != nil {
				return fmt.Errorf("failed to insert snapshot: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Stats returns the number of tracked accounts and stored snapshot entries.
func (s *StateStore) Stats() (accounts int, snapshots int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(DISTINCT address) FROM state_trails`).Scan(&accounts); err != nil {
		return 0, 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM state_snapshots`).Scan(&snapshots); err != nil {
		return 0, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return accounts, snapshots, nil
}
