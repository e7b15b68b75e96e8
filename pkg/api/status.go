package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
	"github.com/VertexaChain/vertexa-node/pkg/store"
)

// StatusResponse summarizes the node's sync state
type StatusResponse struct {
	Success   bool     `json:"success"`
	Accounts  int      `json:"accounts"`
	Snapshots int      `json:"snapshots"`
	Peers     int      `json:"peers"`
	Addrs     []string `json:"addrs"`
}

// TrailResponse carries one account's state-reference trail
type TrailResponse struct {
	Success bool     `json:"success"`
	Address string   `json:"address"`
	Trail   []string `json:"trail"`
}

// SnapshotResponse carries the account states recorded at one block
type SnapshotResponse struct {
	Success bool                           `json:"success"`
	Block   string                         `json:"block"`
	States  map[string]*chain.AccountState `json:"states"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handleStatus handles GET /api/v1/status
func (s *Server) handleStatus(c *gin.Context) {
	accounts, snapshots, err := s.store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to read store stats",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Success:   true,
		Accounts:  accounts,
		Snapshots: snapshots,
		Peers:     s.node.PeerCount(),
		Addrs:     s.node.Addrs(),
	})
}

// handleTrail handles GET /api/v1/trail/:address
func (s *Server) handleTrail(c *gin.Context) {
	addr, err := chain.AddressFromHex(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid address",
			Message: "Address must be 20 bytes of hex",
		})
		return
	}

	trail, err := s.store.TrailFor(addr)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No trail for address",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to read trail",
			Message: err.Error(),
		})
		return
	}

	hashes := make([]string, 0, len(trail))
	for _, h := range trail {
		hashes = append(hashes, h.String())
	}
	c.JSON(http.StatusOK, TrailResponse{
		Success: true,
		Address: addr.String(),
		Trail:   hashes,
	})
}

// handleSnapshot handles GET /api/v1/snapshot/:block
func (s *Server) handleSnapshot(c *gin.Context) {
	block, err := chain.HashFromHex(c.Param("block"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid block hash",
			Message: "Block hash must be 32 bytes of hex",
		})
		return
	}

	states, err := s.store.SnapshotAt(block)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No snapshot at block",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to read snapshot",
			Message: err.Error(),
		})
		return
	}

	out := make(map[string]*chain.AccountState, len(states))
	for addr, state := range states {
		out[addr.String()] = state
	}
	c.JSON(http.StatusOK, SnapshotResponse{
		Success: true,
		Block:   block.String(),
		States:  out,
	})
}
