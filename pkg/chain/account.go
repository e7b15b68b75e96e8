package chain

import "encoding/json"

// AccountState is the recorded state of one account at one block.
type AccountState struct {
	Nonce       uint64 `json:"nonce"`
	Balance     uint64 `json:"balance"`
	StorageRoot Hash   `json:"storageRoot"`
}

// StateCodec converts account states to and from the opaque blobs carried in
// recent-state snapshots. The wire layer never looks inside the blobs, so the
// concrete representation is swappable.
type StateCodec interface {
	Marshal(state *AccountState) ([]byte, error)
	Unmarshal(blob []byte) (*AccountState, error)
}

// JSONStateCodec encodes account states as JSON.
type JSONStateCodec struct{}

// Marshal encodes the state to a JSON blob.
func (JSONStateCodec) Marshal(state *AccountState) ([]byte, error) {
	return json.Marshal(state)
}

// Unmarshal decodes a JSON blob back to an account state.
func (JSONStateCodec) Unmarshal(blob []byte) (*AccountState, error) {
	state := &AccountState{}
	if err := json.Unmarshal(blob, state); err != nil {
		return nil, err
	}
	return state, nil
}
