package chain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Sizes of the fixed-width chain primitives, in bytes. The wire protocol
// relies on these to recognize malformed frames.
const (
	HashSize    = 32
	AddressSize = 20
)

var (
	ErrBadHashLength    = errors.New("bad hash length")
	ErrBadAddressLength = errors.New("bad address length")
)

// Hash is a 32-byte block or content hash.
type Hash [HashSize]byte

// Address is a 20-byte account address.
type Address [AddressSize]byte

// HashFromBytes converts a byte slice to a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: got %d, want %d", ErrBadHashLength, len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// AddressFromBytes converts a byte slice to an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, fmt.Errorf("%w: got %d, want %d", ErrBadAddressLength, len(b), AddressSize)
	}
	copy(a[:], b)
	return a, nil
}

// HashFromHex parses a hex-encoded hash, with or without a 0x prefix.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	return HashFromBytes(b)
}

// AddressFromHex parses a hex-encoded address, with or without a 0x prefix.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Address{}, fmt.Errorf("invalid address hex: %w", err)
	}
	return AddressFromBytes(b)
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// String returns the hash as a hex string.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// IsZero checks if the hash is all zeros.
func (h Hash) IsZero() bool { return h == Hash{} }

// MarshalText implements encoding.TextMarshaler (hex).
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// String returns the address as a hex string.
func (a Address) String() string { return hex.EncodeToString(a[:]) }

// IsZero checks if the address is all zeros.
func (a Address) IsZero() bool { return a == Address{} }

// MarshalText implements encoding.TextMarshaler (hex).
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
