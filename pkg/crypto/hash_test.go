package crypto

import (
	"bytes"
	"testing"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string // BLAKE2b-256 hash in hex
	}{
		{
			name:     "empty input",
			input:    []byte{},
			expected: "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		},
		{
			name:     "simple string",
			input:    []byte("hello world"),
			expected: "256c83b297114d201b30179f3f0ef0cace9783622da5974326b436178aeef610",
		},
		{
			name:  "arbitrary data",
			input: []byte("The quick brown fox jumps over the lazy dog"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Digest(tt.input)

			if tt.expected != "" && h.String() != tt.expected {
				t.Errorf("Digest() = %s, want %s", h.String(), tt.expected)
			}
			if h.IsZero() {
				t.Error("Digest() returned zero hash")
			}
			if DigestString(tt.input) != h.String() {
				t.Error("DigestString() disagrees with Digest().String()")
			}
		})
	}
}

func TestDigestDeterministic(t *testing.T) {
	data := []byte("same input, same output")
	if Digest(data) != Digest(data) {
		t.Error("Digest() is not deterministic")
	}
	if Digest(data) == Digest([]byte("different input")) {
		t.Error("Distinct inputs produced the same digest")
	}
}

func TestGenerateNonce(t *testing.T) {
	nonce, err := GenerateNonce(16)
	if err != nil {
		t.Fatalf("GenerateNonce() error = %v", err)
	}
	if len(nonce) != 16 {
		t.Errorf("GenerateNonce() length = %d, want 16", len(nonce))
	}

	other, err := GenerateNonce(16)
	if err != nil {
		t.Fatalf("GenerateNonce() error = %v", err)
	}
	if bytes.Equal(nonce, other) {
		t.Error("Two nonces were identical")
	}
}
