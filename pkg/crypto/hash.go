package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/blake2b"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
)

// Digest generates a BLAKE2b-256 hash
func Digest(data []byte) chain.Hash {
	return chain.Hash(blake2b.Sum256(data))
}

// DigestString generates a BLAKE2b-256 hash and returns hex string
func DigestString(data []byte) string {
	return Digest(data).String()
}

// GenerateNonce generates a random nonce
func GenerateNonce(size int) ([]byte, error) {
	nonce := make([]byte, size)
	_, err := rand.Read(nonce)
	if err != nil {
		return nil, err
	}
	return nonce, nil
}
