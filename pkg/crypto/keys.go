package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/VertexaChain/vertexa-node/pkg/chain"
)

// Key material sizes, in bytes.
const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

var ErrInvalidKey = errors.New("invalid key")

// KeyPair is the node's ed25519 signing identity.
type KeyPair struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// GenerateKeyPair generates a new ed25519 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv, pub: pub}, nil
}

// KeyPairFromPrivate wraps an existing ed25519 private key.
func KeyPairFromPrivate(priv ed25519.PrivateKey) (*KeyPair, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey
	}
	return &KeyPair{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}

// Sign signs data with the private key.
func (kp *KeyPair) Sign(data []byte) []byte {
	return ed25519.Sign(kp.priv, data)
}

// PublicKey returns the public key bytes.
func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, len(kp.pub))
	copy(out, kp.pub)
	return out
}

// Private returns the underlying ed25519 private key.
func (kp *KeyPair) Private() ed25519.PrivateKey {
	return kp.priv
}

// Address derives the account address for this key pair.
func (kp *KeyPair) Address() chain.Address {
	return AddressFromPublicKey(kp.pub)
}

// Verify verifies an ed25519 signature over data.
func Verify(publicKey []byte, data []byte, signature []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), data, signature)
}

// AddressFromPublicKey derives an address from a public key: the trailing
// 20 bytes of the BLAKE2b-256 digest of the key bytes.
func AddressFromPublicKey(publicKey []byte) chain.Address {
	digest := blake2b.Sum256(publicKey)
	var addr chain.Address
	copy(addr[:], digest[len(digest)-chain.AddressSize:])
	return addr
}

// ExportPrivateKeyPEM exports the private key to PEM format (PKCS#8)
func ExportPrivateKeyPEM(kp *KeyPair) ([]byte, error) {
	privASN1, err := x509.MarshalPKCS8PrivateKey(kp.priv)
	if err != nil {
		return nil, err
	}

	privBlock := &pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privASN1,
	}

	return pem.EncodeToMemory(privBlock), nil
}

// ImportPrivateKeyPEM imports a private key from PEM format
func ImportPrivateKeyPEM(pemData []byte) (*KeyPair, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, ErrInvalidKey
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, ErrInvalidKey
	}

	return KeyPairFromPrivate(priv)
}

// SaveKeyToFile saves a PEM encoded key to file
func SaveKeyToFile(filename string, pemData []byte) error {
	return os.WriteFile(filename, pemData, 0600)
}

// LoadKeyFromFile loads a PEM encoded key from file
func LoadKeyFromFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}
