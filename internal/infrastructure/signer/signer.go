// Package signer loads the wallet's secp256k1 private key and signs DEX
// request payloads. The wallet identifier uses the DEX's "eth|<address>"
// convention derived from the key itself.
package signer

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dzikowski/barbell-bot/internal/domain/repository"
)

// FileSigner holds a private key read from a local file.
type FileSigner struct {
	key    *ecdsa.PrivateKey
	wallet string
}

var _ repository.Signer = (*FileSigner)(nil)

// NewFromPath reads and parses the hex-encoded private key at path. An
// unset path or unreadable file is a hard failure; the bot cannot trade
// without an identity.
func NewFromPath(path string) (*FileSigner, error) {
	if path == "" {
		return nil, fmt.Errorf("private key path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", path, err)
	}

	return New(strings.TrimSpace(string(raw)))
}

// New parses a hex-encoded private key.
func New(hexKey string) (*FileSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	return &FileSigner{
		key:    key,
		wallet: "eth|" + strings.TrimPrefix(address.Hex(), "0x"),
	}, nil
}

// Wallet returns the DEX wallet identifier, e.g. "eth|c32c3526...".
func (s *FileSigner) Wallet() string {
	return s.wallet
}

// Sign produces a 65-byte recoverable signature over the keccak256 hash of
// the payload.
func (s *FileSigner) Sign(payload []byte) ([]byte, error) {
	return crypto.Sign(crypto.Keccak256(payload), s.key)
}
