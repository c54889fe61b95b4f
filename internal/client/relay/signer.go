package relay

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs operation hashes with the operator's owner key (EIP-191 personal_sign).
type Signer struct {
	key     *ecdsa.PrivateKey
	address string
}

// NewSigner parses a 0x-prefixed hex private key.
func NewSigner(privateKeyHex string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid operator private key: %w", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address is the signer's EOA.
func (s *Signer) Address() string {
	return s.address
}

// SignOperationHash signs the 32 byte operation hash.
func (s *Signer) SignOperationHash(hash string) ([]byte, error) {
	raw, err := hexutil.Decode(hash)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("invalid operation hash %q", hash)
	}
	sig, err := crypto.Sign(accounts.TextHash(raw), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign operation hash: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
