package conv

import (
	"fmt"
	"path/filepath"

	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/p2p"
)

// GetSigningKey returns the ed25519 key of nodeKey, used to sign relayed blobs.
func GetSigningKey(nodeKey *p2p.NodeKey) (crypto.PrivKey, error) {
	if nodeKey == nil || nodeKey.PrivKey == nil {
		return nil, ErrNilKey
	}
	switch nodeKey.PrivKey.Type() {
	case ed25519.KeyType:
		if len(nodeKey.PrivKey.Bytes()) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("node private key has %d bytes", len(nodeKey.PrivKey.Bytes()))
		}
		return ed25519.PrivKey(nodeKey.PrivKey.Bytes()), nil
	default:
		return nil, ErrUnsupportedKeyType
	}
}

// LoadSigningKey loads the node key file at path, generating it when missing.
func LoadSigningKey(path string) (crypto.PrivKey, error) {
	if err := tmos.EnsureDir(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	nodeKey, err := p2p.LoadOrGenNodeKey(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load node key: %w", err)
	}
	return GetSigningKey(nodeKey)
}
