package conv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint/crypto/ed25519"
	"github.com/tendermint/tendermint/crypto/secp256k1"
	"github.com/tendermint/tendermint/p2p"
)

func TestGetSigningKey(t *testing.T) {
	t.Parallel()

	privKey := ed25519.GenPrivKey()
	valid := p2p.NodeKey{
		PrivKey: privKey,
	}
	invalid := p2p.NodeKey{
		PrivKey: secp256k1.GenPrivKey(),
	}

	cases := []struct {
		name  string
		input *p2p.NodeKey
		err   error
	}{
		{"nil", nil, ErrNilKey},
		{"empty", &p2p.NodeKey{}, ErrNilKey},
		{"invalid", &invalid, ErrUnsupportedKeyType},
		{"valid", &valid, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := GetSigningKey(c.input)
			if c.err != nil {
				assert.Nil(t, actual)
				assert.ErrorIs(t, err, c.err)
			} else {
				require.NoError(t, err)
				require.NotNil(t, actual)
				assert.Equal(t, ed25519.KeyType, actual.Type())
				assert.True(t, privKey.PubKey().Equals(actual.PubKey()))
			}
		})
	}
}

func TestLoadSigningKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "node_key.json")

	generated, err := LoadSigningKey(path)
	require.NoError(t, err)
	require.NotNil(t, generated)

	loaded, err := LoadSigningKey(path)
	require.NoError(t, err)
	assert.True(t, generated.Equals(loaded))
}
