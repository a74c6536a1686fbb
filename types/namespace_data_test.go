package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/ed25519"
)

func TestSignedNamespaceDataRoundTrip(t *testing.T) {
	require := require.New(t)

	key := ed25519.GenPrivKey()
	payload := &RollupNamespaceData{
		BlockHash: GetRandomBytes(32),
		RollupTxs: []IndexedTransaction{{Index: 3, Transaction: []byte("tx")}},
	}

	signed, err := NewSignedNamespaceData(payload, key)
	require.NoError(err)
	require.True(signed.SignedBy(key.PubKey()))
	require.False(signed.SignedBy(ed25519.GenPrivKey().PubKey()))

	blob, err := signed.MarshalBinary()
	require.NoError(err)

	decoded, err := UnmarshalSignedNamespaceData(blob)
	require.NoError(err)
	signer, err := decoded.Verify()
	require.NoError(err)
	require.True(signer.Equals(key.PubKey()))

	var out RollupNamespaceData
	require.NoError(decoded.Decode(&out))
	require.Equal(payload, &out)
}

func TestSignedNamespaceDataVerify(t *testing.T) {
	key := ed25519.GenPrivKey()
	newSigned := func() *SignedNamespaceData {
		signed, err := NewSignedNamespaceData(&SequencerNamespaceData{
			BlockHash:        GetRandomBytes(32),
			SequencerTxs:     []IndexedTransaction{},
			RollupNamespaces: []Namespace{NewNamespace([]byte("r"))},
		}, key)
		require.NoError(t, err)
		return signed
	}

	cases := []struct {
		name   string
		tamper func(snd *SignedNamespaceData)
	}{
		{"data changed", func(snd *SignedNamespaceData) {
			snd.Data = append(snd.Data[:len(snd.Data)-1:len(snd.Data)-1], ' ', '}')
		}},
		{"signature changed", func(snd *SignedNamespaceData) { snd.Signature[0] ^= 0xff }},
		{"other public key", func(snd *SignedNamespaceData) { snd.PublicKey = ed25519.GenPrivKey().PubKey().Bytes() }},
		{"short public key", func(snd *SignedNamespaceData) { snd.PublicKey = snd.PublicKey[:16] }},
		{"missing signature", func(snd *SignedNamespaceData) { snd.Signature = nil }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			snd := newSigned()
			c.tamper(snd)
			_, err := snd.Verify()
			assert.ErrorIs(t, err, ErrSignatureInvalid)
		})
	}
}

func TestUnmarshalSignedNamespaceDataMalformed(t *testing.T) {
	for _, blob := range [][]byte{
		nil,
		[]byte("not json"),
		[]byte(`{"public_key":"AAAA"}`),
		[]byte(`{"data":{},"public_key":"%%%"}`),
	} {
		_, err := UnmarshalSignedNamespaceData(blob)
		assert.ErrorIs(t, err, ErrMalformedBlob, string(blob))
	}

	snd := &SignedNamespaceData{Data: []byte(`[1,2]`)}
	var out RollupNamespaceData
	assert.ErrorIs(t, snd.Decode(&out), ErrMalformedBlob)
}
