package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"
	"github.com/tendermint/tendermint/crypto/tmhash"
)

// SequencerNamespaceData is the payload published to the default namespace. It
// lists the rollup namespaces the rest of the block was published to.
type SequencerNamespaceData struct {
	BlockHash        Base64String         `json:"block_hash"`
	Header           Header               `json:"header"`
	SequencerTxs     []IndexedTransaction `json:"sequencer_txs"`
	RollupNamespaces []Namespace          `json:"rollup_namespaces"`
}

// RollupNamespaceData is the payload published to a rollup namespace.
type RollupNamespaceData struct {
	BlockHash Base64String         `json:"block_hash"`
	RollupTxs []IndexedTransaction `json:"rollup_txs"`
}

// SignedNamespaceData is the envelope of every blob: the JSON encoded payload,
// the signer's public key and the signature over the payload's digest.
type SignedNamespaceData struct {
	Data      json.RawMessage `json:"data"`
	PublicKey Base64String    `json:"public_key"`
	Signature Base64String    `json:"signature"`
}

// NewSignedNamespaceData encodes payload and signs it with key.
func NewSignedNamespaceData(payload interface{}, key crypto.PrivKey) (*SignedNamespaceData, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode namespace data: %w", err)
	}
	sig, err := key.Sign(tmhash.Sum(data))
	if err != nil {
		return nil, fmt.Errorf("failed to sign namespace data: %w", err)
	}
	return &SignedNamespaceData{
		Data:      data,
		PublicKey: key.PubKey().Bytes(),
		Signature: sig,
	}, nil
}

// UnmarshalSignedNamespaceData decodes a blob into its envelope.
func UnmarshalSignedNamespaceData(blob []byte) (*SignedNamespaceData, error) {
	var snd SignedNamespaceData
	if err := json.Unmarshal(blob, &snd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if len(snd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedBlob)
	}
	return &snd, nil
}

// MarshalBinary encodes the envelope into a blob.
func (snd *SignedNamespaceData) MarshalBinary() ([]byte, error) {
	return json.Marshal(snd)
}

// SignedBy reports whether the envelope claims to be signed by pubKey.
// It does not check the signature.
func (snd *SignedNamespaceData) SignedBy(pubKey crypto.PubKey) bool {
	return bytes.Equal(snd.PublicKey, pubKey.Bytes())
}

// Verify checks the signature against the embedded public key and returns the signer.
func (snd *SignedNamespaceData) Verify() (crypto.PubKey, error) {
	if len(snd.PublicKey) != ed25519.PubKeySize {
		return nil, fmt.Errorf("%w: public key must be %d bytes, got %d",
			ErrSignatureInvalid, ed25519.PubKeySize, len(snd.PublicKey))
	}
	pubKey := ed25519.PubKey(snd.PublicKey)
	if !pubKey.VerifySignature(tmhash.Sum(snd.Data), snd.Signature) {
		return nil, fmt.Errorf("%w: signature does not match public key %s", ErrSignatureInvalid, snd.PublicKey)
	}
	return pubKey, nil
}

// Decode decodes the payload into v.
func (snd *SignedNamespaceData) Decode(v interface{}) error {
	if err := json.Unmarshal(snd.Data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	return nil
}
