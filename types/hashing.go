package types

import (
	"bytes"
	"fmt"

	gogotypes "github.com/gogo/protobuf/types"
	"github.com/tendermint/tendermint/crypto/tmhash"
	tmtypes "github.com/tendermint/tendermint/types"

	"github.com/rollkit/sequencer-relayer/hash"
)

// ComputeDataHash returns the commitment over an ordered transaction list, as
// declared in the DataHash field of an upstream header: the Merkle root of the
// SHA-256 digests of the transactions.
func ComputeDataHash(txs [][]byte) []byte {
	leaves := make([][]byte, len(txs))
	for i, tx := range txs {
		leaves[i] = tmhash.Sum(tx)
	}
	return hash.MerkleRoot(leaves)
}

// ComputeBlockHash returns the identity of an upstream block: the Merkle root of
// the header fields in protocol order, each in its canonical protobuf encoding.
func ComputeBlockHash(h *tmtypes.Header) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil header", ErrMalformedSource)
	}
	version, err := h.Version.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode version: %w", err)
	}
	ts, err := gogotypes.StdTimeMarshal(h.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to encode time: %w", err)
	}
	pbbi := h.LastBlockID.ToProto()
	lastBlockID, err := pbbi.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode last block id: %w", err)
	}

	leaves := [][]byte{
		version,
		encodeString(h.ChainID),
		encodeInt64(h.Height),
		ts,
		lastBlockID,
		encodeBytes(h.LastCommitHash),
		encodeBytes(h.DataHash),
		encodeBytes(h.ValidatorsHash),
		encodeBytes(h.NextValidatorsHash),
		encodeBytes(h.ConsensusHash),
		encodeBytes(h.AppHash),
		encodeBytes(h.LastResultsHash),
		encodeBytes(h.EvidenceHash),
		encodeBytes(h.ProposerAddress),
	}
	return hash.MerkleRoot(leaves), nil
}

// VerifyDataHash recomputes the data hash over the block's transactions in their
// original order and compares it with the header's declared data hash.
func (sb *SequencerBlock) VerifyDataHash() error {
	txs, err := sb.Transactions()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHashMismatch, err)
	}
	raw := make([][]byte, len(txs))
	for i, tx := range txs {
		raw[i] = tx
	}
	computed := ComputeDataHash(raw)
	if !bytes.Equal(computed, sb.Header.DataHash) {
		return fmt.Errorf("%w: data hash: computed %s, declared %s",
			ErrHashMismatch, Base64String(computed), sb.Header.DataHash)
	}
	return nil
}

// VerifyBlockHash recomputes the header hash and compares it with the block hash.
func (sb *SequencerBlock) VerifyBlockHash() error {
	h, err := sb.Header.ToTendermint()
	if err != nil {
		return err
	}
	computed, err := ComputeBlockHash(h)
	if err != nil {
		return err
	}
	if !bytes.Equal(computed, sb.BlockHash) {
		return fmt.Errorf("%w: block hash: computed %s, declared %s",
			ErrHashMismatch, Base64String(computed), sb.BlockHash)
	}
	return nil
}

// The wrappers below produce the same bytes as the amino-compatible field
// encoding of the upstream header.

func encodeString(s string) []byte {
	bz, err := (&gogotypes.StringValue{Value: s}).Marshal()
	if err != nil {
		panic(err)
	}
	return bz
}

func encodeInt64(i int64) []byte {
	bz, err := (&gogotypes.Int64Value{Value: i}).Marshal()
	if err != nil {
		panic(err)
	}
	return bz
}

func encodeBytes(b []byte) []byte {
	bz, err := (&gogotypes.BytesValue{Value: b}).Marshal()
	if err != nil {
		panic(err)
	}
	return bz
}
