package types

import (
	"crypto/rand"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	tmversion "github.com/tendermint/tendermint/proto/tendermint/version"
	tmtypes "github.com/tendermint/tendermint/types"
)

// TestChainID is the chain ID of the headers generated by the helpers below.
const TestChainID = "test-sequencer"

// GetRandomBytes returns n random bytes.
func GetRandomBytes(n int) []byte {
	data := make([]byte, n)
	_, _ = rand.Read(data)
	return data
}

// GetRandomTendermintHeader returns a fully populated upstream header at height whose
// DataHash commits to txs. Hashes are computed with the upstream implementation.
func GetRandomTendermintHeader(height int64, txs [][]byte) *tmtypes.Header {
	tmTxs := make(tmtypes.Txs, len(txs))
	for i, tx := range txs {
		tmTxs[i] = tx
	}
	return &tmtypes.Header{
		Version: tmversion.Consensus{Block: 11, App: 1},
		ChainID: TestChainID,
		Height:  height,
		Time:    time.Now().Round(0).UTC(),
		LastBlockID: tmtypes.BlockID{
			Hash: GetRandomBytes(32),
			PartSetHeader: tmtypes.PartSetHeader{
				Total: 1,
				Hash:  GetRandomBytes(32),
			},
		},
		LastCommitHash:     GetRandomBytes(32),
		DataHash:           tmTxs.Hash(),
		ValidatorsHash:     GetRandomBytes(32),
		NextValidatorsHash: GetRandomBytes(32),
		ConsensusHash:      GetRandomBytes(32),
		AppHash:            GetRandomBytes(32),
		LastResultsHash:    GetRandomBytes(32),
		EvidenceHash:       GetRandomBytes(32),
		ProposerAddress:    GetRandomBytes(20),
	}
}

// GetRandomBlockResponse returns a sequencer block response at height carrying txs,
// with a block ID hash that matches its header.
func GetRandomBlockResponse(height int64, txs [][]byte) *BlockResponse {
	h := GetRandomTendermintHeader(height, txs)
	data := Data{Txs: make([]Base64String, len(txs))}
	for i, tx := range txs {
		data.Txs[i] = tx
	}
	return &BlockResponse{
		BlockID: BlockID{
			Hash: Base64String(h.Hash()),
			PartSetHeader: PartSetHeader{
				Total: 1,
				Hash:  GetRandomBytes(32),
			},
		},
		Block: &Block{
			Header: HeaderFromTendermint(h),
			Data:   data,
		},
	}
}

// GetRandomTxs returns n random transactions of 32 bytes.
func GetRandomTxs(n int) [][]byte {
	txs := make([][]byte, n)
	for i := range txs {
		txs[i] = GetRandomBytes(32)
	}
	return txs
}

// NewSequencerMsgTx builds a minimal Cosmos SDK transaction carrying one message of
// typeURL with chainID in its first field. Empty chainID builds an untagged transaction
// with a bank-like message.
func NewSequencerMsgTx(typeURL, chainID string, payload []byte) []byte {
	if chainID == "" {
		typeURL = "/cosmos.bank.v1beta1.MsgSend"
	}
	var value []byte
	value = appendBytesField(value, seqMsgChainIDField, []byte(chainID))
	value = appendBytesField(value, 2, payload)

	var msg []byte
	msg = appendBytesField(msg, anyTypeURLField, []byte(typeURL))
	msg = appendBytesField(msg, anyValueField, value)

	var body []byte
	body = appendBytesField(body, txBodyMessagesField, msg)

	var tx []byte
	tx = appendBytesField(tx, txRawBodyField, body)
	// auth info and signatures
	tx = appendBytesField(tx, 2, GetRandomBytes(16))
	tx = appendBytesField(tx, 3, GetRandomBytes(64))
	return tx
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}
