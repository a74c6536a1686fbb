package types

import (
	"fmt"
	"strconv"
	"time"

	tmversion "github.com/tendermint/tendermint/proto/tendermint/version"
	tmtypes "github.com/tendermint/tendermint/types"
)

// Version mirrors the consensus version of an upstream header. Values are textual
// because that is how the sequencer's REST gateway encodes 64-bit integers.
type Version struct {
	Block string `json:"block"`
	App   string `json:"app"`
}

// PartSetHeader mirrors the upstream part set header.
type PartSetHeader struct {
	Total uint32       `json:"total"`
	Hash  Base64String `json:"hash"`
}

// BlockID identifies an upstream block.
type BlockID struct {
	Hash          Base64String  `json:"hash"`
	PartSetHeader PartSetHeader `json:"part_set_header"`
}

// Header mirrors the upstream consensus header as served by the sequencer node.
//
// It is opaque to this module except where it is converted with ToTendermint for
// hashing.
type Header struct {
	Version            Version      `json:"version"`
	ChainID            string       `json:"chain_id"`
	Height             string       `json:"height"`
	Time               string       `json:"time"`
	LastBlockID        BlockID      `json:"last_block_id"`
	LastCommitHash     Base64String `json:"last_commit_hash"`
	DataHash           Base64String `json:"data_hash"`
	ValidatorsHash     Base64String `json:"validators_hash"`
	NextValidatorsHash Base64String `json:"next_validators_hash"`
	ConsensusHash      Base64String `json:"consensus_hash"`
	AppHash            Base64String `json:"app_hash"`
	LastResultsHash    Base64String `json:"last_results_hash"`
	EvidenceHash       Base64String `json:"evidence_hash"`
	ProposerAddress    Base64String `json:"proposer_address"`
}

// Data holds the ordered transactions of an upstream block.
type Data struct {
	Txs []Base64String `json:"txs"`
}

// Block is a raw upstream block.
type Block struct {
	Header Header `json:"header"`
	Data   Data   `json:"data"`
}

// BlockResponse is the sequencer node's answer to a block query.
type BlockResponse struct {
	BlockID BlockID `json:"block_id"`
	Block   *Block  `json:"block"`
}

// ParseHeight returns the header height as a number.
func (h *Header) ParseHeight() (uint64, error) {
	height, err := strconv.ParseUint(h.Height, 10, 64)
	if err != nil {
		return 0, malformed("height", err)
	}
	return height, nil
}

// ToTendermint converts the textual header into the typed Tendermint header that
// block hashing operates on. Parse failures are ErrMalformedSource.
func (h *Header) ToTendermint() (*tmtypes.Header, error) {
	blockVersion, err := strconv.ParseUint(h.Version.Block, 10, 64)
	if err != nil {
		return nil, malformed("version.block", err)
	}
	appVersion, err := strconv.ParseUint(h.Version.App, 10, 64)
	if err != nil {
		return nil, malformed("version.app", err)
	}
	height, err := strconv.ParseInt(h.Height, 10, 64)
	if err != nil {
		return nil, malformed("height", err)
	}
	if height <= 0 {
		return nil, malformed("height", fmt.Errorf("must be positive, got %d", height))
	}
	t, err := time.Parse(time.RFC3339Nano, h.Time)
	if err != nil {
		return nil, malformed("time", err)
	}

	return &tmtypes.Header{
		Version: tmversion.Consensus{
			Block: blockVersion,
			App:   appVersion,
		},
		ChainID: h.ChainID,
		Height:  height,
		Time:    t,
		LastBlockID: tmtypes.BlockID{
			Hash: h.LastBlockID.Hash.Bytes(),
			PartSetHeader: tmtypes.PartSetHeader{
				Total: h.LastBlockID.PartSetHeader.Total,
				Hash:  h.LastBlockID.PartSetHeader.Hash.Bytes(),
			},
		},
		LastCommitHash:     h.LastCommitHash.Bytes(),
		DataHash:           h.DataHash.Bytes(),
		ValidatorsHash:     h.ValidatorsHash.Bytes(),
		NextValidatorsHash: h.NextValidatorsHash.Bytes(),
		ConsensusHash:      h.ConsensusHash.Bytes(),
		AppHash:            h.AppHash.Bytes(),
		LastResultsHash:    h.LastResultsHash.Bytes(),
		EvidenceHash:       h.EvidenceHash.Bytes(),
		ProposerAddress:    h.ProposerAddress.Bytes(),
	}, nil
}

// HeaderFromTendermint renders a typed Tendermint header in the textual form used by
// the sequencer node.
func HeaderFromTendermint(h *tmtypes.Header) Header {
	return Header{
		Version: Version{
			Block: strconv.FormatUint(h.Version.Block, 10),
			App:   strconv.FormatUint(h.Version.App, 10),
		},
		ChainID: h.ChainID,
		Height:  strconv.FormatInt(h.Height, 10),
		Time:    h.Time.UTC().Format(time.RFC3339Nano),
		LastBlockID: BlockID{
			Hash: Base64String(h.LastBlockID.Hash),
			PartSetHeader: PartSetHeader{
				Total: h.LastBlockID.PartSetHeader.Total,
				Hash:  Base64String(h.LastBlockID.PartSetHeader.Hash),
			},
		},
		LastCommitHash:     Base64String(h.LastCommitHash),
		DataHash:           Base64String(h.DataHash),
		ValidatorsHash:     Base64String(h.ValidatorsHash),
		NextValidatorsHash: Base64String(h.NextValidatorsHash),
		ConsensusHash:      Base64String(h.ConsensusHash),
		AppHash:            Base64String(h.AppHash),
		LastResultsHash:    Base64String(h.LastResultsHash),
		EvidenceHash:       Base64String(h.EvidenceHash),
		ProposerAddress:    Base64String(h.ProposerAddress),
	}
}

func malformed(field string, err error) error {
	return fmt.Errorf("%w: invalid %s: %v", ErrMalformedSource, field, err)
}
