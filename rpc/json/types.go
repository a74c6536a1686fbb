package json

import (
	"encoding/json"

	"github.com/gorilla/rpc/v2/json2"

	"github.com/rollkit/sequencer-relayer/types"
)

type HealthArgs struct {
}
type StatusArgs struct {
}
type LatestDAHeightArgs struct {
}

// GetBlocksArgs selects the blocks published at DA Height. When Signer is set, only
// blocks signed by that ed25519 public key are returned.
type GetBlocksArgs struct {
	Height uint64             `json:"height"`
	Signer types.Base64String `json:"signer"`
}
type CheckAvailabilityArgs struct {
	Height uint64 `json:"height"`
}
type SubmissionArgs struct {
	Height uint64 `json:"height"`
}

type HealthResult struct {
	Running bool `json:"running"`
}

type GetBlocksResult struct {
	Blocks []*types.SequencerBlock `json:"blocks"`
}

type LatestDAHeightResult struct {
	Height uint64 `json:"height"`
}

// JSON-RPC response used by URI handlers
type response struct {
	Version string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *json2.Error    `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}
