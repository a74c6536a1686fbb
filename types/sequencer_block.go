package types

import (
	"errors"
	"fmt"
	"sort"
)

// IndexedTransaction is a transaction together with its position in the original,
// unpartitioned transaction list of its block.
type IndexedTransaction struct {
	Index       uint64       `json:"index"`
	Transaction Base64String `json:"transaction"`
}

// RollupTxs maps a rollup namespace to its ordered partition. The default namespace
// is never a key.
type RollupTxs map[Namespace][]IndexedTransaction

// Namespaces returns the keys of r in ascending byte order.
func (r RollupTxs) Namespaces() []Namespace {
	namespaces := make([]Namespace, 0, len(r))
	for ns := range r {
		namespaces = append(namespaces, ns)
	}
	sort.Slice(namespaces, func(i, j int) bool {
		return string(namespaces[i][:]) < string(namespaces[j][:])
	})
	return namespaces
}

// SequencerBlock is a sequencer block whose transactions are partitioned by
// destination namespace.
type SequencerBlock struct {
	BlockHash    Base64String         `json:"block_hash"`
	Header       Header               `json:"header"`
	SequencerTxs []IndexedTransaction `json:"sequencer_txs"`
	RollupTxs    RollupTxs            `json:"rollup_txs"`
}

// FromBlockResponse builds a SequencerBlock from a sequencer node's block response.
// The block hash is the one declared by the node in the block ID.
func FromBlockResponse(resp *BlockResponse, classifier Classifier) (*SequencerBlock, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty block response", ErrMalformedSource)
	}
	return NewSequencerBlock(resp.BlockID.Hash, resp.Block, classifier)
}

// NewSequencerBlock partitions the transactions of block by the namespace the
// classifier finds in each of them. Header and block hash are captured verbatim;
// no hash is verified here.
func NewSequencerBlock(blockHash Base64String, block *Block, classifier Classifier) (*SequencerBlock, error) {
	if block == nil {
		return nil, fmt.Errorf("%w: missing block", ErrMalformedSource)
	}
	if len(blockHash) == 0 {
		return nil, fmt.Errorf("%w: missing block hash", ErrMalformedSource)
	}
	if _, err := block.Header.ParseHeight(); err != nil {
		return nil, err
	}
	if len(block.Header.DataHash) == 0 {
		return nil, fmt.Errorf("%w: missing data hash", ErrMalformedSource)
	}
	if classifier == nil {
		classifier = NoopClassifier
	}

	sb := &SequencerBlock{
		BlockHash:    blockHash,
		Header:       block.Header,
		SequencerTxs: make([]IndexedTransaction, 0),
		RollupTxs:    make(RollupTxs),
	}
	for i, tx := range block.Data.Txs {
		itx := IndexedTransaction{
			Index:       uint64(i),
			Transaction: tx,
		}
		ns, ok := classifier.Classify(tx)
		if !ok || ns.IsDefault() {
			sb.SequencerTxs = append(sb.SequencerTxs, itx)
			continue
		}
		sb.RollupTxs[ns] = append(sb.RollupTxs[ns], itx)
	}
	return sb, nil
}

// ValidateBasic checks the structural invariants of the block: the default
// namespace is not a rollup key and no index is used twice.
func (sb *SequencerBlock) ValidateBasic() error {
	if _, ok := sb.RollupTxs[DefaultNamespace]; ok {
		return errors.New("default namespace used as a rollup namespace")
	}
	seen := make(map[uint64]struct{}, len(sb.SequencerTxs))
	check := func(txs []IndexedTransaction) error {
		for _, tx := range txs {
			if _, ok := seen[tx.Index]; ok {
				return fmt.Errorf("duplicate transaction index %d", tx.Index)
			}
			seen[tx.Index] = struct{}{}
		}
		return nil
	}
	if err := check(sb.SequencerTxs); err != nil {
		return err
	}
	for _, ns := range sb.RollupTxs.Namespaces() {
		if err := check(sb.RollupTxs[ns]); err != nil {
			return err
		}
	}
	return nil
}

// Transactions merges all partitions back into the original transaction order.
//
// It fails if the indices are not exactly 0..n-1, which is the case when a
// partition is missing or was tampered with.
func (sb *SequencerBlock) Transactions() ([]Base64String, error) {
	all := make([]IndexedTransaction, 0, len(sb.SequencerTxs))
	all = append(all, sb.SequencerTxs...)
	for _, txs := range sb.RollupTxs {
		all = append(all, txs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	txs := make([]Base64String, len(all))
	for i, tx := range all {
		if tx.Index != uint64(i) {
			return nil, fmt.Errorf("transaction indices are not contiguous: expected %d, got %d", i, tx.Index)
		}
		txs[i] = tx.Transaction
	}
	return txs, nil
}
