package da

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tendermint/tendermint/crypto"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/rollkit/sequencer-relayer/log"
	"github.com/rollkit/sequencer-relayer/types"
)

// BlobClient is the transport to a DA network: it publishes and fetches raw blobs in
// namespaces.
type BlobClient interface {
	// SubmitBlob publishes blob in namespace ns and returns its inclusion height.
	SubmitBlob(ctx context.Context, ns types.Namespace, blob []byte) (uint64, error)

	// NamespacedShares returns the shares of namespace ns at height. It is used as
	// an availability probe, without decoding.
	NamespacedShares(ctx context.Context, ns types.Namespace, height uint64) ([][]byte, error)

	// NamespacedData returns all blobs of namespace ns at height, empty if none.
	NamespacedData(ctx context.Context, ns types.Namespace, height uint64) ([][]byte, error)

	// LatestHeight returns the height of the newest DA block.
	LatestHeight(ctx context.Context) (uint64, error)
}

// ResultSubmitBlock contains the inclusion heights of the namespace blobs of a block.
type ResultSubmitBlock struct {
	NamespaceHeights map[types.Namespace]uint64 `json:"namespace_heights"`
}

// DefaultHeight returns the inclusion height of the default namespace blob, if it was published.
func (r *ResultSubmitBlock) DefaultHeight() (uint64, bool) {
	h, ok := r.NamespaceHeights[types.DefaultNamespace]
	return h, ok
}

// ResultCheckBlock confirms that a block was found at Height.
type ResultCheckBlock struct {
	Height uint64 `json:"height"`
}

// SubmitError is returned for each namespace blob that could not be published.
type SubmitError struct {
	Namespace types.Namespace
	Err       error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("failed to submit namespace %s: %v", e.Namespace, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// FailedNamespaces returns the namespaces of all SubmitErrors combined in err.
func FailedNamespaces(err error) []types.Namespace {
	var namespaces []types.Namespace
	for _, e := range multierr.Errors(err) {
		var se *SubmitError
		if errors.As(e, &se) {
			namespaces = append(namespaces, se.Namespace)
		}
	}
	return namespaces
}

// Client publishes sequencer blocks to a DA network and reassembles them back.
//
// A block is published as one signed blob per namespace. The default namespace
// blob carries the header and the sequencer's own transactions, and names the
// rollup namespaces that the rest of the block was published to.
type Client struct {
	blobs  BlobClient
	logger log.Logger
}

// NewClient returns a Client on top of the given transport.
func NewClient(blobs BlobClient, logger log.Logger) *Client {
	return &Client{
		blobs:  blobs,
		logger: logger,
	}
}

// SubmitBlock signs every partition of block with signer and publishes them
// concurrently, one blob per namespace.
//
// Publishes are independent: when some of them fail, the heights of the others
// are still returned, together with an error combining one *SubmitError per
// failed namespace. Nothing is retried.
func (c *Client) SubmitBlock(ctx context.Context, block *types.SequencerBlock, signer crypto.PrivKey) (*ResultSubmitBlock, error) {
	if block == nil {
		return nil, errors.New("nil block")
	}
	if signer == nil {
		return nil, errors.New("nil signing key")
	}

	rollupNamespaces := make([]types.Namespace, 0, len(block.RollupTxs))
	for _, ns := range block.RollupTxs.Namespaces() {
		if ns.IsDefault() {
			return nil, errors.New("default namespace used as a rollup namespace")
		}
		rollupNamespaces = append(rollupNamespaces, ns)
	}

	blobs := make(map[types.Namespace][]byte, len(rollupNamespaces)+1)
	var err error
	blobs[types.DefaultNamespace], err = signBlob(&types.SequencerNamespaceData{
		BlockHash:        block.BlockHash,
		Header:           block.Header,
		SequencerTxs:     block.SequencerTxs,
		RollupNamespaces: rollupNamespaces,
	}, signer)
	if err != nil {
		return nil, err
	}
	for _, ns := range rollupNamespaces {
		blobs[ns], err = signBlob(&types.RollupNamespaceData{
			BlockHash: block.BlockHash,
			RollupTxs: block.RollupTxs[ns],
		}, signer)
		if err != nil {
			return nil, err
		}
	}

	res := &ResultSubmitBlock{NamespaceHeights: make(map[types.Namespace]uint64, len(blobs))}
	var (
		mtx  sync.Mutex
		errs error
		eg   errgroup.Group
	)
	for ns, blob := range blobs {
		ns, blob := ns, blob
		eg.Go(func() error {
			height, err := c.blobs.SubmitBlob(ctx, ns, blob)
			mtx.Lock()
			defer mtx.Unlock()
			if err != nil {
				errs = multierr.Append(errs, &SubmitError{
					Namespace: ns,
					Err:       types.NewTransportError("submit", err),
				})
				return nil
			}
			res.NamespaceHeights[ns] = height
			return nil
		})
	}
	_ = eg.Wait()

	if errs != nil {
		c.logger.Error("failed to submit block", "blockHash", block.BlockHash, "submitted", len(res.NamespaceHeights), "failed", len(multierr.Errors(errs)), "error", errs)
	} else {
		c.logger.Debug("submitted block", "blockHash", block.BlockHash, "namespaces", len(res.NamespaceHeights))
	}
	return res, errs
}

// CheckBlockAvailability checks that a default namespace blob exists at height.
func (c *Client) CheckBlockAvailability(ctx context.Context, height uint64) (*ResultCheckBlock, error) {
	shares, err := c.blobs.NamespacedShares(ctx, types.DefaultNamespace, height)
	if err != nil {
		return nil, types.NewTransportError("namespaced shares", err)
	}
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no block at height %d", types.ErrNotFound, height)
	}
	return &ResultCheckBlock{Height: height}, nil
}

// GetLatestHeight returns the height of the newest DA block.
func (c *Client) GetLatestHeight(ctx context.Context) (uint64, error) {
	height, err := c.blobs.LatestHeight(ctx)
	if err != nil {
		return 0, types.NewTransportError("latest height", err)
	}
	return height, nil
}

// candidate is a block being reassembled from its default namespace blob.
type candidate struct {
	signer crypto.PubKey
	data   types.SequencerNamespaceData
	block  *types.SequencerBlock
}

// GetBlocks returns the blocks published at height. When expectedSigner is not nil,
// only blocks signed by it are returned; blocks of other signers are skipped
// silently.
//
// Undecodable blobs and blobs with an invalid signature are logged and skipped.
// ErrSignatureInvalid is returned only when no block at height verifies. A rollup
// partition that cannot be found is left out of its block. Returned blocks are
// not hash-verified.
func (c *Client) GetBlocks(ctx context.Context, height uint64, expectedSigner crypto.PubKey) ([]*types.SequencerBlock, error) {
	data, err := c.blobs.NamespacedData(ctx, types.DefaultNamespace, height)
	if err != nil {
		return nil, types.NewTransportError("namespaced data", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no block at height %d", types.ErrNotFound, height)
	}

	candidates, err := c.decodeCandidates(height, data, expectedSigner)
	if err != nil {
		return nil, err
	}

	rollupBlobs, err := c.fetchRollupBlobs(ctx, height, candidates)
	if err != nil {
		return nil, err
	}
	for _, ns := range sortedNamespaces(rollupBlobs) {
		c.attachRollupTxs(height, ns, rollupBlobs[ns], candidates)
	}

	blocks := make([]*types.SequencerBlock, len(candidates))
	for i, cand := range candidates {
		blocks[i] = cand.block
	}
	return blocks, nil
}

func (c *Client) decodeCandidates(height uint64, data [][]byte, expectedSigner crypto.PubKey) ([]*candidate, error) {
	var (
		candidates = make([]*candidate, 0, len(data))
		seen       = make(map[string]struct{})
		sigErr     error
	)
	for i, blob := range data {
		snd, err := types.UnmarshalSignedNamespaceData(blob)
		if err != nil {
			c.logger.Error("failed to decode blob", "daHeight", height, "namespace", types.DefaultNamespace, "position", i, "error", err)
			continue
		}
		if expectedSigner != nil && !snd.SignedBy(expectedSigner) {
			continue
		}
		signer, err := snd.Verify()
		if err != nil {
			c.logger.Error("skipping blob", "daHeight", height, "namespace", types.DefaultNamespace, "position", i, "error", err)
			sigErr = fmt.Errorf("block at DA height %d, position %d: %w", height, i, err)
			continue
		}
		cand := &candidate{signer: signer}
		if err := snd.Decode(&cand.data); err != nil {
			c.logger.Error("failed to decode sequencer namespace data", "daHeight", height, "position", i, "error", err)
			continue
		}

		// the same block may have been published more than once
		key := string(signer.Bytes()) + string(cand.data.BlockHash)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		cand.block = &types.SequencerBlock{
			BlockHash:    cand.data.BlockHash,
			Header:       cand.data.Header,
			SequencerTxs: cand.data.SequencerTxs,
			RollupTxs:    make(types.RollupTxs),
		}
		if cand.block.SequencerTxs == nil {
			cand.block.SequencerTxs = make([]types.IndexedTransaction, 0)
		}
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 && sigErr != nil {
		return nil, sigErr
	}
	return candidates, nil
}

// fetchRollupBlobs fetches every rollup namespace referenced by the candidates, each once.
func (c *Client) fetchRollupBlobs(ctx context.Context, height uint64, candidates []*candidate) (map[types.Namespace][][]byte, error) {
	namespaces := make(map[types.Namespace]struct{})
	for _, cand := range candidates {
		for _, ns := range cand.data.RollupNamespaces {
			if !ns.IsDefault() {
				namespaces[ns] = struct{}{}
			}
		}
	}

	var (
		mtx   sync.Mutex
		blobs = make(map[types.Namespace][][]byte, len(namespaces))
	)
	eg, ctx := errgroup.WithContext(ctx)
	for ns := range namespaces {
		ns := ns
		eg.Go(func() error {
			data, err := c.blobs.NamespacedData(ctx, ns, height)
			if err != nil {
				return types.NewTransportError("namespaced data", fmt.Errorf("namespace %s: %w", ns, err))
			}
			mtx.Lock()
			defer mtx.Unlock()
			blobs[ns] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return blobs, nil
}

// attachRollupTxs adds the partitions found in the blobs of namespace ns to the
// candidates they belong to: same block hash and same signer.
func (c *Client) attachRollupTxs(height uint64, ns types.Namespace, data [][]byte, candidates []*candidate) {
	for i, blob := range data {
		snd, err := types.UnmarshalSignedNamespaceData(blob)
		if err != nil {
			c.logger.Error("failed to decode blob", "daHeight", height, "namespace", ns, "position", i, "error", err)
			continue
		}
		var owners []*candidate
		for _, cand := range candidates {
			if snd.SignedBy(cand.signer) && references(cand, ns) {
				owners = append(owners, cand)
			}
		}
		if len(owners) == 0 {
			continue
		}
		if _, err := snd.Verify(); err != nil {
			c.logger.Error("skipping rollup blob", "daHeight", height, "namespace", ns, "position", i, "error", err)
			continue
		}
		var rd types.RollupNamespaceData
		if err := snd.Decode(&rd); err != nil {
			c.logger.Error("failed to decode rollup namespace data", "daHeight", height, "namespace", ns, "position", i, "error", err)
			continue
		}
		for _, cand := range owners {
			if !cand.block.BlockHash.Equal(rd.BlockHash) {
				continue
			}
			if _, ok := cand.block.RollupTxs[ns]; ok {
				continue
			}
			txs := rd.RollupTxs
			if txs == nil {
				txs = make([]types.IndexedTransaction, 0)
			}
			cand.block.RollupTxs[ns] = txs
		}
	}
}

func references(cand *candidate, ns types.Namespace) bool {
	for _, rns := range cand.data.RollupNamespaces {
		if rns == ns {
			return true
		}
	}
	return false
}

func sortedNamespaces(m map[types.Namespace][][]byte) []types.Namespace {
	r := make(types.RollupTxs, len(m))
	for ns := range m {
		r[ns] = nil
	}
	return r.Namespaces()
}

func signBlob(payload interface{}, signer crypto.PrivKey) ([]byte, error) {
	snd, err := types.NewSignedNamespaceData(payload, signer)
	if err != nil {
		return nil, err
	}
	return snd.MarshalBinary()
}
