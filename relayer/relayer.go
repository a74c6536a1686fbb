package relayer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tendermint/tendermint/crypto"
	tmlog "github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"

	"github.com/rollkit/sequencer-relayer/config"
	"github.com/rollkit/sequencer-relayer/da"
	"github.com/rollkit/sequencer-relayer/store"
	"github.com/rollkit/sequencer-relayer/types"
)

// initialBackoff defines initial value for block submission backoff
var initialBackoff = 100 * time.Millisecond

// SequencerClient is the source of sequencer blocks.
type SequencerClient interface {
	GetLatestBlock(ctx context.Context) (*types.BlockResponse, error)
	GetBlock(ctx context.Context, height uint64) (*types.BlockResponse, error)
}

// DAClient publishes sequencer blocks.
type DAClient interface {
	SubmitBlock(ctx context.Context, block *types.SequencerBlock, signer crypto.PrivKey) (*da.ResultSubmitBlock, error)
}

// Status describes the progress of the relayer.
type Status struct {
	// SequencerHeight is the height of the newest sequencer block seen.
	SequencerHeight uint64 `json:"sequencer_height"`
	// RelayedHeight is the height of the last relayed sequencer block.
	RelayedHeight uint64 `json:"relayed_height"`
	// DAHeight is the DA height of the default namespace blob of the last relayed block.
	DAHeight      uint64             `json:"da_height"`
	InvalidBlocks uint64             `json:"invalid_blocks"`
	Signer        types.Base64String `json:"signer"`
	LastError     string             `json:"last_error,omitempty"`
}

// Relayer polls the sequencer for new blocks, verifies them and publishes them
// to the DA layer, signed with the relayer's key.
//
// Blocks are relayed in height order. A block that fails verification is
// skipped; a block that can't be published stops the relayer until the next
// tick, so no height is ever relayed out of order.
type Relayer struct {
	service.BaseService

	conf       config.RelayerConfig
	sequencer  SequencerClient
	da         DAClient
	signer     crypto.PrivKey
	store      store.Store
	classifier types.Classifier
	metrics    *Metrics

	// next is the next sequencer height to relay, 0 until it's known.
	// Only the relay loop uses it.
	next uint64

	statusMtx sync.RWMutex
	status    Status

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRelayer returns a Relayer. The store is owned by the caller.
func NewRelayer(
	conf config.RelayerConfig,
	seq SequencerClient,
	dac DAClient,
	signer crypto.PrivKey,
	s store.Store,
	metrics *Metrics,
	logger tmlog.Logger,
) (*Relayer, error) {
	if signer == nil {
		return nil, errors.New("signer can't be nil")
	}
	if conf.BlockTime <= 0 {
		return nil, errors.New("block time must be positive")
	}
	if conf.MaxSubmitAttempts < 1 {
		conf.MaxSubmitAttempts = 1
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	r := &Relayer{
		conf:       conf,
		sequencer:  seq,
		da:         dac,
		signer:     signer,
		store:      s,
		classifier: types.NewSequencerMsgClassifier(conf.RollupMsgTypeURL),
		metrics:    metrics,
	}
	r.status.Signer = signer.PubKey().Bytes()
	r.BaseService = *service.NewBaseService(logger, "Relayer", r)
	return r, nil
}

// OnStart restores the progress saved in the store and starts the relay loop.
func (r *Relayer) OnStart() error {
	if err := r.loadProgress(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go r.relayLoop(ctx)
	return nil
}

func (r *Relayer) loadProgress() error {
	height := r.store.Height()
	switch {
	case height > 0:
		sub, err := r.store.LoadSubmission(height)
		if err != nil {
			return fmt.Errorf("failed to load last submission: %w", err)
		}
		r.next = height + 1
		r.setRelayed(sub)
		r.Logger.Info("resuming relayer", "relayedHeight", height, "daHeight", sub.DAHeight())
	case r.conf.StartHeight > 0:
		r.next = r.conf.StartHeight
		r.Logger.Info("starting relayer", "startHeight", r.conf.StartHeight)
	default:
		r.Logger.Info("starting relayer at the latest sequencer block")
	}
	return nil
}

// OnStop stops the relay loop and waits for it to return.
func (r *Relayer) OnStop() {
	r.cancel()
	r.wg.Wait()
}

// Status returns the current progress of the relayer.
func (r *Relayer) Status() Status {
	r.statusMtx.RLock()
	defer r.statusMtx.RUnlock()
	return r.status
}

func (r *Relayer) relayLoop(ctx context.Context) {
	defer r.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		err := r.relayPending(ctx)
		if ctx.Err() != nil {
			return
		}
		r.setLastError(err)
		if err != nil {
			r.Logger.Error("failed to relay sequencer blocks", "error", err)
		}
		timer.Reset(r.conf.BlockTime)
	}
}

// relayPending relays every block from the next height up to the latest sequencer block.
func (r *Relayer) relayPending(ctx context.Context) error {
	latest, err := r.sequencer.GetLatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest sequencer block: %w", err)
	}
	if latest == nil || latest.Block == nil {
		return fmt.Errorf("%w: latest sequencer block is missing", types.ErrMalformedSource)
	}
	latestHeight, err := latest.Block.Header.ParseHeight()
	if err != nil {
		return err
	}
	r.setSequencerHeight(latestHeight)

	if r.next == 0 {
		r.next = latestHeight
	}
	for r.next <= latestHeight {
		height := r.next
		resp := latest
		if height != latestHeight {
			resp, err = r.sequencer.GetBlock(ctx, height)
			if err != nil {
				return fmt.Errorf("failed to get sequencer block %d: %w", height, err)
			}
		}

		switch err := r.relayBlock(ctx, height, resp); {
		case err == nil:
		case errors.Is(err, types.ErrHashMismatch) || errors.Is(err, types.ErrMalformedSource):
			r.Logger.Error("skipping invalid sequencer block", "height", height, "error", err)
			r.metrics.InvalidBlocks.Add(1)
			r.statusMtx.Lock()
			r.status.InvalidBlocks++
			r.statusMtx.Unlock()
		default:
			return err
		}
		r.next++
	}
	return nil
}

func (r *Relayer) relayBlock(ctx context.Context, height uint64, resp *types.BlockResponse) error {
	block, err := types.FromBlockResponse(resp, r.classifier)
	if err != nil {
		return err
	}
	if blockHeight, err := block.Header.ParseHeight(); err != nil {
		return err
	} else if blockHeight != height {
		return fmt.Errorf("%w: expected block %d, got %d", types.ErrMalformedSource, height, blockHeight)
	}
	if err := block.VerifyBlockHash(); err != nil {
		return err
	}
	if err := block.VerifyDataHash(); err != nil {
		return err
	}

	start := time.Now()
	res, err := r.submitBlock(ctx, block)
	if err != nil {
		return err
	}
	r.metrics.SubmitTime.Observe(time.Since(start).Seconds())

	sub := &store.Submission{
		SequencerHeight:  height,
		BlockHash:        block.BlockHash,
		NamespaceHeights: res.NamespaceHeights,
		Time:             time.Now().UTC(),
	}
	if err := r.store.SaveSubmission(sub); err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}
	r.setRelayed(sub)
	r.recordMetrics(block)

	r.Logger.Info("relayed sequencer block",
		"height", height,
		"blockHash", block.BlockHash,
		"daHeight", sub.DAHeight(),
		"namespaces", len(res.NamespaceHeights),
	)
	return nil
}

// submitBlock publishes block, retrying the whole block with exponential backoff.
func (r *Relayer) submitBlock(ctx context.Context, block *types.SequencerBlock) (*da.ResultSubmitBlock, error) {
	var (
		backoff time.Duration
		err     error
	)
	for attempt := 1; ; attempt++ {
		var res *da.ResultSubmitBlock
		res, err = r.da.SubmitBlock(ctx, block, r.signer)
		if err == nil {
			return res, nil
		}
		r.metrics.SubmissionFailures.Add(1)
		r.Logger.Error("DA layer submission failed",
			"blockHash", block.BlockHash,
			"attempt", attempt,
			"failedNamespaces", da.FailedNamespaces(err),
			"error", err,
		)
		if attempt >= r.conf.MaxSubmitAttempts {
			break
		}

		backoff = r.exponentialBackoff(backoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("failed to submit block after %d attempts: %w", r.conf.MaxSubmitAttempts, err)
}

func (r *Relayer) exponentialBackoff(backoff time.Duration) time.Duration {
	backoff *= 2
	if backoff == 0 {
		backoff = initialBackoff
	}
	if backoff > r.conf.BlockTime {
		backoff = r.conf.BlockTime
	}
	return backoff
}

func (r *Relayer) recordMetrics(block *types.SequencerBlock) {
	txs := len(block.SequencerTxs)
	for _, rollupTxs := range block.RollupTxs {
		txs += len(rollupTxs)
	}
	r.metrics.RelayedBlocks.Add(1)
	r.metrics.BlockTxs.Observe(float64(txs))
	r.metrics.BlockNamespaces.Observe(float64(len(block.RollupTxs) + 1))
}

func (r *Relayer) setRelayed(sub *store.Submission) {
	r.statusMtx.Lock()
	defer r.statusMtx.Unlock()
	r.status.RelayedHeight = sub.SequencerHeight
	r.status.DAHeight = sub.DAHeight()
	r.metrics.RelayedHeight.Set(float64(sub.SequencerHeight))
	r.metrics.DAHeight.Set(float64(sub.DAHeight()))
}

func (r *Relayer) setSequencerHeight(height uint64) {
	r.statusMtx.Lock()
	defer r.statusMtx.Unlock()
	r.status.SequencerHeight = height
	r.metrics.SequencerHeight.Set(float64(height))
}

func (r *Relayer) setLastError(err error) {
	r.statusMtx.Lock()
	defer r.statusMtx.Unlock()
	if err == nil {
		r.status.LastError = ""
		return
	}
	r.status.LastError = err.Error()
}
