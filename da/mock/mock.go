package mock

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rollkit/sequencer-relayer/da"
	"github.com/rollkit/sequencer-relayer/log"
	"github.com/rollkit/sequencer-relayer/store"
	"github.com/rollkit/sequencer-relayer/types"
)

// DefaultBlockTime is the block time of the mock DA layer used when none is given.
const DefaultBlockTime = 100 * time.Millisecond

// BlobClient is a simple in-memory DA layer, intended only for testing.
//
// Blobs submitted between two ticks of the block time are included at the same
// height. Heights start at 1.
type BlobClient struct {
	kv        store.KVStore
	blockTime time.Duration
	logger    log.Logger

	height uint64
	seq    uint64

	quit chan struct{}
	wg   sync.WaitGroup
}

var _ da.BlobClient = &BlobClient{}

// NewBlobClient returns a mock DA layer storing blobs in kv.
func NewBlobClient(kv store.KVStore, blockTime time.Duration, logger log.Logger) *BlobClient {
	if blockTime <= 0 {
		blockTime = DefaultBlockTime
	}
	return &BlobClient{
		kv:        kv,
		blockTime: blockTime,
		logger:    logger,
		height:    1,
	}
}

// Start starts producing DA blocks.
func (m *BlobClient) Start() error {
	m.logger.Debug("Mock DA layer starting", "blockTime", m.blockTime)
	m.quit = make(chan struct{})
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.blockTime)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				atomic.AddUint64(&m.height, 1)
			case <-m.quit:
				return
			}
		}
	}()
	return nil
}

// Stop stops producing DA blocks.
func (m *BlobClient) Stop() error {
	if m.quit == nil {
		return nil
	}
	m.logger.Debug("Mock DA layer stopping")
	close(m.quit)
	m.wg.Wait()
	return nil
}

// SubmitBlob includes blob at the current height.
func (m *BlobClient) SubmitBlob(ctx context.Context, ns types.Namespace, blob []byte) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	height := atomic.LoadUint64(&m.height)
	seq := atomic.AddUint64(&m.seq, 1)

	if err := m.kv.Set(getKey(ns, height, seq), blob); err != nil {
		return 0, err
	}
	m.logger.Debug("Submitting blob to DA layer", "namespace", ns, "daHeight", height, "size", len(blob))
	return height, nil
}

// NamespacedShares returns the shares of all blobs of namespace ns at height.
func (m *BlobClient) NamespacedShares(ctx context.Context, ns types.Namespace, height uint64) ([][]byte, error) {
	data, err := m.NamespacedData(ctx, ns, height)
	if err != nil {
		return nil, err
	}
	var shares [][]byte
	for _, blob := range data {
		shares = append(shares, SplitIntoShares(ns, blob)...)
	}
	return shares, nil
}

// NamespacedData returns the blobs of namespace ns at height, in submission order.
func (m *BlobClient) NamespacedData(ctx context.Context, ns types.Namespace, height uint64) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if height > atomic.LoadUint64(&m.height) {
		return nil, fmt.Errorf("height %d is in the future", height)
	}

	it := m.kv.PrefixIterator(getPrefix(ns, height))
	defer it.Discard()
	var data [][]byte
	for ; it.Valid(); it.Next() {
		data = append(data, it.Value())
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return data, nil
}

// LatestHeight returns the current height.
func (m *BlobClient) LatestHeight(ctx context.Context) (uint64, error) {
	return atomic.LoadUint64(&m.height), nil
}

func getPrefix(ns types.Namespace, height uint64) []byte {
	key := make([]byte, 0, types.NamespaceSize+16)
	key = append(key, ns[:]...)
	return binary.BigEndian.AppendUint64(key, height)
}

func getKey(ns types.Namespace, height, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(getPrefix(ns, height), seq)
}
