package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rollkit/sequencer-relayer/types"
)

var (
	submissionPrefix = [1]byte{1}
	heightKey        = []byte{2}
)

// Submission records where a relayed sequencer block was published on the DA layer.
type Submission struct {
	SequencerHeight  uint64                     `json:"sequencer_height"`
	BlockHash        types.Base64String         `json:"block_hash"`
	NamespaceHeights map[types.Namespace]uint64 `json:"namespace_heights"`
	Time             time.Time                  `json:"time"`
}

// DAHeight returns the DA height of the block's default namespace blob.
func (s *Submission) DAHeight() uint64 {
	return s.NamespaceHeights[types.DefaultNamespace]
}

// Store persists the progress of the relayer.
type Store interface {
	// Height returns the highest sequencer height saved in the Store.
	Height() uint64

	// SaveSubmission adds a submission record to the store.
	// Stored height is updated if the record's sequencer height is greater than stored value.
	SaveSubmission(s *Submission) error

	// LoadSubmission returns the record of the sequencer block at height.
	LoadSubmission(height uint64) (*Submission, error)

	// Close safely closes underlying data storage, to ensure that data is actually saved.
	Close() error
}

// DefaultStore is the Store backed by a KVStore.
type DefaultStore struct {
	db KVStore

	height uint64

	// mtx protects height
	mtx sync.RWMutex
}

var _ Store = &DefaultStore{}

// New returns a Store over kv, restoring the height saved by a previous run.
func New(kv KVStore) (*DefaultStore, error) {
	s := &DefaultStore{db: kv}
	bz, err := kv.Get(heightKey)
	switch {
	case errors.Is(err, ErrKeyNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load height: %w", err)
	case len(bz) != 8:
		return nil, fmt.Errorf("invalid stored height: %d bytes", len(bz))
	default:
		s.height = binary.BigEndian.Uint64(bz)
	}
	return s, nil
}

func (s *DefaultStore) Height() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.height
}

func (s *DefaultStore) SaveSubmission(sub *Submission) error {
	blob, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	batch := s.db.NewBatch()
	defer batch.Discard()
	if err := batch.Set(getSubmissionKey(sub.SequencerHeight), blob); err != nil {
		return err
	}
	if sub.SequencerHeight > s.height {
		if err := batch.Set(heightKey, encodeHeight(sub.SequencerHeight)); err != nil {
			return err
		}
	}
	if err := batch.Commit(); err != nil {
		return err
	}
	if sub.SequencerHeight > s.height {
		s.height = sub.SequencerHeight
	}
	return nil
}

func (s *DefaultStore) LoadSubmission(height uint64) (*Submission, error) {
	blob, err := s.db.Get(getSubmissionKey(height))
	if err != nil {
		return nil, fmt.Errorf("failed to load submission at height %d: %w", height, err)
	}
	sub := new(Submission)
	if err := json.Unmarshal(blob, sub); err != nil {
		return nil, fmt.Errorf("failed to decode submission at height %d: %w", height, err)
	}
	return sub, nil
}

func (s *DefaultStore) Close() error {
	return s.db.Close()
}

func getSubmissionKey(height uint64) []byte {
	return append(submissionPrefix[:], encodeHeight(height)...)
}

func encodeHeight(height uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, height)
	return buf
}
