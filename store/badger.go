package store

import (
	"errors"

	"github.com/dgraph-io/badger/v3"
)

var _ KVStore = &BadgerKV{}
var _ Batch = &BadgerBatch{}
var _ Iterator = &BadgerIterator{}

var (
	// ErrKeyNotFound is returned if key is not found in KVStore.
	ErrKeyNotFound = errors.New("key not found")
)

// BadgerKV is the KVStore backing relayer progress and mock DA blobs.
type BadgerKV struct {
	db *badger.DB
}

// Get returns a copy of the value stored under key.
func (b *BadgerKV) Get(key []byte) (value []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

// Set stores value under key in its own transaction.
func (b *BadgerKV) Set(key []byte, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes key in its own transaction.
func (b *BadgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Close closes the database. Stores sharing it through PrefixKV must not be
// used afterwards.
func (b *BadgerKV) Close() error {
	return b.db.Close()
}

// NewBatch starts a write transaction. A submission record and its height
// index are written in one batch, so batches stay small.
func (b *BadgerKV) NewBatch() Batch {
	return &BadgerBatch{txn: b.db.NewTransaction(true)}
}

// BadgerBatch is a pending badger write transaction.
type BadgerBatch struct {
	txn *badger.Txn
}

func (bb *BadgerBatch) Set(key, value []byte) error {
	return bb.txn.Set(key, value)
}

func (bb *BadgerBatch) Delete(key []byte) error {
	return bb.txn.Delete(key)
}

// Commit makes every write of the batch visible at once.
func (bb *BadgerBatch) Commit() error {
	return bb.txn.Commit()
}

func (bb *BadgerBatch) Discard() {
	bb.txn.Discard()
}

// PrefixIterator iterates over keys starting with prefix in ascending order.
// The mock DA layer relies on that order to return blobs in submission order.
func (b *BadgerKV) PrefixIterator(prefix []byte) Iterator {
	txn := b.db.NewTransaction(false)
	iter := txn.NewIterator(badger.DefaultIteratorOptions)
	iter.Seek(prefix)
	return &BadgerIterator{
		txn:    txn,
		iter:   iter,
		prefix: prefix,
	}
}

// BadgerIterator reads a consistent snapshot taken when the iterator was created.
type BadgerIterator struct {
	txn       *badger.Txn
	iter      *badger.Iterator
	prefix    []byte
	lastError error
}

func (i *BadgerIterator) Valid() bool {
	return i.iter.ValidForPrefix(i.prefix)
}

func (i *BadgerIterator) Next() {
	i.iter.Next()
}

func (i *BadgerIterator) Key() []byte {
	return i.iter.Item().KeyCopy(nil)
}

// Value returns a copy of the current value. A read failure is kept for Error.
func (i *BadgerIterator) Value() []byte {
	val, err := i.iter.Item().ValueCopy(nil)
	if err != nil {
		i.lastError = err
	}
	return val
}

func (i *BadgerIterator) Error() error {
	return i.lastError
}

// Discard releases the snapshot. It must be called once iteration is done.
func (i *BadgerIterator) Discard() {
	i.iter.Close()
	i.txn.Discard()
}
