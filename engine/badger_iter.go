package engine

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"
)

// badgerIterator reads a snapshot of badger. Badger iterators move in one
// direction only, a new one is created when the direction changes.
type badgerIterator struct {
	txn        *badger.Txn
	it         *badger.Iterator
	reverse    bool
	lowerBound []byte
	upperBound []byte
	err        error
}

func (iter *badgerIterator) reset(reverse bool) {
	if iter.it != nil && iter.reverse == reverse {
		return
	}
	if iter.it != nil {
		iter.it.Close()
	}
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = reverse
	iter.it = iter.txn.NewIterator(opts)
	iter.reverse = reverse
}

func (iter *badgerIterator) rawValid() bool {
	return iter.it != nil && iter.it.Valid()
}

func (iter *badgerIterator) Valid() bool {
	if iter.err != nil || !iter.rawValid() {
		return false
	}
	k := iter.it.Item().Key()
	if iter.lowerBound != nil && bytes.Compare(k, iter.lowerBound) < 0 {
		return false
	}
	if iter.upperBound != nil && bytes.Compare(k, iter.upperBound) >= 0 {
		return false
	}
	return true
}

func (iter *badgerIterator) Err() error {
	return iter.err
}

func (iter *badgerIterator) RefKey() []byte {
	return iter.it.Item().Key()
}

func (iter *badgerIterator) Key() []byte {
	return iter.it.Item().KeyCopy(nil)
}

func (iter *badgerIterator) RefValue() []byte {
	return iter.Value()
}

func (iter *badgerIterator) Value() []byte {
	v, err := iter.it.Item().ValueCopy(nil)
	if err != nil {
		iter.err = err
		return nil
	}
	return v
}

func (iter *badgerIterator) Next() {
	if !iter.rawValid() {
		return
	}
	if iter.reverse {
		key := iter.Key()
		iter.Seek(key)
		if !iter.rawValid() || !bytes.Equal(iter.it.Item().Key(), key) {
			return
		}
	}
	iter.it.Next()
}

func (iter *badgerIterator) Prev() {
	if !iter.rawValid() {
		return
	}
	if !iter.reverse {
		key := iter.Key()
		iter.SeekForPrev(key)
		if !iter.rawValid() || !bytes.Equal(iter.it.Item().Key(), key) {
			return
		}
	}
	iter.it.Next()
}

func (iter *badgerIterator) Seek(key []byte) {
	iter.reset(false)
	iter.it.Seek(key)
}

// seek to the last key that less than or equal to the target key
func (iter *badgerIterator) SeekForPrev(key []byte) {
	iter.reset(true)
	iter.it.Seek(key)
}

func (iter *badgerIterator) SeekToFirst() {
	if iter.lowerBound != nil {
		iter.Seek(iter.lowerBound)
		return
	}
	iter.reset(false)
	iter.it.Rewind()
}

func (iter *badgerIterator) SeekToLast() {
	if iter.upperBound != nil {
		iter.SeekForPrev(iter.upperBound)
		if iter.rawValid() && bytes.Equal(iter.it.Item().Key(), iter.upperBound) {
			iter.it.Next()
		}
		return
	}
	iter.reset(true)
	iter.it.Rewind()
}

func (iter *badgerIterator) Close() {
	if iter.it != nil {
		iter.it.Close()
		iter.it = nil
	}
	iter.txn.Discard()
}
