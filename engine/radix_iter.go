package engine

import (
	"bytes"

	"github.com/hashicorp/go-memdb"
)

type radixIterator struct {
	miTxn      *memdb.Txn
	cursor     *ritem
	resIter    memdb.ResultIterator
	isReverser bool
	lowerBound []byte
	upperBound []byte
	err        error
}

// Valid returns false only when an Iterator has iterated past either the
// first or the last key in the bounds.
func (iter *radixIterator) Valid() bool {
	if iter.err != nil || iter.cursor == nil {
		return false
	}
	if iter.lowerBound != nil && bytes.Compare([]byte(iter.cursor.Key), iter.lowerBound) < 0 {
		return false
	}
	if iter.upperBound != nil && bytes.Compare([]byte(iter.cursor.Key), iter.upperBound) >= 0 {
		return false
	}
	return true
}

func (iter *radixIterator) Err() error {
	return iter.err
}

func (iter *radixIterator) RefKey() []byte {
	return []byte(iter.cursor.Key)
}

// Key returns the key the iterator currently holds.
func (iter *radixIterator) Key() []byte {
	return []byte(iter.cursor.Key)
}

func (iter *radixIterator) RefValue() []byte {
	return iter.cursor.Value
}

// Value returns the value in the database the iterator currently holds.
func (iter *radixIterator) Value() []byte {
	return copyBytes(iter.cursor.Value)
}

func (iter *radixIterator) advance() {
	v := iter.resIter.Next()
	if v == nil {
		iter.cursor = nil
		return
	}
	iter.cursor = v.(*ritem)
}

// Next moves the iterator to the next sequential key in the database.
func (iter *radixIterator) Next() {
	if iter.resIter == nil || iter.cursor == nil {
		return
	}
	if iter.isReverser {
		// we convert iterator to non reverse
		key := iter.Key()
		iter.Seek(key)
		if iter.err != nil || iter.cursor == nil {
			return
		}
		if iter.cursor.Key != string(key) {
			return
		}
	}
	iter.advance()
}

// Prev moves the iterator to the previous sequential key in the database.
func (iter *radixIterator) Prev() {
	if iter.resIter == nil || iter.cursor == nil {
		return
	}
	if !iter.isReverser {
		key := iter.Key()
		iter.SeekForPrev(key)
		if iter.err != nil || iter.cursor == nil {
			return
		}
		if iter.cursor.Key != string(key) {
			return
		}
	}
	// for reverse iterator, prev is just next
	iter.advance()
}

// SeekToFirst moves the iterator to the first key in the bounds.
func (iter *radixIterator) SeekToFirst() {
	if iter.lowerBound != nil {
		iter.Seek(iter.lowerBound)
		return
	}
	resIter, err := iter.miTxn.Get(defaultTableName, "id")
	if err != nil {
		iter.err = err
		return
	}
	iter.resIter = resIter
	iter.isReverser = false
	iter.advance()
}

// SeekToLast moves the iterator to the last key in the bounds.
func (iter *radixIterator) SeekToLast() {
	if iter.upperBound != nil {
		iter.SeekForPrev(iter.upperBound)
		if iter.cursor != nil && iter.cursor.Key == string(iter.upperBound) {
			iter.advance()
		}
		return
	}
	resIter, err := iter.miTxn.GetReverse(defaultTableName, "id")
	if err != nil {
		iter.err = err
		return
	}
	iter.resIter = resIter
	iter.isReverser = true
	iter.advance()
}

// Seek moves the iterator to the position greater than or equal to the key.
func (iter *radixIterator) Seek(key []byte) {
	resIter, err := iter.miTxn.LowerBound(defaultTableName, "id", string(key))
	if err != nil {
		iter.err = err
		return
	}
	iter.resIter = resIter
	iter.isReverser = false
	iter.advance()
}

// seek to the last key that less than or equal to the target key
func (iter *radixIterator) SeekForPrev(key []byte) {
	resIter, err := iter.miTxn.ReverseLowerBound(defaultTableName, "id", string(key))
	if err != nil {
		iter.err = err
		return
	}
	iter.resIter = resIter
	iter.isReverser = true
	iter.advance()
}

// Close closes the iterator.
func (iter *radixIterator) Close() {
	iter.miTxn.Abort()
}
