package engine

import (
	"bytes"

	"github.com/youzan/zangeo/common"
)

// Iterator is the raw ordered iterator of an engine.
type Iterator interface {
	Next()
	Prev()
	Valid() bool
	Seek([]byte)
	SeekForPrev([]byte)
	SeekToFirst()
	SeekToLast()
	Close()
	// RefKey and RefValue are only valid until the iterator moves
	RefKey() []byte
	Key() []byte
	RefValue() []byte
	Value() []byte
	Err() error
}

// Range is a key range, nil bounds are unbounded. Type holds the
// common.RangeLOpen and common.RangeROpen bits.
type Range struct {
	Min  []byte
	Max  []byte
	Type uint8
}

func (r *Range) leftOpen() bool {
	return r.Type&common.RangeLOpen != 0
}

func (r *Range) rightOpen() bool {
	return r.Type&common.RangeROpen != 0
}

// belowMax reports whether key has not passed the upper bound.
func (r *Range) belowMax(key []byte) bool {
	if r.Max == nil {
		return true
	}
	c := bytes.Compare(key, r.Max)
	if r.rightOpen() {
		return c < 0
	}
	return c <= 0
}

// aboveMin reports whether key has not passed the lower bound.
func (r *Range) aboveMin(key []byte) bool {
	if r.Min == nil {
		return true
	}
	c := bytes.Compare(key, r.Min)
	if r.leftOpen() {
		return c > 0
	}
	return c >= 0
}

// Limit skips Offset keys and stops after Count keys, a negative Count
// means no limit.
type Limit struct {
	Offset int
	Count  int
}

type IteratorOpts struct {
	Range
	Limit
	Reverse bool
}

// NewDBRangeLimitIteratorWithOpts opens an engine iterator bounded by
// opts.Range and positions it on the first key in scan order.
func NewDBRangeLimitIteratorWithOpts(eng KVEngine, opts IteratorOpts) (*RangeLimitedIterator, error) {
	upper := opts.Max
	if !opts.rightOpen() && upper != nil {
		// engine upper bounds are exclusive
		upper = append(copyBytes(upper), 0)
	}
	dbit, err := eng.GetIterator(IteratorOpts{Range: Range{Min: opts.Min, Max: upper}})
	if err != nil {
		return nil, err
	}
	return newRangeLimitIterator(dbit, opts.Range, opts.Limit, opts.Reverse), nil
}

// NewDBRangeIterator iterates every key in [min, max] with the open ends
// given by rtype.
func NewDBRangeIterator(eng KVEngine, min []byte, max []byte, rtype uint8,
	reverse bool) (*RangeLimitedIterator, error) {
	return NewDBRangeLimitIteratorWithOpts(eng, IteratorOpts{
		Range:   Range{Min: min, Max: max, Type: rtype},
		Limit:   Limit{Offset: 0, Count: -1},
		Reverse: reverse,
	})
}

type RangeLimitedIterator struct {
	Iterator
	l       Limit
	r       Range
	step    int
	reverse bool
}

func (it *RangeLimitedIterator) Valid() bool {
	if it.l.Offset < 0 {
		return false
	}
	if it.l.Count >= 0 && it.step >= it.l.Count {
		return false
	}
	if !it.Iterator.Valid() {
		return false
	}
	if it.reverse {
		return it.r.aboveMin(it.Iterator.RefKey())
	}
	return it.r.belowMax(it.Iterator.RefKey())
}

func (it *RangeLimitedIterator) Next() {
	it.step++
	it.advance()
}

func (it *RangeLimitedIterator) advance() {
	if it.reverse {
		it.Iterator.Prev()
	} else {
		it.Iterator.Next()
	}
}

func newRangeLimitIterator(i Iterator, r Range, l Limit, reverse bool) *RangeLimitedIterator {
	it := &RangeLimitedIterator{
		Iterator: i,
		l:        l,
		r:        r,
		reverse:  reverse,
	}
	if l.Offset < 0 {
		return it
	}
	if reverse {
		it.seekLast()
	} else {
		it.seekFirst()
	}
	for n := 0; n < l.Offset && it.Iterator.Valid(); n++ {
		it.advance()
	}
	return it
}

func (it *RangeLimitedIterator) seekFirst() {
	r := &it.r
	if r.Min == nil {
		it.Iterator.SeekToFirst()
		return
	}
	it.Iterator.Seek(r.Min)
	if r.leftOpen() && it.Iterator.Valid() && bytes.Equal(it.Iterator.RefKey(), r.Min) {
		it.Iterator.Next()
	}
}

func (it *RangeLimitedIterator) seekLast() {
	r := &it.r
	if r.Max == nil {
		it.Iterator.SeekToLast()
		return
	}
	it.Iterator.SeekForPrev(r.Max)
	if !it.Iterator.Valid() {
		it.Iterator.SeekToLast()
		if it.Iterator.Valid() && bytes.Compare(it.Iterator.RefKey(), r.Max) > 0 {
			dbLog.Infof("iterator last key %v is beyond the range max %v", it.Iterator.RefKey(), r.Max)
		}
	}
	if r.rightOpen() && it.Iterator.Valid() && bytes.Equal(it.Iterator.RefKey(), r.Max) {
		it.Iterator.Prev()
	}
}
