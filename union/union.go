// Package union merges result iterators ordered by document id.
package union

import (
	"container/heap"
	"errors"

	"github.com/youzan/zangeo/index"
)

var errNoIterators = errors.New("no iterators to union")

type item struct {
	it  index.Iterator
	cur index.Result
	// maintained by the heap.Interface methods
	index int
}

// iterHeap is a min heap of iterators by their current document id.
type iterHeap []*item

func (h iterHeap) Len() int { return len(h) }

func (h iterHeap) Less(i, j int) bool {
	return h[i].cur.DocID() < h[j].cur.DocID()
}

func (h iterHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *iterHeap) Push(x interface{}) {
	n := len(*h)
	it := x.(*item)
	it.index = n
	*h = append(*h, it)
}

func (h *iterHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[0 : n-1]
	return it
}

// UnionIterator yields the results of all its iterators by ascending
// document id. With dedupe the results of one document from all the
// iterators are merged into one *index.AggregateResult, otherwise every
// result is returned in turn.
type UnionIterator struct {
	its     []index.Iterator
	h       iterHeap
	dedupe  bool
	qt      index.QueryNodeType
	cur     index.Result
	err     error
	started bool
	closed  bool
}

func NewUnionIterator(its []index.Iterator, dedupe bool, qt index.QueryNodeType) *UnionIterator {
	return &UnionIterator{
		its:    its,
		h:      make(iterHeap, 0, len(its)),
		dedupe: dedupe,
		qt:     qt,
	}
}

func (u *UnionIterator) init() {
	u.started = true
	for _, it := range u.its {
		if it.Next() {
			heap.Push(&u.h, &item{it: it, cur: it.Current()})
		} else if err := it.Err(); err != nil && u.err == nil {
			u.err = err
		}
	}
}

// advance moves the top iterator to its next result.
func (u *UnionIterator) advance() {
	top := u.h[0]
	if top.it.Next() {
		top.cur = top.it.Current()
		heap.Fix(&u.h, 0)
		return
	}
	if err := top.it.Err(); err != nil && u.err == nil {
		u.err = err
	}
	heap.Pop(&u.h)
}

func (u *UnionIterator) Next() bool {
	if u.closed {
		return false
	}
	if !u.started {
		u.init()
	}
	if u.h.Len() == 0 {
		u.cur = nil
		return false
	}
	top := u.h[0]
	if !u.dedupe {
		u.cur = top.cur
		u.advance()
		return true
	}
	id := top.cur.DocID()
	agg := &index.AggregateResult{ID: id, Type: u.qt}
	for u.h.Len() > 0 && u.h[0].cur.DocID() == id {
		agg.Children = append(agg.Children, u.h[0].cur)
		u.advance()
	}
	u.cur = agg
	return true
}

func (u *UnionIterator) Current() index.Result {
	return u.cur
}

func (u *UnionIterator) Err() error {
	return u.err
}

// Len is the sum of the estimations of the iterators.
func (u *UnionIterator) Len() int {
	n := 0
	for _, it := range u.its {
		n += it.Len()
	}
	return n
}

func (u *UnionIterator) Close() {
	if u.closed {
		return
	}
	u.closed = true
	for _, it := range u.its {
		it.Close()
	}
	u.h = nil
	u.cur = nil
}

// Unioner creates union iterators.
type Unioner struct {
	// MaxIterators limits the iterators in one union, 0 is unlimited.
	MaxIterators int
}

func (un *Unioner) Union(its []index.Iterator, dedupe bool, qt index.QueryNodeType) (index.Iterator, error) {
	if len(its) == 0 {
		return nil, errNoIterators
	}
	if un.MaxIterators > 0 && len(its) > un.MaxIterators {
		return nil, errors.New("too many iterators to union")
	}
	return NewUnionIterator(its, dedupe, qt), nil
}
