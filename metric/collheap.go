package metric

import (
	"container/heap"
	"sort"
	"sync"
)

const (
	minCandidatesInHeap = 32
	DefaultHeapCapacity = 100
)

// LargeQueries keeps the query shapes returning the most candidates.
var LargeQueries = NewLargeQueryHeap(DefaultHeapCapacity)

// LargeQuery is the peak seen for one query shape.
type LargeQuery struct {
	Shape string `json:"shape"`
	// the query which hit the peak
	Query      string `json:"query"`
	Candidates int    `json:"candidates"`
	Matches    int    `json:"matches"`
	Hits       int    `json:"hits"`

	index int
}

// Precision is the part of the candidates which matched.
func (lq *LargeQuery) Precision() float64 {
	if lq.Candidates == 0 {
		return 0
	}
	return float64(lq.Matches) / float64(lq.Candidates)
}

// queryHeap is a min heap on the peak candidates, the smallest shape is
// evicted first.
type queryHeap []*LargeQuery

func (h queryHeap) Len() int { return len(h) }

func (h queryHeap) Less(i, j int) bool {
	return h[i].Candidates < h[j].Candidates
}

func (h queryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *queryHeap) Push(x interface{}) {
	lq := x.(*LargeQuery)
	lq.index = len(*h)
	*h = append(*h, lq)
}

func (h *queryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	lq := old[n-1]
	old[n-1] = nil
	lq.index = -1
	*h = old[:n-1]
	return lq
}

// LargeQueryHeap keeps at most capacity shapes whose queries returned at
// least minCandidatesInHeap candidates.
type LargeQueryHeap struct {
	l        sync.Mutex
	h        queryHeap
	shapes   map[string]*LargeQuery
	capacity int
}

func NewLargeQueryHeap(capacity int) *LargeQueryHeap {
	return &LargeQueryHeap{
		shapes:   make(map[string]*LargeQuery),
		capacity: capacity,
	}
}

// Update records a query of the shape. Small queries only count as hits
// of a shape already kept.
func (lqh *LargeQueryHeap) Update(shape string, query string, candidates int, matches int) {
	lqh.l.Lock()
	defer lqh.l.Unlock()
	if lq, ok := lqh.shapes[shape]; ok {
		lq.Hits++
		if candidates > lq.Candidates {
			lq.Query = query
			lq.Candidates = candidates
			lq.Matches = matches
			heap.Fix(&lqh.h, lq.index)
		}
		return
	}
	if candidates < minCandidatesInHeap || lqh.capacity <= 0 {
		return
	}
	if lqh.h.Len() >= lqh.capacity {
		if lqh.h[0].Candidates >= candidates {
			return
		}
		evicted := heap.Pop(&lqh.h).(*LargeQuery)
		delete(lqh.shapes, evicted.Shape)
	}
	lq := &LargeQuery{
		Shape:      shape,
		Query:      query,
		Candidates: candidates,
		Matches:    matches,
		Hits:       1,
	}
	heap.Push(&lqh.h, lq)
	lqh.shapes[shape] = lq
}

// Top returns the kept shapes, the largest first.
func (lqh *LargeQueryHeap) Top() []LargeQuery {
	lqh.l.Lock()
	top := make([]LargeQuery, 0, len(lqh.h))
	for _, lq := range lqh.h {
		top = append(top, *lq)
	}
	lqh.l.Unlock()
	sort.Slice(top, func(i, j int) bool {
		if top[i].Candidates == top[j].Candidates {
			return top[i].Shape < top[j].Shape
		}
		return top[i].Candidates > top[j].Candidates
	})
	return top
}

func (lqh *LargeQueryHeap) Len() int {
	lqh.l.Lock()
	defer lqh.l.Unlock()
	return len(lqh.h)
}

func (lqh *LargeQueryHeap) Clear() {
	lqh.l.Lock()
	lqh.h = nil
	lqh.shapes = make(map[string]*LargeQuery)
	lqh.l.Unlock()
}
