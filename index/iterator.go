package index

import (
	"fmt"
)

// Iterator yields results ordered by ascending document id.
type Iterator interface {
	// Next advances to the next result and reports whether one exists.
	Next() bool
	// Current returns the result Next moved to.
	Current() Result
	// Err returns the error which stopped the iteration, if any.
	Err() error
	// Len returns an estimation of the number of results.
	Len() int
	Close()
}

// GeoRef is a non owning reference from a numeric filter to the geo filter
// it was derived from. Zero means no geo filter.
type GeoRef uint64

// GeoResolver looks up the geo filter behind a GeoRef. ok is false if the
// reference is unknown or was already released.
type GeoResolver interface {
	ContainsGeo(ref GeoRef, v float64) (match bool, ok bool)
}

// NumericFilter describes a numeric range scan on one field.
type NumericFilter struct {
	Field        string
	Min          float64
	Max          float64
	InclusiveMin bool
	InclusiveMax bool
	GeoRef       GeoRef
	// GeoResolver, if set, is asked to verify the values of a geo derived
	// filter during the scan.
	GeoResolver GeoResolver
}

func NewNumericFilter(field string, min, max float64, inclusiveMin, inclusiveMax bool) *NumericFilter {
	return &NumericFilter{
		Field:        field,
		Min:          min,
		Max:          max,
		InclusiveMin: inclusiveMin,
		InclusiveMax: inclusiveMax,
	}
}

// Match reports whether v is inside the filter range.
func (nf *NumericFilter) Match(v float64) bool {
	if nf.InclusiveMin {
		if v < nf.Min {
			return false
		}
	} else if v <= nf.Min {
		return false
	}
	if nf.InclusiveMax {
		return v <= nf.Max
	}
	return v < nf.Max
}

// MatchGeo verifies v against the owning geo filter. Values of filters
// without a resolvable geo filter always match.
func (nf *NumericFilter) MatchGeo(v float64) bool {
	if nf.GeoRef == 0 || nf.GeoResolver == nil {
		return true
	}
	match, ok := nf.GeoResolver.ContainsGeo(nf.GeoRef, v)
	return !ok || match
}

func (nf *NumericFilter) String() string {
	l, r := "(", ")"
	if nf.InclusiveMin {
		l = "["
	}
	if nf.InclusiveMax {
		r = "]"
	}
	return fmt.Sprintf("@%s:%s%v %v%s", nf.Field, l, nf.Min, nf.Max, r)
}

// RangeScanner is a numeric range index. RangeScan may return a nil
// iterator without error if nothing can match.
type RangeScanner interface {
	RangeScan(nf *NumericFilter) (Iterator, error)
}

// Unioner merges iterators into one iterator ordered by document id.
// With dedupe, the results of one document are merged into one
// *AggregateResult tagged with the given type. The returned iterator owns
// the input iterators; on error the caller still owns them.
type Unioner interface {
	Union(its []Iterator, dedupe bool, t QueryNodeType) (Iterator, error)
}

// ListIterator iterates over results already sorted by document id.
type ListIterator struct {
	results []Result
	pos     int
	closed  bool
}

func NewListIterator(results []Result) *ListIterator {
	return &ListIterator{results: results, pos: -1}
}

func (it *ListIterator) Next() bool {
	if it.closed || it.pos+1 >= len(it.results) {
		it.pos = len(it.results)
		return false
	}
	it.pos++
	return true
}

func (it *ListIterator) Current() Result {
	if it.pos < 0 || it.pos >= len(it.results) {
		return nil
	}
	return it.results[it.pos]
}

func (it *ListIterator) Err() error { return nil }
func (it *ListIterator) Len() int   { return len(it.results) }

func (it *ListIterator) Close() {
	it.closed = true
}

func (it *ListIterator) IsClosed() bool {
	return it.closed
}
