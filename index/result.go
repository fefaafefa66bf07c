// Package index defines what the geo predicate engine consumes from the
// secondary index: result nodes, result iterators, numeric range filters,
// range scans and union composition.
package index

type DocID uint64

// QueryNodeType tags the query node an iterator was created for.
type QueryNodeType int

const (
	QueryNodeNumeric QueryNodeType = iota
	QueryNodeUnion
	QueryNodeGeo
)

func (t QueryNodeType) String() string {
	switch t {
	case QueryNodeNumeric:
		return "NUMERIC"
	case QueryNodeUnion:
		return "UNION"
	case QueryNodeGeo:
		return "GEO"
	default:
		return "UNKNOWN"
	}
}

// Result is one node yielded by an iterator, either a *NumericResult leaf
// or an *AggregateResult holding child nodes of the same document.
type Result interface {
	DocID() DocID
	result()
}

// NumericResult is a single indexed value of a document.
type NumericResult struct {
	ID    DocID
	Value float64
}

func (r *NumericResult) DocID() DocID { return r.ID }
func (r *NumericResult) result()      {}

// AggregateResult groups the results of one document, such as the values
// of a multi valued field or the hits from several merged iterators.
type AggregateResult struct {
	ID       DocID
	Type     QueryNodeType
	Children []Result
}

func (r *AggregateResult) DocID() DocID { return r.ID }
func (r *AggregateResult) result()      {}

// Walk calls fn for every numeric leaf under r until fn returns false.
// It returns false if the walk was stopped.
func Walk(r Result, fn func(*NumericResult) bool) bool {
	switch n := r.(type) {
	case *NumericResult:
		return fn(n)
	case *AggregateResult:
		for _, c := range n.Children {
			if !Walk(c, fn) {
				return false
			}
		}
	}
	return true
}
