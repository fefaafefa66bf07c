package geo

import (
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/index"
	"github.com/youzan/zangeo/metric"
)

// IndexContext holds what the iterator builder needs from the index.
type IndexContext struct {
	Scanner index.RangeScanner
	Unioner index.Unioner
	// Registry, if set, lets the numeric scans verify values against the
	// filter while reading.
	Registry *Registry
}

// NewGeoRangeIterator builds the iterator over the candidate documents of a
// validated filter, one numeric range scan per non degenerate range. It
// returns a nil iterator if nothing can match. A failed range lookup is
// treated as an empty range and recorded in LookupErr, a failed union
// releases every iterator already created.
func NewGeoRangeIterator(ctx *IndexContext, gf *GeoFilter) (index.Iterator, error) {
	if err := gf.Validate(); err != nil {
		return nil, err
	}
	ranges := gf.Ranges()
	var ref index.GeoRef
	var resolver index.GeoResolver
	if ctx.Registry != nil {
		ref = ctx.Registry.Register(gf)
		resolver = ctx.Registry
	}

	gf.numericFilters = make([]*index.NumericFilter, 0, GeoRangeCount)
	gf.lookupErrs = nil
	iters := make([]index.Iterator, 0, GeoRangeCount)
	for _, r := range ranges {
		if r.IsDegenerate() {
			continue
		}
		nf := index.NewNumericFilter(gf.Property, r.Min, r.Max, true, true)
		nf.GeoRef = ref
		nf.GeoResolver = resolver
		gf.numericFilters = append(gf.numericFilters, nf)
		it, err := ctx.Scanner.RangeScan(nf)
		if err != nil {
			geoLog.Warningf("range scan %v failed: %v", nf, err)
			metric.IndexLookupErrCnt.WithLabelValues(gf.Property).Inc()
			gf.lookupErrs = append(gf.lookupErrs, err)
			continue
		}
		if it == nil {
			continue
		}
		iters = append(iters, it)
	}
	metric.GeoRangeCnt.WithLabelValues(gf.Type.String()).Observe(float64(len(gf.numericFilters)))

	switch len(iters) {
	case 0:
		return nil, nil
	case 1:
		return iters[0], nil
	}
	it, err := ctx.Unioner.Union(iters, true, index.QueryNodeGeo)
	if err == nil && it == nil {
		err = common.ErrUnexpectError
	}
	if err != nil {
		for _, sub := range iters {
			sub.Close()
		}
		geoLog.Warningf("union of %v ranges for %v failed: %v", len(iters), gf, err)
		return nil, &common.QueryError{
			Code:  common.QueryErrIndexLookup,
			Msg:   "Could not create union iterator for geo filter",
			Cause: err,
		}
	}
	return it, nil
}
