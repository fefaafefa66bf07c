// Package search answers geo filters against a numeric index: it builds
// the geohash range iterator, verifies every candidate and collects the
// matching documents.
package search

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/geo"
	"github.com/youzan/zangeo/index"
	"github.com/youzan/zangeo/metric"
	"github.com/youzan/zangeo/numindex"
	"github.com/youzan/zangeo/settings"
	"github.com/youzan/zangeo/slow"
	"github.com/youzan/zangeo/union"
)

var sLog = common.NewLevelLogger(common.LOG_INFO, common.NewDefaultLogger("search"))

func SetLogLevel(level int32) {
	sLog.SetLevel(level)
}

func SetLogger(level int32, logger common.Logger) {
	sLog.SetLevel(level)
	sLog.Logger = logger
}

type Result struct {
	// documents returned by the range scans
	Candidates *roaring64.Bitmap
	// documents inside the filter
	Matches *roaring64.Bitmap
	// minimal distance in meters of the matches to the circle centre,
	// only filled on request for circle filters
	Distances map[uint64]float64
}

type Searcher struct {
	idx          *numindex.NumericIndex
	unioner      index.Unioner
	cache        *RangeCache
	verifyInScan int32
	slowQueryMs  int64
}

func NewSearcher(idx *numindex.NumericIndex) (*Searcher, error) {
	s := &Searcher{
		idx:         idx,
		unioner:     &union.Unioner{MaxIterators: geo.GeoRangeCount},
		slowQueryMs: int64(settings.Soft.SlowQueryMs),
	}
	s.SetVerifyInScan(settings.Soft.VerifyInScan)
	if settings.Soft.RangeCacheSize > 0 {
		c, err := NewRangeCache(int(settings.Soft.RangeCacheSize))
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

func (s *Searcher) Index() *numindex.NumericIndex {
	return s.idx
}

func (s *Searcher) Cache() *RangeCache {
	return s.cache
}

// SetVerifyInScan changes whether the range scans check the indexed values
// against the filter themselves.
func (s *Searcher) SetVerifyInScan(on bool) {
	v := int32(0)
	if on {
		v = 1
	}
	atomic.StoreInt32(&s.verifyInScan, v)
}

func (s *Searcher) IsVerifyInScan() bool {
	return atomic.LoadInt32(&s.verifyInScan) == 1
}

// SetSlowQueryMs changes the cost above which a query is logged, 0 disables
// the log.
func (s *Searcher) SetSlowQueryMs(ms int64) {
	atomic.StoreInt64(&s.slowQueryMs, ms)
}

// Search returns the documents inside the filter. The caller keeps owning
// the filter.
func (s *Searcher) Search(gf *geo.GeoFilter, withDist bool) (*Result, error) {
	start := time.Now()
	if err := gf.Validate(); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Fill(gf)
	}
	ctx := &geo.IndexContext{
		Scanner: s.idx,
		Unioner: s.unioner,
	}
	if s.IsVerifyInScan() {
		reg := geo.NewRegistry()
		ref := reg.Register(gf)
		defer reg.Release(ref)
		ctx.Registry = reg
	}
	it, err := geo.NewGeoRangeIterator(ctx, gf)
	buildCost := time.Since(start)
	if err != nil {
		metric.ErrorCnt.WithLabelValues(gf.Property, "build_geo_iterator").Inc()
		sLog.Debugf("build geo iterator for %v failed: %v", gf, err)
		return nil, err
	}
	if lerr := gf.LookupErr(); lerr != nil {
		// a skipped range may hold matches
		if it != nil {
			it.Close()
		}
		metric.ErrorCnt.WithLabelValues(gf.Property, "skip_geo_range").Inc()
		sLog.Infof("geo ranges of %v not scanned: %v", gf, lerr)
		return nil, &common.QueryError{
			Code:  common.QueryErrIndexLookup,
			Msg:   "Could not scan every geo range: " + lerr.Error(),
			Cause: lerr,
		}
	}
	res := &Result{
		Candidates: roaring64.New(),
		Matches:    roaring64.New(),
	}
	if withDist && gf.Type == geo.GeoCircle {
		res.Distances = make(map[uint64]float64)
	}
	if it != nil {
		defer it.Close()
		for it.Next() {
			r := it.Current()
			id := uint64(r.DocID())
			res.Candidates.Add(id)
			if !gf.CheckResult(r) {
				continue
			}
			res.Matches.Add(id)
			if res.Distances != nil {
				res.Distances[id] = minDistance(gf, r)
			}
		}
		if err := it.Err(); err != nil {
			metric.ErrorCnt.WithLabelValues(gf.Property, "scan_geo_iterator").Inc()
			sLog.Warningf("read geo iterator for %v failed: %v", gf, err)
			return nil, &common.QueryError{
				Code:  common.QueryErrIndexLookup,
				Msg:   "Error reading geo index: " + err.Error(),
				Cause: err,
			}
		}
	}

	typ := gf.Type.String()
	metric.CandidateCnt.WithLabelValues(gf.Property, typ).Add(float64(res.Candidates.GetCardinality()))
	metric.MatchCnt.WithLabelValues(gf.Property, typ).Add(float64(res.Matches.GetCardinality()))
	metric.TopnHotFields.HitQuery([]byte(gf.Property))
	metric.LargeQueries.Update(queryShape(gf), gf.String(), int(res.Candidates.GetCardinality()),
		int(res.Matches.GetCardinality()))
	cost := time.Since(start)
	metric.QueryLatency.WithLabelValues(gf.Property, typ).Observe(float64(cost.Milliseconds()))
	s.checkSlow(gf, res, buildCost, cost)
	return res, nil
}

func (s *Searcher) checkSlow(gf *geo.GeoFilter, res *Result, buildCost time.Duration, cost time.Duration) {
	ms := cost.Milliseconds()
	cmd := gf.Type.String()
	if ms >= 100 {
		metric.SlowQuery100msCnt.WithLabelValues(gf.Property, cmd).Inc()
	} else if ms >= 10 {
		metric.SlowQuery10msCnt.WithLabelValues(gf.Property, cmd).Inc()
	}
	candidates := res.Candidates.GetCardinality()
	matches := res.Matches.GetCardinality()
	si := slow.NewSlowLogInfo(gf.Property, gf.String(), fmt.Sprintf("candidates %v, matches %v", candidates, matches))
	thres := time.Duration(atomic.LoadInt64(&s.slowQueryMs)) * time.Millisecond
	slow.LogSlowQuery(cost, thres, si)
	slow.LogLargeCandidates(int(candidates), si)
	slow.LogSlowForSteps(thres/2, common.LOG_DEBUG, si, buildCost, cost)
}

// queryShape groups the queries on a property by area: the corners or the
// centre rounded to 0.1 degree, and the radius rounded up to a power of two
// kilometers.
func queryShape(gf *geo.GeoFilter) string {
	if gf.Type == geo.GeoBox {
		return fmt.Sprintf("%s:box:%.1f,%.1f,%.1f,%.1f", gf.Property, gf.Lon, gf.Lat, gf.LonBox, gf.LatBox)
	}
	km := math.Max(gf.RadiusMeters()/1000, 1)
	return fmt.Sprintf("%s:circle:%.1f,%.1f:%vkm", gf.Property, gf.Lon, gf.Lat, math.Exp2(math.Ceil(math.Log2(km))))
}

func minDistance(gf *geo.GeoFilter, r index.Result) float64 {
	dist := math.Inf(1)
	radius := gf.RadiusMeters()
	index.Walk(r, func(n *index.NumericResult) bool {
		d, ok := gf.Distance(n.Value)
		if ok && d <= radius && d < dist {
			dist = d
		}
		return true
	})
	return dist
}
