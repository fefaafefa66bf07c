package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// unit is ms
	QueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geo_query_latency",
		Help:    "geo query latency",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	}, []string{"field", "type"})
	// unit is ms
	WriteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geo_write_latency",
		Help:    "geo index write latency",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	}, []string{"field"})

	GeoRangeCnt = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geo_range_cnt",
		Help:    "non degenerate geohash ranges used by a geo filter",
		Buckets: prometheus.LinearBuckets(0, 1, 10),
	}, []string{"type"})

	CandidateCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geo_candidate_cnt",
		Help: "documents returned by the geohash range scans",
	}, []string{"field", "type"})
	MatchCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geo_match_cnt",
		Help: "documents left after the exact containment check",
	}, []string{"field", "type"})

	IndexLookupErrCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geo_index_lookup_err_cnt",
		Help: "numeric range lookups failed while building a geo iterator",
	}, []string{"field"})

	CacheCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geo_range_cache_cnt",
		Help: "range decomposition cache lookups",
	}, []string{"result"})

	SlowQuery100msCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slow_query_100ms_cnt",
		Help: "slow 100ms counter for geo queries",
	}, []string{"field", "cmd"})
	SlowQuery10msCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slow_query_10ms_cnt",
		Help: "slow 10ms counter for geo queries",
	}, []string{"field", "cmd"})

	ErrorCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "error_cnt",
		Help: "error counter for some useful kinds of internal error",
	}, []string{"field", "error_info"})

	EventCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_cnt",
		Help: "the important event counter for internal event",
	}, []string{"field", "event_name"})
)
