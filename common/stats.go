package common

import (
	"math"
	"sync/atomic"
)

type WriteStats struct {
	// 1, 2, 4, 8, ... points in one write
	PointsStats [16]int64 `json:"points_stats"`
	// <1024us, 2ms, 4ms, 8ms, 16ms, 32ms, 64ms, 128ms, 256ms, 512ms, 1024ms, 2048ms, 4s, 8s
	WriteLatencyStats [16]int64 `json:"write_latency_stats"`
}

func (ws *WriteStats) UpdatePointsStats(points int64) {
	bucket := 0
	if points > 1 {
		bucket = int(math.Log2(float64(points)))
	}
	if bucket >= len(ws.PointsStats) {
		bucket = len(ws.PointsStats) - 1
	}
	atomic.AddInt64(&ws.PointsStats[bucket], 1)
}

func (ws *WriteStats) UpdateLatencyStats(latencyUs int64) {
	bucket := 0
	if latencyUs >= 1024 {
		bucket = int(math.Log2(float64(latencyUs/1000))) + 1
	}
	if bucket >= len(ws.WriteLatencyStats) {
		bucket = len(ws.WriteLatencyStats) - 1
	}
	atomic.AddInt64(&ws.WriteLatencyStats[bucket], 1)
}

func (ws *WriteStats) UpdateWriteStats(points int64, latencyUs int64) {
	ws.UpdatePointsStats(points)
	ws.UpdateLatencyStats(latencyUs)
}

func (ws *WriteStats) Copy() *WriteStats {
	var s WriteStats
	for i := 0; i < len(ws.PointsStats); i++ {
		s.PointsStats[i] = atomic.LoadInt64(&ws.PointsStats[i])
	}
	for i := 0; i < len(ws.WriteLatencyStats); i++ {
		s.WriteLatencyStats[i] = atomic.LoadInt64(&ws.WriteLatencyStats[i])
	}
	return &s
}

type FieldStats struct {
	Name   string `json:"name"`
	DocNum int64  `json:"doc_num"`
}

type ServerStats struct {
	EngType       string       `json:"eng_type"`
	StartTime     int64        `json:"start_time"`
	FieldStats    []FieldStats `json:"field_stats"`
	WriteStats    *WriteStats  `json:"write_stats"`
	RangeCacheLen int          `json:"range_cache_len"`
}
