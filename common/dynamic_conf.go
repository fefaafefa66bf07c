package common

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
)

// query settings which can be changed while running
const (
	ConfSlowQueryMs      = "slow_query_ms"
	ConfVerifyInScan     = "verify_in_scan"
	ConfMaxRangeScanKeys = "max_range_scan_keys"
	ConfMaxAddPoints     = "max_add_points"
	ConfCostStatsLevel   = "cost_stats_level"
)

var intConfMap map[string]*int64
var strConfMap sync.Map
var changedHandler sync.Map

type KeyChangedHandler func(newV interface{})

func init() {
	intConfMap = make(map[string]*int64)
	slowQueryMs := int64(100)
	intConfMap[ConfSlowQueryMs] = &slowQueryMs
	verifyInScan := int64(1)
	intConfMap[ConfVerifyInScan] = &verifyInScan
	maxScanKeys := int64(1024 * 1024)
	intConfMap[ConfMaxRangeScanKeys] = &maxScanKeys
	maxAddPoints := int64(1024)
	intConfMap[ConfMaxAddPoints] = &maxAddPoints
	costLevel := int64(0)
	intConfMap[ConfCostStatsLevel] = &costLevel

	strConfMap.Store("test_str", "test_str")
}

func RegisterConfChangedHandler(key string, h KeyChangedHandler) {
	changedHandler.Store(key, h)
}

func notifyChanged(k string, newV interface{}) {
	v, ok := changedHandler.Load(k)
	if !ok {
		return
	}
	if hd, ok := v.(KeyChangedHandler); ok {
		hd(newV)
	}
}

func DumpDynamicConf() []string {
	cfs := make([]string, 0, len(intConfMap)*2)
	for k, v := range intConfMap {
		iv := atomic.LoadInt64(v)
		cfs = append(cfs, k+":"+strconv.Itoa(int(iv)))
	}
	strConfMap.Range(func(k, v interface{}) bool {
		cfs = append(cfs, fmt.Sprintf("%v:%v", k, v))
		return true
	})
	sort.Strings(cfs)
	return cfs
}

// IsIntDynamicConf reports whether k is one of the integer settings.
func IsIntDynamicConf(k string) bool {
	_, ok := intConfMap[k]
	return ok
}

// SetIntDynamicConf ignores unknown keys.
func SetIntDynamicConf(k string, newV int) {
	v, ok := intConfMap[k]
	if !ok {
		return
	}
	atomic.StoreInt64(v, int64(newV))
	notifyChanged(k, newV)
}

func IsConfSetted(k string) bool {
	if GetIntDynamicConf(k) != 0 {
		return true
	}
	return GetStrDynamicConf(k) != ""
}

func GetIntDynamicConf(k string) int {
	v, ok := intConfMap[k]
	if ok {
		return int(atomic.LoadInt64(v))
	}
	return 0
}

func SetStrDynamicConf(k string, newV string) {
	strConfMap.Store(k, newV)
	notifyChanged(k, newV)
}

func GetStrDynamicConf(k string) string {
	v, ok := strConfMap.Load(k)
	if !ok {
		return ""
	}
	return v.(string)
}
