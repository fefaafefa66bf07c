// Package slow formats the slow logs of index writes and geo queries. The
// slow log level controls how much is logged.
package slow

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/youzan/zangeo/common"
)

const (
	candidatesMinForLog = 128
	candidatesLarge     = 5000
	indexWriteSlow      = time.Millisecond * 100
)

var sl = common.NewLevelLogger(common.LOG_INFO, common.NewGLogger())

func SetLogger(level int32, logger common.Logger) {
	sl.SetLevel(level)
	sl.Logger = logger
}

var slowLogLevel int32

// ChangeSlowLogLevel sets the slow log level, a negative level disables
// all slow logs.
func ChangeSlowLogLevel(lv int) {
	atomic.StoreInt32(&slowLogLevel, int32(lv))
}

func slowLogLv() int32 {
	return atomic.LoadInt32(&slowLogLevel)
}

type SlowLogInfo struct {
	Scope string
	Key   string
	Note  string
}

func NewSlowLogInfo(scope string, key string, note string) SlowLogInfo {
	return SlowLogInfo{
		Scope: scope,
		Key:   key,
		Note:  note,
	}
}

func LogSlowIndexWrite(cost time.Duration, si SlowLogInfo) (string, bool) {
	if slowLogLv() < 0 {
		return "", false
	}

	if cost > indexWriteSlow || slowLogLv() > common.LOG_DETAIL ||
		(slowLogLv() >= common.LOG_INFO && cost > indexWriteSlow/2) {
		str := fmt.Sprintf("[SLOW_LOGS] index slow write in scope %v, cost: %v, key: %v, note: %v",
			si.Scope, cost, si.Key, si.Note)

		sl.InfoDepth(1, str)
		return str, true
	}
	return "", false
}

// LogSlowQuery logs a query costing at least thres, thres <= 0 only logs at
// the detail level.
func LogSlowQuery(cost time.Duration, thres time.Duration, si SlowLogInfo) (string, bool) {
	if slowLogLv() < 0 {
		return "", false
	}
	if (thres > 0 && cost >= thres) || slowLogLv() > common.LOG_DETAIL {
		str := fmt.Sprintf("[SLOW_LOGS] slow geo query in scope %v, cost: %v, filter: %v, note: %v",
			si.Scope, cost, si.Key, si.Note)
		sl.InfoDepth(1, str)
		return str, true
	}
	return "", false
}

func LogSlowForSteps(thres time.Duration, lvFor int32, si SlowLogInfo, costList ...time.Duration) (string, bool) {
	if len(costList) == 0 {
		return "", false
	}
	if slowLogLv() < 0 {
		return "", false
	}
	if costList[len(costList)-1] > thres && slowLogLv() >= int32(lvFor) {
		str := fmt.Sprintf("[SLOW_LOGS] steps slow in scope %v, cost list: %v, note: %v",
			si.Scope, costList, si.Note)
		sl.InfoDepth(1, str)
		return str, true
	}
	return "", false
}

// LogLargeCandidates logs a query whose range scans returned many
// documents.
func LogLargeCandidates(sz int, si SlowLogInfo) (string, bool) {
	if slowLogLv() < 0 {
		return "", false
	}
	if sz < candidatesMinForLog {
		return "", false
	}
	if sz >= candidatesLarge {
		str := fmt.Sprintf("[SLOW_LOGS] large candidates in scope %v, size: %v, filter: %v, note: %v",
			si.Scope, sz, si.Key, si.Note)
		sl.InfoDepth(1, str)
		return str, true
	}
	if slowLogLv() >= common.LOG_DETAIL ||
		(slowLogLv() >= common.LOG_INFO && sz > candidatesMinForLog*4) ||
		(slowLogLv() >= common.LOG_DEBUG && sz > candidatesMinForLog*2) {
		str := fmt.Sprintf("[SLOW_LOGS] maybe large candidates in scope %v, size: %v, filter: %v, note: %v",
			si.Scope, sz, si.Key, si.Note)
		sl.InfoDepth(1, str)
		return str, true
	}
	return "", false
}
