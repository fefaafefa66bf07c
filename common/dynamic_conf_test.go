package common

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDumpDynamicConf(t *testing.T) {
	assert.Equal(t, []string{
		"cost_stats_level:0",
		"max_add_points:1024",
		"max_range_scan_keys:1048576",
		"slow_query_ms:100",
		"test_str:test_str",
		"verify_in_scan:1",
	}, DumpDynamicConf())
}

func TestGetIntDynamicConf(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want int
	}{
		{"get default max_add_points", ConfMaxAddPoints, 1024},
		{"get changed max_add_points", ConfMaxAddPoints, 2},
		{"get non exist", "noexist", 0},
		{"get after set non exist", "noexist-set", 0},
	}
	changedCalled := 0
	RegisterConfChangedHandler(ConfMaxAddPoints, func(nv interface{}) {
		_, ok := nv.(int)
		assert.True(t, ok)
		changedCalled++
	})
	defer changedHandler.Delete(ConfMaxAddPoints)
	defer SetIntDynamicConf(ConfMaxAddPoints, 1024)
	SetIntDynamicConf("noexist-set", 2)
	assert.False(t, IsIntDynamicConf("noexist-set"))
	assert.True(t, IsIntDynamicConf(ConfMaxAddPoints))
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetIntDynamicConf(tt.key))
			SetIntDynamicConf(ConfMaxAddPoints, 2)
			assert.Equal(t, i+1, changedCalled)
		})
	}
}

func TestGetStrDynamicConf(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"get default test_str", "test_str", "test_str"},
		{"get changed test_str", "test_str", "test_str_changed"},
		{"get non exist", "noexist", ""},
		{"get after set non exist", "noexist-set", "set-noexist"},
	}
	changedCalled := 0
	RegisterConfChangedHandler("test_str", func(nv interface{}) {
		_, ok := nv.(string)
		assert.True(t, ok)
		changedCalled++
	})
	defer changedHandler.Delete("test_str")
	defer SetStrDynamicConf("test_str", "test_str")
	SetStrDynamicConf("noexist-set", "set-noexist")
	defer strConfMap.Delete("noexist-set")
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetStrDynamicConf(tt.key))
			SetStrDynamicConf("test_str", "test_str_changed")
			assert.Equal(t, i+1, changedCalled)
		})
	}
}

func TestIsConfSetted(t *testing.T) {
	tests := []struct {
		pre  func()
		name string
		key  string
		want bool
	}{
		{nil, "check default slow_query_ms", ConfSlowQueryMs, true},
		{func() { SetIntDynamicConf(ConfSlowQueryMs, 0) }, "check empty slow_query_ms", ConfSlowQueryMs, false},
		{nil, "check non exist", "noexist", false},
		{nil, "check empty str conf", "empty_str", false},
		{nil, "check empty int conf", ConfCostStatsLevel, false},
		{func() { SetStrDynamicConf("noexist-set-str", "v") }, "check after set non exist str", "noexist-set-str", true},
	}
	defer SetIntDynamicConf(ConfSlowQueryMs, 100)
	SetStrDynamicConf("empty_str", "")
	defer strConfMap.Delete("empty_str")
	defer strConfMap.Delete("noexist-set-str")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.pre != nil {
				tt.pre()
			}
			assert.Equal(t, tt.want, IsConfSetted(tt.key))
		})
	}
}

func TestConfRace(t *testing.T) {
	var wg sync.WaitGroup
	defer SetIntDynamicConf(ConfSlowQueryMs, 100)
	defer SetIntDynamicConf(ConfVerifyInScan, 1)
	defer SetStrDynamicConf("test_str", "test_str")
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100000; i++ {
			GetIntDynamicConf(ConfSlowQueryMs)
			GetIntDynamicConf(ConfVerifyInScan)
			GetStrDynamicConf("test_str")
			GetIntDynamicConf("noexist")
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100000; i++ {
			SetIntDynamicConf(ConfSlowQueryMs, i)
			SetIntDynamicConf(ConfVerifyInScan, i%2)
			SetStrDynamicConf("test_str", strconv.Itoa(i))
			SetIntDynamicConf("noexist", i)
		}
	}()
	wg.Wait()
}
