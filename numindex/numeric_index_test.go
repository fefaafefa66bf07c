package numindex

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/engine"
	"github.com/youzan/zangeo/index"
)

func TestMain(m *testing.M) {
	SetLogger(int32(common.LOG_INFO), common.NewDefaultLogger("numindex"))
	engine.SetLogger(int32(common.LOG_WARN), common.NewDefaultLogger("engine"))
	ret := m.Run()
	os.Exit(ret)
}

func testIndexes(t *testing.T, f func(t *testing.T, ni *NumericIndex)) {
	cfgs := []*engine.EngConfig{
		{EngineType: engine.EngTypeMem},
		{EngineType: engine.EngTypeBadger, InMemory: true},
	}
	for _, cfg := range cfgs {
		t.Run(cfg.EngineType, func(t *testing.T) {
			eng, err := engine.NewKVEngine(cfg)
			require.Nil(t, err)
			defer eng.CloseAll()
			f(t, NewNumericIndex(eng))
		})
	}
}

type scanHit struct {
	id     index.DocID
	values []float64
}

func scanAll(t *testing.T, ni *NumericIndex, nf *index.NumericFilter) []scanHit {
	it, err := ni.RangeScan(nf)
	require.Nil(t, err)
	hits := make([]scanHit, 0)
	if it == nil {
		return hits
	}
	defer it.Close()
	for it.Next() {
		h := scanHit{id: it.Current().DocID()}
		index.Walk(it.Current(), func(n *index.NumericResult) bool {
			assert.Equal(t, h.id, n.ID)
			h.values = append(h.values, n.Value)
			return true
		})
		sort.Float64s(h.values)
		hits = append(hits, h)
	}
	assert.Nil(t, it.Err())
	return hits
}

func TestSortableFloat64(t *testing.T) {
	values := []float64{math.Inf(-1), -math.MaxFloat64, -1e10, -1.5, -1, -math.SmallestNonzeroFloat64,
		0, math.SmallestNonzeroFloat64, 1, 1.5, 1e10, math.MaxFloat64, math.Inf(1)}
	for i := 0; i < 100; i++ {
		values = append(values, rand.NormFloat64()*1e6)
	}
	sort.Float64s(values)
	for i, v := range values {
		assert.Equal(t, v, decodeSortableFloat64(encodeSortableFloat64(v)))
		if i > 0 && values[i-1] < v {
			assert.True(t, encodeSortableFloat64(values[i-1]) < encodeSortableFloat64(v), "%v %v", values[i-1], v)
		}
	}
}

func TestNumIndexKey(t *testing.T) {
	k := encodeNumIndexKey([]byte("loc"), -12.5, 42)
	field, v, id, err := decodeNumIndexKey(k)
	assert.Nil(t, err)
	assert.Equal(t, []byte("loc"), field)
	assert.Equal(t, -12.5, v)
	assert.Equal(t, index.DocID(42), id)

	start := encodeNumIndexStartKey([]byte("loc"), -12.5)
	stop := encodeNumIndexStopKey([]byte("loc"), -12.5)
	assert.True(t, bytes.Compare(start, k) < 0)
	assert.True(t, bytes.Compare(k, stop) < 0)
	assert.True(t, bytes.Compare(stop, encodeNumIndexKey([]byte("loc"), -12.4, 0)) < 0)

	_, _, _, err = decodeNumIndexKey(k[:len(k)-1])
	assert.Equal(t, errNumIndexKey, err)
	_, _, _, err = decodeNumIndexKey(encodeDocValuesKey([]byte("loc"), 1))
	assert.Equal(t, errNumIndexKey, err)

	values, err := decodeDocValues(encodeDocValues([]float64{1, -2, 3.5}))
	assert.Nil(t, err)
	assert.Equal(t, []float64{1, -2, 3.5}, values)
	_, err = decodeDocValues([]byte{1, 2, 3})
	assert.Equal(t, errDocValues, err)
}

func TestRangeScan(t *testing.T) {
	testIndexes(t, func(t *testing.T, ni *NumericIndex) {
		require.Nil(t, ni.Add("f", 3, 10))
		require.Nil(t, ni.Add("f", 1, -5))
		require.Nil(t, ni.Add("f", 2, 0))
		require.Nil(t, ni.Add("f", 4, 20))
		require.Nil(t, ni.Add("other", 5, 10))

		hits := scanAll(t, ni, index.NewNumericFilter("f", -5, 10, true, true))
		assert.Equal(t, []scanHit{{1, []float64{-5}}, {2, []float64{0}}, {3, []float64{10}}}, hits)
		hits = scanAll(t, ni, index.NewNumericFilter("f", -5, 10, false, false))
		assert.Equal(t, []scanHit{{2, []float64{0}}}, hits)
		hits = scanAll(t, ni, index.NewNumericFilter("f", math.Inf(-1), math.Inf(1), true, true))
		assert.Equal(t, 4, len(hits))
		hits = scanAll(t, ni, index.NewNumericFilter("f", 11, 19, true, true))
		assert.Equal(t, 0, len(hits))
		hits = scanAll(t, ni, index.NewNumericFilter("f", 10, 5, true, true))
		assert.Equal(t, 0, len(hits))
		hits = scanAll(t, ni, index.NewNumericFilter("missing", 0, 100, true, true))
		assert.Equal(t, 0, len(hits))

		_, err := ni.RangeScan(index.NewNumericFilter("", 0, 1, true, true))
		assert.Equal(t, errFieldName, err)
	})
}

func TestMultiValues(t *testing.T) {
	testIndexes(t, func(t *testing.T, ni *NumericIndex) {
		require.Nil(t, ni.Add("f", 1, 1, 2, 3, 2, 100))
		values, err := ni.Values("f", 1)
		assert.Nil(t, err)
		assert.Equal(t, []float64{1, 2, 3, 100}, values)

		it, err := ni.RangeScan(index.NewNumericFilter("f", 0, 10, true, true))
		require.Nil(t, err)
		require.True(t, it.Next())
		agg, ok := it.Current().(*index.AggregateResult)
		require.True(t, ok)
		assert.Equal(t, index.DocID(1), agg.ID)
		assert.Equal(t, 3, len(agg.Children))
		assert.False(t, it.Next())
		it.Close()

		// replace values
		require.Nil(t, ni.Add("f", 1, 50))
		assert.Equal(t, 0, len(scanAll(t, ni, index.NewNumericFilter("f", 0, 10, true, true))))
		assert.Equal(t, []scanHit{{1, []float64{50}}}, scanAll(t, ni, index.NewNumericFilter("f", 0, 100, true, true)))
	})
}

func TestRemove(t *testing.T) {
	testIndexes(t, func(t *testing.T, ni *NumericIndex) {
		require.Nil(t, ni.Add("f", 1, 1, 2))
		require.Nil(t, ni.Add("f", 2, 2))
		cnt, err := ni.DocCount("f")
		assert.Nil(t, err)
		assert.Equal(t, 2, cnt)

		removed, err := ni.Remove("f", 1)
		assert.Nil(t, err)
		assert.True(t, removed)
		removed, err = ni.Remove("f", 1)
		assert.Nil(t, err)
		assert.False(t, removed)
		assert.Equal(t, []scanHit{{2, []float64{2}}}, scanAll(t, ni, index.NewNumericFilter("f", 0, 10, true, true)))
		values, err := ni.Values("f", 1)
		assert.Nil(t, err)
		assert.Nil(t, values)

		// no values means removal
		require.Nil(t, ni.Add("f", 2))
		cnt, _ = ni.DocCount("f")
		assert.Equal(t, 0, cnt)
	})
}

func TestAddInvalid(t *testing.T) {
	testIndexes(t, func(t *testing.T, ni *NumericIndex) {
		assert.Equal(t, errInvalidValue, ni.Add("f", 1, math.NaN()))
		assert.Equal(t, errFieldName, ni.Add("", 1, 1))
		assert.Equal(t, errFieldName, ni.Add(string(make([]byte, 1000)), 1, 1))
	})
}

func TestScanLimit(t *testing.T) {
	testIndexes(t, func(t *testing.T, ni *NumericIndex) {
		for i := 0; i < 10; i++ {
			require.Nil(t, ni.Add("f", index.DocID(i), float64(i)))
		}
		ni.SetMaxScanKeys(5)
		_, err := ni.RangeScan(index.NewNumericFilter("f", 0, 100, true, true))
		assert.True(t, errors.Is(err, ErrScanLimit))
		assert.Equal(t, 5, len(scanAll(t, ni, index.NewNumericFilter("f", 0, 4, true, true))))
	})
}

type evenResolver struct {
	known index.GeoRef
}

func (r *evenResolver) ContainsGeo(ref index.GeoRef, v float64) (bool, bool) {
	if ref != r.known {
		return false, false
	}
	return int(v)%2 == 0, true
}

func TestRangeScanGeoVerify(t *testing.T) {
	testIndexes(t, func(t *testing.T, ni *NumericIndex) {
		for i := 0; i < 6; i++ {
			require.Nil(t, ni.Add("f", index.DocID(i), float64(i)))
		}
		require.Nil(t, ni.Add("f", 10, 1, 3, 4))
		nf := index.NewNumericFilter("f", 0, 100, true, true)
		nf.GeoRef = 7
		nf.GeoResolver = &evenResolver{known: 7}
		hits := scanAll(t, ni, nf)
		assert.Equal(t, []scanHit{{0, []float64{0}}, {2, []float64{2}}, {4, []float64{4}}, {10, []float64{4}}}, hits)

		// unknown reference keeps every value
		nf.GeoRef = 8
		assert.Equal(t, 7, len(scanAll(t, ni, nf)))
	})
}

func TestFields(t *testing.T) {
	testIndexes(t, func(t *testing.T, ni *NumericIndex) {
		fields, err := ni.Fields()
		require.Nil(t, err)
		assert.Equal(t, 0, len(fields))

		for i := 0; i < 10; i++ {
			require.Nil(t, ni.Add("loc", index.DocID(i), float64(i)))
			require.Nil(t, ni.Add("home", index.DocID(i), float64(i)))
		}
		require.Nil(t, ni.Add("a", 1, 1))
		fields, err = ni.Fields()
		require.Nil(t, err)
		// ordered by name length first
		assert.Equal(t, []string{"a", "loc", "home"}, fields)

		_, err = ni.Remove("a", 1)
		require.Nil(t, err)
		fields, err = ni.Fields()
		require.Nil(t, err)
		assert.Equal(t, []string{"loc", "home"}, fields)
	})
}
