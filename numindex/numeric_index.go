// Package numindex is a numeric range index over an ordered key value
// engine. Each value of a document field is stored as one key ordered by
// value, so a range of values is a range of keys.
package numindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/engine"
	"github.com/youzan/zangeo/index"
	"github.com/youzan/zangeo/settings"
)

var nLog = common.NewLevelLogger(common.LOG_INFO, common.NewDefaultLogger("numindex"))

func SetLogLevel(level int32) {
	nLog.SetLevel(level)
}

func SetLogger(level int32, logger common.Logger) {
	nLog.SetLevel(level)
	nLog.Logger = logger
}

var ErrScanLimit = errors.New("too many keys in the range")

type NumericIndex struct {
	// serialize the read-modify-write of document values
	sync.Mutex
	eng         engine.KVEngine
	maxScanKeys int64
}

func NewNumericIndex(eng engine.KVEngine) *NumericIndex {
	return &NumericIndex{
		eng:         eng,
		maxScanKeys: int64(settings.Soft.MaxRangeScanKeys),
	}
}

// SetMaxScanKeys limits the index keys read by one range scan, 0 means
// unlimited.
func (ni *NumericIndex) SetMaxScanKeys(n int) {
	atomic.StoreInt64(&ni.maxScanKeys, int64(n))
}

func checkField(field string) error {
	if len(field) == 0 || uint64(len(field)) > settings.Static.MaxFieldNameLen || len(field) > math.MaxUint16 {
		return errFieldName
	}
	return nil
}

// Add replaces the values of the document field. Duplicated values are
// stored once.
func (ni *NumericIndex) Add(field string, id index.DocID, values ...float64) error {
	if err := checkField(field); err != nil {
		return err
	}
	uniq := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			return errInvalidValue
		}
		dup := false
		for _, u := range uniq {
			if u == v {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, v)
		}
	}
	if len(uniq) == 0 {
		_, err := ni.Remove(field, id)
		return err
	}

	ni.Lock()
	defer ni.Unlock()
	bfield := []byte(field)
	wb := ni.eng.NewWriteBatch()
	if err := ni.removeValues(wb, bfield, id); err != nil {
		return err
	}
	for _, v := range uniq {
		wb.Put(encodeNumIndexKey(bfield, v, id), nil)
	}
	wb.Put(encodeDocValuesKey(bfield, id), encodeDocValues(uniq))
	return ni.eng.Write(wb)
}

// Remove deletes all the values of the document field. It returns false if
// the document had no values.
func (ni *NumericIndex) Remove(field string, id index.DocID) (bool, error) {
	if err := checkField(field); err != nil {
		return false, err
	}
	ni.Lock()
	defer ni.Unlock()
	bfield := []byte(field)
	wb := ni.eng.NewWriteBatch()
	if err := ni.removeValues(wb, bfield, id); err != nil {
		return false, err
	}
	if wb.Count() == 0 {
		return false, nil
	}
	return true, ni.eng.Write(wb)
}

func (ni *NumericIndex) removeValues(wb engine.WriteBatch, field []byte, id index.DocID) error {
	dk := encodeDocValuesKey(field, id)
	old, err := ni.eng.Get(dk)
	if err != nil {
		return err
	}
	if old == nil {
		return nil
	}
	values, err := decodeDocValues(old)
	if err != nil {
		nLog.Warningf("field %s doc %v has invalid values: %v", field, id, err)
		return err
	}
	for _, v := range values {
		wb.Delete(encodeNumIndexKey(field, v, id))
	}
	wb.Delete(dk)
	return nil
}

// Values returns the values of the document field.
func (ni *NumericIndex) Values(field string, id index.DocID) ([]float64, error) {
	v, err := ni.eng.Get(encodeDocValuesKey([]byte(field), id))
	if err != nil || v == nil {
		return nil, err
	}
	return decodeDocValues(v)
}

// Fields returns the fields having documents, in key order.
func (ni *NumericIndex) Fields() ([]string, error) {
	it, err := ni.eng.GetIterator(engine.IteratorOpts{
		Range: engine.Range{
			Min: []byte{IndexDataType, docValuesDataType},
			Max: []byte{IndexDataType, docValuesDataType + 1},
		},
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()
	fields := make([]string, 0)
	for it.SeekToFirst(); it.Valid(); {
		field, err := decodeDocValuesField(it.RefKey())
		if err != nil {
			nLog.Warningf("invalid doc values key %v: %v", it.RefKey(), err)
			it.Next()
			continue
		}
		fields = append(fields, string(field))
		it.Seek(encodeDocValuesStopKey(field))
	}
	return fields, it.Err()
}

// DocCount returns the number of documents with values in the field.
func (ni *NumericIndex) DocCount(field string) (int, error) {
	it, err := engine.NewDBRangeIterator(ni.eng, encodeDocValuesStartKey([]byte(field)),
		encodeDocValuesStopKey([]byte(field)), common.RangeROpen, false)
	if err != nil {
		return 0, err
	}
	defer it.Close()
	cnt := 0
	for ; it.Valid(); it.Next() {
		cnt++
	}
	return cnt, it.Err()
}

// RangeScan returns the documents having a value matching the filter,
// ordered by document id. A document with several matching values is
// returned as one aggregate of them. Values of a geo derived filter are
// verified against the geo filter if it can be resolved.
func (ni *NumericIndex) RangeScan(nf *index.NumericFilter) (index.Iterator, error) {
	if nf == nil || checkField(nf.Field) != nil {
		return nil, errFieldName
	}
	if math.IsNaN(nf.Min) || math.IsNaN(nf.Max) || nf.Min > nf.Max {
		return nil, nil
	}
	field := []byte(nf.Field)
	it, err := engine.NewDBRangeIterator(ni.eng, encodeNumIndexStartKey(field, nf.Min),
		encodeNumIndexStopKey(field, nf.Max), common.RangeROpen, false)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	docs := make(map[index.DocID][]float64)
	maxScanKeys := atomic.LoadInt64(&ni.maxScanKeys)
	scanned := int64(0)
	for ; it.Valid(); it.Next() {
		scanned++
		if maxScanKeys > 0 && scanned > maxScanKeys {
			return nil, fmt.Errorf("%w: %v", ErrScanLimit, nf)
		}
		_, v, id, err := decodeNumIndexKey(it.RefKey())
		if err != nil {
			nLog.Warningf("scan %v got invalid key %v: %v", nf, it.RefKey(), err)
			continue
		}
		if !nf.Match(v) || !nf.MatchGeo(v) {
			continue
		}
		docs[id] = append(docs[id], v)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	nLog.Debugf("scan %v read %v keys, %v docs", nf, scanned, len(docs))
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]index.DocID, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	results := make([]index.Result, 0, len(ids))
	for _, id := range ids {
		values := docs[id]
		if len(values) == 1 {
			results = append(results, &index.NumericResult{ID: id, Value: values[0]})
			continue
		}
		agg := &index.AggregateResult{ID: id, Type: index.QueryNodeNumeric}
		for _, v := range values {
			agg.Children = append(agg.Children, &index.NumericResult{ID: id, Value: v})
		}
		results = append(results, agg)
	}
	return index.NewListIterator(results), nil
}
