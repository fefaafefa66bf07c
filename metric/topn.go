package metric

// hot queried fields
// use (LRU) for topn hot fields

import (
	"sort"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/spaolacci/murmur3"
)

type HKeyInfo struct {
	Cnt int32
}

func (hki *HKeyInfo) Inc() {
	atomic.AddInt32(&hki.Cnt, 1)
}

const (
	defaultTopnBucketSize = 2
	maxTopnInBucket       = 16
	defaultSampleRate     = 3
)

var TopnHotFields = NewTopNHot(defaultSampleRate)

type topNBucket struct {
	hotQueryKeys *lru.ARCCache
	sampleCnt    int64
	sampleRate   int64
}

func newTopNBucket(sampleRate int64) *topNBucket {
	l, err := lru.NewARC(maxTopnInBucket)
	if err != nil {
		panic(err)
	}
	if sampleRate <= 0 {
		sampleRate = 1
	}
	return &topNBucket{
		hotQueryKeys: l,
		sampleRate:   sampleRate,
	}
}

func handleTopnHit(hotKeys *lru.ARCCache, k []byte) *HKeyInfo {
	item, ok := hotKeys.Get(string(k))
	var hki *HKeyInfo
	if ok {
		hki = item.(*HKeyInfo)
		hki.Inc()
	} else {
		// if concurrent add, just ignore will be ok
		hki = &HKeyInfo{
			Cnt: 1,
		}
		hotKeys.Add(string(k), hki)
	}
	return hki
}

func (b *topNBucket) query(k []byte) {
	c := atomic.AddInt64(&b.sampleCnt, 1)
	if c%b.sampleRate != 0 {
		return
	}
	handleTopnHit(b.hotQueryKeys, k)
}

func (b *topNBucket) Clear() {
	b.hotQueryKeys.Purge()
}

func (b *topNBucket) Keys() []interface{} {
	return b.hotQueryKeys.Keys()
}

func (b *topNBucket) Peek(key interface{}) *HKeyInfo {
	v, ok := b.hotQueryKeys.Peek(key)
	if !ok {
		return nil
	}
	item, ok := v.(*HKeyInfo)
	if !ok {
		return nil
	}
	return item
}

// TopNHot samples the queried fields and keeps the most queried ones.
type TopNHot struct {
	hotKeys [defaultTopnBucketSize]*topNBucket
	enabled int32
}

func NewTopNHot(sampleRate int64) *TopNHot {
	top := &TopNHot{
		enabled: 1,
	}
	for i := 0; i < len(top.hotKeys); i++ {
		top.hotKeys[i] = newTopNBucket(sampleRate)
	}
	return top
}

// Clear will clear all history lru data. Period reset can make sure
// some new data can be refreshed to lru
func (tnh *TopNHot) Clear() {
	for _, b := range tnh.hotKeys {
		b.Clear()
	}
}

func (tnh *TopNHot) isEnabled() bool {
	return atomic.LoadInt32(&tnh.enabled) > 0
}

func (tnh *TopNHot) Enable(on bool) {
	if on {
		atomic.StoreInt32(&tnh.enabled, 1)
	} else {
		atomic.StoreInt32(&tnh.enabled, 0)
	}
}

func (tnh *TopNHot) getBucket(k []byte) *topNBucket {
	hk := murmur3.Sum64(k)
	return tnh.hotKeys[hk%uint64(len(tnh.hotKeys))]
}

func (tnh *TopNHot) HitQuery(k []byte) {
	if !tnh.isEnabled() {
		return
	}
	if len(k) == 0 {
		return
	}
	tnh.getBucket(k).query(k)
}

type TopNInfo struct {
	Key string
	Cnt int32
}

type topnList []TopNInfo

func (t topnList) Len() int {
	return len(t)
}
func (t topnList) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
}
func (t topnList) Less(i, j int) bool {
	if t[i].Cnt == t[j].Cnt {
		return t[i].Key < t[j].Key
	}
	return t[i].Cnt < t[j].Cnt
}

// GetTopNQueries returns the hot keys by ascending hit count.
func (tnh *TopNHot) GetTopNQueries() []TopNInfo {
	if !tnh.isEnabled() {
		return nil
	}
	hks := make(topnList, 0, len(tnh.hotKeys))
	for _, b := range tnh.hotKeys {
		keys := b.Keys()
		for _, key := range keys {
			v := b.Peek(key)
			if v == nil {
				continue
			}
			hks = append(hks, TopNInfo{Key: key.(string), Cnt: atomic.LoadInt32(&v.Cnt)})
		}
	}
	sort.Sort(hks)
	return hks
}
