package search

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/youzan/zangeo/geo"
	"github.com/youzan/zangeo/metric"
)

// RangeCache keeps the geohash ranges of recent geo filters. The ranges
// only depend on the shape, not on the property.
type RangeCache struct {
	c *lru.Cache
}

func NewRangeCache(size int) (*RangeCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &RangeCache{c: c}, nil
}

func shapeKey(gf *geo.GeoFilter) string {
	if gf.Type == geo.GeoBox {
		return fmt.Sprintf("box:%v:%v:%v:%v", gf.Lon, gf.Lat, gf.LonBox, gf.LatBox)
	}
	return fmt.Sprintf("circle:%v:%v:%v", gf.Lon, gf.Lat, gf.RadiusMeters())
}

// Fill sets the ranges of a validated filter from the cache, computing
// and caching them on a miss.
func (rc *RangeCache) Fill(gf *geo.GeoFilter) {
	key := shapeKey(gf)
	if v, ok := rc.c.Get(key); ok {
		metric.CacheCnt.WithLabelValues("hit").Inc()
		cached := v.([]geo.GeoHashRange)
		ranges := make([]geo.GeoHashRange, len(cached))
		copy(ranges, cached)
		gf.SetRanges(ranges)
		return
	}
	metric.CacheCnt.WithLabelValues("miss").Inc()
	ranges := gf.Ranges()
	cached := make([]geo.GeoHashRange, len(ranges))
	copy(cached, ranges)
	rc.c.Add(key, cached)
}

func (rc *RangeCache) Len() int {
	return rc.c.Len()
}

func (rc *RangeCache) Purge() {
	rc.c.Purge()
}
