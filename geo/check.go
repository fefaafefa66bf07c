package geo

import (
	"github.com/youzan/zangeo/common/geohash"
	"github.com/youzan/zangeo/index"
)

// Distance returns the distance in meters between the circle centre and
// the point encoded in v. ok is false if v is not a geohash.
func (gf *GeoFilter) Distance(v float64) (dist float64, ok bool) {
	lon, lat, ok := DecodeGeoHash(v)
	if !ok {
		return 0, false
	}
	return geohash.GetDistance(gf.Lon, gf.Lat, lon, lat), true
}

// IsWithinRadius reports whether the point encoded in v lies in the circle.
func (gf *GeoFilter) IsWithinRadius(v float64) bool {
	dist, ok := gf.Distance(v)
	if !ok {
		return false
	}
	return dist <= gf.RadiusMeters()
}

// IsWithinBox reports whether the point encoded in v lies in the box.
func (gf *GeoFilter) IsWithinBox(v float64) bool {
	lon, lat, ok := DecodeGeoHash(v)
	if !ok {
		return false
	}
	return lon >= gf.Lon && lon <= gf.LonBox && lat >= gf.Lat && lat <= gf.LatBox
}

// Contains checks v with the test matching the filter type.
func (gf *GeoFilter) Contains(v float64) bool {
	if gf.Type == GeoBox {
		return gf.IsWithinBox(v)
	}
	return gf.IsWithinRadius(v)
}

// CheckResult verifies a result of the geo iterator. An aggregate matches if
// any of its values matches, as a document may hold many points.
func (gf *GeoFilter) CheckResult(r index.Result) bool {
	switch res := r.(type) {
	case *index.NumericResult:
		return gf.Contains(res.Value)
	case *index.AggregateResult:
		for _, child := range res.Children {
			if gf.CheckResult(child) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
