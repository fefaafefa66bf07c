package geo

import (
	"github.com/youzan/zangeo/common/geohash"
)

// GeoRangeCount is the number of ranges a predicate decomposes into, one per
// cell of the 3x3 geohash neighborhood.
const GeoRangeCount = 9

// GeoHashRange is a range of geohash values. Min == Max marks a range which
// is skipped.
type GeoHashRange struct {
	Min float64
	Max float64
}

func (r GeoHashRange) IsDegenerate() bool {
	return r.Min == r.Max
}

// DecomposeBox returns GeoRangeCount ranges covering every encodable point in
// the box. The corners may be given in any order. A box outside the
// encodable latitude band yields only degenerate ranges.
func DecomposeBox(lonMin, latMin, lonMax, latMax float64) []GeoHashRange {
	if lonMin > lonMax {
		lonMin, lonMax = lonMax, lonMin
	}
	if latMin > latMax {
		latMin, latMax = latMax, latMin
	}
	area, err := geohash.GetAreasByBoxWGS84(lonMin, latMin, lonMax, latMax)
	if err != nil {
		geoLog.Debugf("box %v %v %v %v has no geohash cells: %v", lonMin, latMin, lonMax, latMax, err)
		return make([]GeoHashRange, GeoRangeCount)
	}
	return rangesOfArea(area)
}

// DecomposeRadius returns GeoRangeCount ranges covering every encodable point
// within radius meters of the centre.
func DecomposeRadius(lon, lat, radius float64) []GeoHashRange {
	area, err := geohash.GetAreasByRadiusWGS84(lon, lat, radius)
	if err != nil {
		geoLog.Debugf("circle %v %v %v has no geohash cells: %v", lon, lat, radius, err)
		return make([]GeoHashRange, GeoRangeCount)
	}
	return rangesOfArea(area)
}

// rangesOfArea converts each neighborhood cell to a value range, leaving
// removed and repeated cells degenerate.
func rangesOfArea(area *geohash.Radius) []GeoHashRange {
	ranges := make([]GeoHashRange, GeoRangeCount)
	cells := area.Cells()
	for i, cell := range cells {
		if cell.IsZero() {
			continue
		}
		min, max := geohash.ScoresOfGeoHashBox(cell)
		r := GeoHashRange{Min: float64(min), Max: float64(max)}
		dup := false
		for j := 0; j < i; j++ {
			if ranges[j] == r {
				dup = true
				break
			}
		}
		if !dup {
			ranges[i] = r
		}
	}
	return ranges
}

// Ranges returns the geohash ranges of a validated filter, computed on first
// use and owned by the filter.
func (gf *GeoFilter) Ranges() []GeoHashRange {
	if gf.ranges == nil {
		switch gf.Type {
		case GeoBox:
			gf.ranges = DecomposeBox(gf.Lon, gf.Lat, gf.LonBox, gf.LatBox)
		default:
			gf.ranges = DecomposeRadius(gf.Lon, gf.Lat, gf.RadiusMeters())
		}
	}
	return gf.ranges
}

// SetRanges installs ranges computed elsewhere for an identical filter.
func (gf *GeoFilter) SetRanges(ranges []GeoHashRange) {
	if len(ranges) > GeoRangeCount {
		ranges = ranges[:GeoRangeCount]
	}
	gf.ranges = ranges
}
