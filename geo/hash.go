package geo

import (
	"math"

	"github.com/youzan/zangeo/common/geohash"
)

// InvalidGeoHash is returned for coordinates which can not be encoded.
const InvalidGeoHash float64 = -1

// geohash values are 52 bits integers, exactly representable in a float64
const maxGeoHash = float64(uint64(1) << (geohash.WGS84_GEO_STEP * 2))

// CalcGeoHash encodes the coordinate into the numeric value stored in the
// index.
func CalcGeoHash(lon, lat float64) float64 {
	hash, err := geohash.EncodeWGS84(lon, lat)
	if err != nil {
		return InvalidGeoHash
	}
	return float64(hash)
}

// DecodeGeoHash returns the approximate coordinate of an indexed value.
// ok is false for values which are not geohashes.
func DecodeGeoHash(v float64) (lon float64, lat float64, ok bool) {
	if !(v >= 0 && v < maxGeoHash) || v != math.Trunc(v) {
		return 0, 0, false
	}
	lon, lat = geohash.DecodeToLongLatWGS84(uint64(v))
	return lon, lat, true
}

// GeoHashString returns the standard 11 characters geohash of an indexed
// value.
func GeoHashString(v float64) (string, bool) {
	if _, _, ok := DecodeGeoHash(v); !ok {
		return "", false
	}
	s, err := geohash.GeoHashString(uint64(v))
	if err != nil {
		return "", false
	}
	return s, true
}

// HashDistance returns the distance in meters between two indexed values.
func HashDistance(v1, v2 float64) (float64, bool) {
	if _, _, ok := DecodeGeoHash(v1); !ok {
		return 0, false
	}
	if _, _, ok := DecodeGeoHash(v2); !ok {
		return 0, false
	}
	return geohash.DistBetweenGeoHashWGS84(uint64(v1), uint64(v2)), true
}
