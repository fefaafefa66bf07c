// Derived from the C code implementation of Redis, http://redis.io
// Original copyright states...

package geohash

import (
	"errors"
	"math"
)

const (
	// Limits from EPSG:900913 / EPSG:3785 / OSGEO:41001
	GEO_LAT_MIN  float64 = -85.05112878
	GEO_LAT_MAX  float64 = 85.05112878
	GEO_LONG_MIN float64 = -180
	GEO_LONG_MAX float64 = 180

	// 26*2 = 52 bits.
	WGS84_GEO_STEP uint8 = 26

	// the largest step interleave64 can hold
	MAX_STEP uint8 = 32
)

var (
	WGS84_LONG_RANGE = &Range{Min: GEO_LONG_MIN, Max: GEO_LONG_MAX}
	WGS84_LAT_RANGE  = &Range{Min: GEO_LAT_MIN, Max: GEO_LAT_MAX}
)

var (
	ErrInvalidStep       = errors.New("invalid geohash step")
	ErrInvalidRange      = errors.New("invalid geohash range")
	ErrCoordOutOfRange   = errors.New("invalid longitude,latitude pair")
	ErrHashOutOfMaxRange = errors.New("geohash bits out of range for step")
)

// Encode the coordinate into the cell of the given step. A coordinate on
// the upper edge of a range belongs to the last cell.
func Encode(longRange *Range, latRange *Range, longitude, latitude float64, step uint8) (HashBits, error) {
	var hash HashBits
	if step > MAX_STEP || step == 0 {
		return hash, ErrInvalidStep
	}
	if longRange == nil || latRange == nil || longRange.IsZero() || latRange.IsZero() {
		return hash, ErrInvalidRange
	}

	if math.IsNaN(longitude) || math.IsNaN(latitude) {
		return hash, ErrCoordOutOfRange
	}
	if longitude > GEO_LONG_MAX || longitude < GEO_LONG_MIN ||
		latitude > GEO_LAT_MAX || latitude < GEO_LAT_MIN {
		return hash, ErrCoordOutOfRange
	}
	if latitude < latRange.Min || latitude > latRange.Max ||
		longitude < longRange.Min || longitude > longRange.Max {
		return hash, ErrCoordOutOfRange
	}

	cells := float64(uint64(1) << step)
	latOffset := (latitude - latRange.Min) / (latRange.Max - latRange.Min) * cells
	longOffset := (longitude - longRange.Min) / (longRange.Max - longRange.Min) * cells

	hash.Bits = interleave64(clampOffset(latOffset, step), clampOffset(longOffset, step))
	hash.Step = step
	return hash, nil
}

func clampOffset(offset float64, step uint8) uint32 {
	maxCell := uint64(1)<<step - 1
	if offset <= 0 {
		return 0
	}
	if uint64(offset) > maxCell {
		return uint32(maxCell)
	}
	return uint32(offset)
}

// EncodeWGS84 returns the 52 bits hash used as the sortable score.
func EncodeWGS84(longitude, latitude float64) (uint64, error) {
	hash, err := Encode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, longitude, latitude, WGS84_GEO_STEP)
	if err != nil {
		return 0, err
	}
	return hash.Bits, nil
}

func decode(longRange *Range, latRange *Range, hash HashBits) *Area {
	area := &Area{Hash: hash}
	ilato, ilono := deinterleave64(hash.Bits)

	latScale := latRange.Max - latRange.Min
	longScale := longRange.Max - longRange.Min
	cells := float64(uint64(1) << hash.Step)

	area.Latitude.Min = latRange.Min + (float64(ilato)/cells)*latScale
	area.Latitude.Max = latRange.Min + (float64(ilato)+1)/cells*latScale
	area.Longitude.Min = longRange.Min + (float64(ilono)/cells)*longScale
	area.Longitude.Max = longRange.Min + (float64(ilono)+1)/cells*longScale
	return area
}

// DecodeWGS84 returns the cell of a full precision hash.
func DecodeWGS84(hash uint64) (*Area, error) {
	if hash>>(WGS84_GEO_STEP*2) != 0 {
		return nil, ErrHashOutOfMaxRange
	}
	return decode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, HashBits{Bits: hash, Step: WGS84_GEO_STEP}), nil
}

func decodeAreaToLongLat(area *Area) (float64, float64) {
	lon := (area.Longitude.Min + area.Longitude.Max) / 2
	if lon > GEO_LONG_MAX {
		lon = GEO_LONG_MAX
	}
	if lon < GEO_LONG_MIN {
		lon = GEO_LONG_MIN
	}
	lat := (area.Latitude.Min + area.Latitude.Max) / 2
	if lat > GEO_LAT_MAX {
		lat = GEO_LAT_MAX
	}
	if lat < GEO_LAT_MIN {
		lat = GEO_LAT_MIN
	}
	return lon, lat
}

// DecodeToLongLatWGS84 returns the centre of the cell. The caller should
// make sure the hash is a valid 52 bits hash.
func DecodeToLongLatWGS84(hash uint64) (float64, float64) {
	area := decode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, HashBits{Bits: hash, Step: WGS84_GEO_STEP})
	return decodeAreaToLongLat(area)
}

// ScoresOfGeoHashBox returns the score range [min, max) which holds all
// the full precision hashes inside the cell.
func ScoresOfGeoHashBox(hash HashBits) (min, max uint64) {
	min = hash.Bits << (WGS84_GEO_STEP*2 - hash.Step*2)
	bits := hash.Bits + 1
	max = bits << (WGS84_GEO_STEP*2 - hash.Step*2)
	return
}
