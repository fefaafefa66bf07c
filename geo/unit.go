package geo

import (
	"strings"
)

// GeoDistance is the unit of a radius. The zero value is kilometers.
type GeoDistance int

const (
	DistanceKM GeoDistance = iota
	DistanceM
	DistanceFT
	DistanceMI
	DistanceInvalid
)

const badUnitName = "<badunit>"

// the longest unit token accepted from a raw buffer
const maxUnitBufferLen = 16

var distanceUnits = []struct {
	unit GeoDistance
	name string
}{
	{DistanceKM, "km"},
	{DistanceM, "m"},
	{DistanceFT, "ft"},
	{DistanceMI, "mi"},
}

// ParseDistanceUnit resolves a unit token case insensitively. Anything but
// m, km, ft and mi is DistanceInvalid.
func ParseDistanceUnit(s string) GeoDistance {
	for _, u := range distanceUnits {
		if strings.EqualFold(u.name, s) {
			return u.unit
		}
	}
	return DistanceInvalid
}

// ParseDistanceUnitBuffer is ParseDistanceUnit for raw command arguments.
// Oversized tokens are rejected without looking at them.
func ParseDistanceUnitBuffer(b []byte) GeoDistance {
	if len(b) >= maxUnitBufferLen {
		return DistanceInvalid
	}
	return ParseDistanceUnit(string(b))
}

func (u GeoDistance) String() string {
	for _, du := range distanceUnits {
		if du.unit == u {
			return du.name
		}
	}
	return badUnitName
}

func (u GeoDistance) IsValid() bool {
	return u >= DistanceKM && u < DistanceInvalid
}

// Factor returns the meters in one unit. An invalid unit here means a
// filter skipped validation, which is a bug.
func (u GeoDistance) Factor() float64 {
	switch u {
	case DistanceM:
		return 1
	case DistanceKM:
		return 1000
	case DistanceFT:
		return 0.3048
	case DistanceMI:
		return 1609.34
	default:
		geoLog.Panicf("invalid distance unit %d used without validation", int(u))
		return -1
	}
}
