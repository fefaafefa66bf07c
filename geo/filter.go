// Package geo translates geographic predicates into numeric range scans over
// geohash encoded values and verifies the candidates those scans return.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/index"
)

type GeoType int

const (
	GeoCircle GeoType = iota
	GeoBox
)

func (t GeoType) String() string {
	switch t {
	case GeoCircle:
		return "circle"
	case GeoBox:
		return "box"
	default:
		return "unknown"
	}
}

// ArgsCursor is the token source Parse reads from.
type ArgsCursor interface {
	NumRemaining() int
	Peek() ([]byte, error)
	GetString() (string, error)
	GetDouble() (float64, error)
}

const (
	circleArgs = 5
	boxArgs    = 5
)

const paramPrefix = '$'

type paramTarget int

const (
	paramLon paramTarget = iota
	paramLat
	paramRadius
	paramUnit
	paramLonBox
	paramLatBox
)

type param struct {
	name   string
	target paramTarget
}

// GeoFilter is a circle or a box predicate on a geo property.
//
// For a circle Lon/Lat is the centre. For a box Lon/Lat is the south west
// corner and LonBox/LatBox the north east corner.
type GeoFilter struct {
	Property string
	Type     GeoType
	Lon      float64
	Lat      float64
	LonBox   float64
	LatBox   float64
	Radius   float64
	Unit     GeoDistance

	params         []param
	ranges         []GeoHashRange
	numericFilters []*index.NumericFilter
	lookupErrs     []error
	ref            index.GeoRef
	registry       *Registry
	freed          bool
}

// NewGeoFilter creates a circle filter. An empty unit means kilometers, an
// unknown one is reported by Validate.
func NewGeoFilter(lon, lat, radius float64, unit string) *GeoFilter {
	gf := &GeoFilter{
		Type:   GeoCircle,
		Lon:    lon,
		Lat:    lat,
		Radius: radius,
		Unit:   DistanceKM,
	}
	if unit != "" {
		gf.Unit = ParseDistanceUnitBuffer([]byte(unit))
	}
	return gf
}

// NewGeoBoxFilter creates a box filter from any two opposite corners.
func NewGeoBoxFilter(property string, lon1, lat1, lon2, lat2 float64) *GeoFilter {
	gf := &GeoFilter{
		Property: property,
		Type:     GeoBox,
		Lon:      lon1,
		Lat:      lat1,
		LonBox:   lon2,
		LatBox:   lat2,
	}
	gf.normalize()
	return gf
}

// Parse reads a circle filter in the form
// <geo property> <lon> <lat> <radius> <m|km|ft|mi>.
// Numeric arguments and the unit may be $name parameters resolved later by
// EvalParams. No filter is returned on error.
func Parse(ac ArgsCursor) (*GeoFilter, error) {
	if ac.NumRemaining() < circleArgs {
		return nil, common.NewQueryError(common.QueryErrArgCount, "GEOFILTER requires %d arguments", circleArgs)
	}
	gf := &GeoFilter{Type: GeoCircle}
	var err error
	if gf.Property, err = parseProperty(ac); err != nil {
		return nil, err
	}
	if err = gf.parseNumber(ac, "<lon>", paramLon, &gf.Lon); err != nil {
		return nil, err
	}
	if err = gf.parseNumber(ac, "<lat>", paramLat, &gf.Lat); err != nil {
		return nil, err
	}
	if err = gf.parseNumber(ac, "<radius>", paramRadius, &gf.Radius); err != nil {
		return nil, err
	}
	unit, err := ac.GetString()
	if err != nil {
		return nil, common.NewBadArgsError("<unit>", err)
	}
	if isParam(unit) {
		gf.params = append(gf.params, param{name: unit[1:], target: paramUnit})
		return gf, nil
	}
	if gf.Unit = ParseDistanceUnit(unit); gf.Unit == DistanceInvalid {
		return nil, common.NewQueryError(common.QueryErrUnknownUnit, "Unknown distance unit %s", unit)
	}
	return gf, nil
}

// ParseBox reads a box filter in the form
// <geo property> <lon> <lat> <lon> <lat> with any two opposite corners.
func ParseBox(ac ArgsCursor) (*GeoFilter, error) {
	if ac.NumRemaining() < boxArgs {
		return nil, common.NewQueryError(common.QueryErrArgCount, "GEOBOX requires %d arguments", boxArgs)
	}
	gf := &GeoFilter{Type: GeoBox}
	var err error
	if gf.Property, err = parseProperty(ac); err != nil {
		return nil, err
	}
	if err = gf.parseNumber(ac, "<lon>", paramLon, &gf.Lon); err != nil {
		return nil, err
	}
	if err = gf.parseNumber(ac, "<lat>", paramLat, &gf.Lat); err != nil {
		return nil, err
	}
	if err = gf.parseNumber(ac, "<lon>", paramLonBox, &gf.LonBox); err != nil {
		return nil, err
	}
	if err = gf.parseNumber(ac, "<lat>", paramLatBox, &gf.LatBox); err != nil {
		return nil, err
	}
	if len(gf.params) == 0 {
		gf.normalize()
	}
	return gf, nil
}

func parseProperty(ac ArgsCursor) (string, error) {
	prop, err := ac.GetString()
	if err != nil {
		return "", common.NewBadArgsError("<geo property>", err)
	}
	if prop == "" {
		return "", common.NewBadArgsError("<geo property>", common.ErrArgParse)
	}
	return prop, nil
}

func isParam(tok string) bool {
	return len(tok) > 1 && tok[0] == paramPrefix
}

func (gf *GeoFilter) parseNumber(ac ArgsCursor, name string, target paramTarget, v *float64) error {
	if tok, err := ac.Peek(); err == nil && isParam(string(tok)) {
		ac.GetString()
		gf.params = append(gf.params, param{name: string(tok[1:]), target: target})
		return nil
	}
	d, err := ac.GetDouble()
	if err != nil {
		return common.NewBadArgsError(name, err)
	}
	*v = d
	return nil
}

// EvalParams resolves the $name parameters of a parsed filter.
func (gf *GeoFilter) EvalParams(params map[string]string) error {
	for _, p := range gf.params {
		val, ok := params[p.name]
		if !ok {
			return common.NewQueryError(common.QueryErrBadArgs, "No such parameter `%s`", p.name)
		}
		if p.target == paramUnit {
			if gf.Unit = ParseDistanceUnit(val); gf.Unit == DistanceInvalid {
				return common.NewQueryError(common.QueryErrUnknownUnit, "Unknown distance unit %s", val)
			}
			continue
		}
		d, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsNaN(d) {
			return common.NewBadArgsError("$"+p.name, common.ErrArgParse)
		}
		switch p.target {
		case paramLon:
			gf.Lon = d
		case paramLat:
			gf.Lat = d
		case paramRadius:
			gf.Radius = d
		case paramLonBox:
			gf.LonBox = d
		case paramLatBox:
			gf.LatBox = d
		}
	}
	gf.params = nil
	gf.ranges = nil
	if gf.Type == GeoBox {
		gf.normalize()
	}
	return nil
}

// normalize orders the box corners so Lon/Lat is the minimum.
func (gf *GeoFilter) normalize() {
	if gf.Lon > gf.LonBox {
		gf.Lon, gf.LonBox = gf.LonBox, gf.Lon
	}
	if gf.Lat > gf.LatBox {
		gf.Lat, gf.LatBox = gf.LatBox, gf.Lat
	}
}

func validLonLat(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// Validate checks the filter after parsing and parameter evaluation.
func (gf *GeoFilter) Validate() error {
	if len(gf.params) > 0 {
		return common.NewQueryError(common.QueryErrBadArgs, "Unresolved GeoFilter parameter `%s`", gf.params[0].name)
	}
	if !gf.Unit.IsValid() {
		return common.NewQueryError(common.QueryErrUnknownUnit, "Invalid GeoFilter unit")
	}
	if !validLonLat(gf.Lon, gf.Lat) {
		return common.NewQueryError(common.QueryErrSyntax, "Invalid GeoFilter lat/lon")
	}
	switch gf.Type {
	case GeoCircle:
		if !(gf.Radius > 0) || math.IsInf(gf.Radius, 1) {
			return common.NewQueryError(common.QueryErrSyntax, "Invalid GeoFilter radius")
		}
	case GeoBox:
		if !validLonLat(gf.LonBox, gf.LatBox) {
			return common.NewQueryError(common.QueryErrSyntax, "Invalid GeoFilter lat/lon")
		}
	default:
		return common.NewQueryError(common.QueryErrSyntax, "Invalid GeoFilter type %d", int(gf.Type))
	}
	return nil
}

// Free releases the derived ranges, the numeric filters and the registry
// entry of the filter. Calling it again does nothing.
func (gf *GeoFilter) Free() {
	if gf.freed {
		return
	}
	gf.freed = true
	if gf.registry != nil {
		gf.registry.Release(gf.ref)
		gf.registry = nil
	}
	gf.ref = 0
	gf.Property = ""
	gf.params = nil
	gf.ranges = nil
	gf.numericFilters = nil
	gf.lookupErrs = nil
}

// RadiusMeters returns the circle radius converted to meters.
func (gf *GeoFilter) RadiusMeters() float64 {
	return gf.Radius * gf.Unit.Factor()
}

// NumericFilters returns the range filters created by the last build.
func (gf *GeoFilter) NumericFilters() []*index.NumericFilter {
	return gf.numericFilters
}

// LookupErr joins the errors of the range scans the last build skipped, nil
// if every range was looked up.
func (gf *GeoFilter) LookupErr() error {
	return errors.Join(gf.lookupErrs...)
}

func (gf *GeoFilter) String() string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(gf.Property)
	switch gf.Type {
	case GeoBox:
		fmt.Fprintf(&sb, ":[box %v %v %v %v]", gf.Lon, gf.Lat, gf.LonBox, gf.LatBox)
	default:
		fmt.Fprintf(&sb, ":[%v %v %v %s]", gf.Lon, gf.Lat, gf.Radius, gf.Unit)
	}
	return sb.String()
}
