package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/index"
)

func TestParseCircle(t *testing.T) {
	ac := common.NewArgsCursorFromStrings("location", "-73.9857", "40.7484", "2.5", "MI", "next")
	gf, err := Parse(ac)
	require.Nil(t, err)
	assert.Equal(t, "location", gf.Property)
	assert.Equal(t, GeoCircle, gf.Type)
	assert.Equal(t, -73.9857, gf.Lon)
	assert.Equal(t, 40.7484, gf.Lat)
	assert.Equal(t, 2.5, gf.Radius)
	assert.Equal(t, DistanceMI, gf.Unit)
	assert.Equal(t, 1, ac.NumRemaining())
	assert.Nil(t, gf.Validate())
	assert.Equal(t, 2.5*1609.34, gf.RadiusMeters())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		args []string
		code common.QueryErrorCode
		is   error
		msg  string
	}{
		{[]string{"loc", "1", "2", "3"}, common.QueryErrArgCount, common.ErrArgCount, "GEOFILTER requires 5 arguments"},
		{[]string{}, common.QueryErrArgCount, common.ErrArgCount, ""},
		{[]string{"loc", "abc", "2", "3", "km"}, common.QueryErrBadArgs, common.ErrArgParse, "<lon>"},
		{[]string{"loc", "1", "abc", "3", "km"}, common.QueryErrBadArgs, common.ErrArgParse, "<lat>"},
		{[]string{"loc", "1", "2", "abc", "km"}, common.QueryErrBadArgs, common.ErrArgParse, "<radius>"},
		{[]string{"", "1", "2", "3", "km"}, common.QueryErrBadArgs, common.ErrBadArgs, "<geo property>"},
		{[]string{"loc", "1", "2", "3", "parsecs"}, common.QueryErrUnknownUnit, common.ErrUnknownUnit, "Unknown distance unit parsecs"},
	}
	for _, tt := range tests {
		gf, err := Parse(common.NewArgsCursorFromStrings(tt.args...))
		assert.Nil(t, gf, "%v", tt.args)
		require.NotNil(t, err, "%v", tt.args)
		assert.Equal(t, tt.code, common.CodeOf(err), "%v", tt.args)
		assert.True(t, errors.Is(err, tt.is), "%v: %v", tt.args, err)
		assert.Contains(t, err.Error(), tt.msg)
	}
}

func TestParseOutOfRangeIsNotParseError(t *testing.T) {
	gf, err := Parse(common.NewArgsCursorFromStrings("loc", "200", "95", "-1", "km"))
	require.Nil(t, err)
	err = gf.Validate()
	assert.Equal(t, common.QueryErrSyntax, common.CodeOf(err))
	assert.True(t, errors.Is(err, common.ErrRangeViolation))
}

func TestParseBox(t *testing.T) {
	gf, err := ParseBox(common.NewArgsCursorFromStrings("loc", "10", "20", "-10", "-20"))
	require.Nil(t, err)
	assert.Equal(t, GeoBox, gf.Type)
	assert.Equal(t, float64(-10), gf.Lon)
	assert.Equal(t, float64(-20), gf.Lat)
	assert.Equal(t, float64(10), gf.LonBox)
	assert.Equal(t, float64(20), gf.LatBox)
	assert.Nil(t, gf.Validate())

	_, err = ParseBox(common.NewArgsCursorFromStrings("loc", "10", "20", "-10"))
	assert.Equal(t, common.QueryErrArgCount, common.CodeOf(err))
	_, err = ParseBox(common.NewArgsCursorFromStrings("loc", "10", "20", "-10", "x"))
	assert.Equal(t, common.QueryErrBadArgs, common.CodeOf(err))
}

func TestBoxNormalization(t *testing.T) {
	corners := [][4]float64{
		{-10, -20, 10, 20},
		{10, 20, -10, -20},
		{-10, 20, 10, -20},
		{10, -20, -10, 20},
	}
	for _, c := range corners {
		gf := NewGeoBoxFilter("loc", c[0], c[1], c[2], c[3])
		assert.True(t, gf.Lon <= gf.LonBox)
		assert.True(t, gf.Lat <= gf.LatBox)
		assert.Equal(t, float64(-10), gf.Lon)
		assert.Equal(t, float64(-20), gf.Lat)
		assert.Equal(t, float64(10), gf.LonBox)
		assert.Equal(t, float64(20), gf.LatBox)
	}
}

func TestNewGeoFilterUnit(t *testing.T) {
	gf := NewGeoFilter(1, 2, 3, "")
	assert.Equal(t, DistanceKM, gf.Unit)
	assert.Nil(t, gf.Validate())
	gf = NewGeoFilter(1, 2, 3, "FT")
	assert.Equal(t, DistanceFT, gf.Unit)
	gf = NewGeoFilter(1, 2, 3, "furlong")
	assert.Equal(t, DistanceInvalid, gf.Unit)
	err := gf.Validate()
	assert.Equal(t, common.QueryErrUnknownUnit, common.CodeOf(err))
	assert.Equal(t, "Invalid GeoFilter unit", err.Error())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		lon, lat, radius float64
		unit             string
		msg              string
	}{
		{0, 0, 1, "km", ""},
		{180, 90, 1, "m", ""},
		{-180, -90, 0.001, "mi", ""},
		{180.0001, 0, 1, "km", "Invalid GeoFilter lat/lon"},
		{-180.0001, 0, 1, "km", "Invalid GeoFilter lat/lon"},
		{0, 90.0001, 1, "km", "Invalid GeoFilter lat/lon"},
		{0, -90.0001, 1, "km", "Invalid GeoFilter lat/lon"},
		{math.NaN(), 0, 1, "km", "Invalid GeoFilter lat/lon"},
		{0, 0, 0, "km", "Invalid GeoFilter radius"},
		{0, 0, -1, "km", "Invalid GeoFilter radius"},
		{0, 0, math.NaN(), "km", "Invalid GeoFilter radius"},
		{0, 0, math.Inf(1), "km", "Invalid GeoFilter radius"},
		{0, 0, 1, "xx", "Invalid GeoFilter unit"},
	}
	for _, tt := range tests {
		gf := NewGeoFilter(tt.lon, tt.lat, tt.radius, tt.unit)
		err := gf.Validate()
		if tt.msg == "" {
			assert.Nil(t, err, "%v", tt)
			continue
		}
		require.NotNil(t, err, "%v", tt)
		assert.Equal(t, tt.msg, err.Error())
		// pure: validating again gives the same answer
		assert.Equal(t, err.Error(), gf.Validate().Error())
	}

	box := NewGeoBoxFilter("loc", -10, -10, 10, 10)
	assert.Nil(t, box.Validate())
	box = NewGeoBoxFilter("loc", -10, -10, 10, 91)
	assert.Equal(t, "Invalid GeoFilter lat/lon", box.Validate().Error())
}

func TestEvalParams(t *testing.T) {
	gf, err := Parse(common.NewArgsCursorFromStrings("loc", "$lon", "$lat", "10", "$unit"))
	require.Nil(t, err)
	err = gf.Validate()
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Unresolved")

	err = gf.EvalParams(map[string]string{"lon": "1.5", "lat": "-2"})
	assert.Contains(t, err.Error(), "No such parameter `unit`")

	gf, err = Parse(common.NewArgsCursorFromStrings("loc", "$lon", "$lat", "10", "$unit"))
	require.Nil(t, err)
	err = gf.EvalParams(map[string]string{"lon": "1.5", "lat": "-2", "unit": "ft"})
	require.Nil(t, err)
	assert.Equal(t, 1.5, gf.Lon)
	assert.Equal(t, float64(-2), gf.Lat)
	assert.Equal(t, DistanceFT, gf.Unit)
	assert.Nil(t, gf.Validate())

	gf, _ = Parse(common.NewArgsCursorFromStrings("loc", "1", "2", "$r", "$unit"))
	err = gf.EvalParams(map[string]string{"r": "abc", "unit": "km"})
	assert.Equal(t, common.QueryErrBadArgs, common.CodeOf(err))
	gf, _ = Parse(common.NewArgsCursorFromStrings("loc", "1", "2", "$r", "$unit"))
	err = gf.EvalParams(map[string]string{"r": "3", "unit": "yd"})
	assert.Equal(t, common.QueryErrUnknownUnit, common.CodeOf(err))

	box, err := ParseBox(common.NewArgsCursorFromStrings("loc", "$a", "$b", "-5", "-6"))
	require.Nil(t, err)
	require.Nil(t, box.EvalParams(map[string]string{"a": "5", "b": "6"}))
	assert.Equal(t, float64(-5), box.Lon)
	assert.Equal(t, float64(-6), box.Lat)
	assert.Equal(t, float64(5), box.LonBox)
	assert.Equal(t, float64(6), box.LatBox)
}

func TestFree(t *testing.T) {
	reg := NewRegistry()
	gf := NewGeoFilter(0, 0, 1, "km")
	gf.Property = "loc"
	ref := reg.Register(gf)
	assert.NotEqual(t, index.GeoRef(0), ref)
	assert.Equal(t, ref, reg.Register(gf))
	assert.Equal(t, gf, reg.Lookup(ref))
	assert.Equal(t, GeoRangeCount, len(gf.Ranges()))

	nf := index.NewNumericFilter("loc", 0, 1, true, true)
	nf.GeoRef = ref
	nf.GeoResolver = reg
	outside := CalcGeoHash(1, 1)
	assert.False(t, nf.MatchGeo(outside))

	gf.Free()
	assert.Nil(t, reg.Lookup(ref))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, "", gf.Property)
	assert.Nil(t, gf.NumericFilters())
	// the numeric filter does not keep the geo filter alive
	assert.True(t, nf.MatchGeo(outside))
	gf.Free()
}
