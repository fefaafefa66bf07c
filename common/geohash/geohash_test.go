package geohash

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWGS84EncodeAndDecode(t *testing.T) {
	type tstruct struct {
		Point
		hash uint64
	}
	places := []tstruct{
		// Tiananmen Square, China
		{Point{116.39772, 39.90323}, 4069885361278926},
		// Arch of Triumph, France
		{Point{2.174266, 48.522679}, 3663813428519937},
		// Chateau de Versailles, France
		{Point{2.71824, 49.481776}, 3664036038846369},
		// Notre Dame de Paris, France
		{Point{2.205695, 48.511139}, 3663813805611339},
		// Louvre, France
		{Point{2.20926, 48.513974}, 3663813812473759},
		// Eiffel Tower Tower, France
		{Point{2.174019, 48.512954}, 3663813411800601},
		// Colosseum in Rome, Italy
		{Point{12.293116, 41.532432}, 3480283575457624},
		// Statue of Liberty, New York City, USA
		{Point{-74.24038, 40.412148}, 1791816099668153},
		// Pyramids, Egypt
		{Point{31.8506, 29.584341}, 3491552924055853},
		// Sphinx, Egypt
		{Point{31.8151, 29.583181}, 3491551447498977},
		// Mount verest
		{Point{86.9221941736, 27.9782502279}, 3639839274149119},
		// Corcovado, The Federative Republic of Brazil
		{Point{-43.123665, -22.57572}, 1008673663509676},
		// Acropolis, The Republic of Greece
		{Point{23.433281, 37.581887}, 3505296982643584},
		// Kilimanjaro, Africa
		{Point{37.205685, -3.35324}, 2670473009705881},
		// Stonehenge, England
		{Point{-1.494338, 51.104432}, 2163357020517338},
		// Sydney Opera House, Australia
		{Point{151.12541, -33.512513}, 3252040564825549},
		// Cologne Cathedral, Germany
		{Point{6.572381, 50.562714}, 3666908289606321},
		// Leaning Tower of Pisa, Italy
		{Point{10.234764, 43.432268}, 3662142917155721},
		// Big Ben, England
		{Point{-0.72796, 51.30266}, 2163508065515980},
		// Buckingham Palace, England
		{Point{-0.83279, 51.30387}, 2163507521029941},
		// Taj Mahal, India
		{Point{78.23188, 27.102839}, 3631332645702463},
	}

	for _, v := range places {
		hash, err := EncodeWGS84(v.Longitude, v.Latitude)
		if err != nil {
			t.Fatal(err)
		}
		if hash != v.hash {
			t.Fatalf("the WGS84 geohash of position [%f, %f] should be:%d, not:%d",
				v.Latitude, v.Longitude, v.hash, hash)
		}
	}

	for _, v := range places {
		lon, lat := DecodeToLongLatWGS84(v.hash)
		if math.Abs(lon-v.Longitude) > 0.000003 || math.Abs(lat-v.Latitude) > 0.000003 {
			t.Fatalf("decode WGS84 geohash of position [%f, %f] mismatch, [%f, %f]",
				v.Latitude, v.Longitude, lat, lon)
		}
	}
}

func TestDistance(t *testing.T) {
	type tData struct {
		name string
		lat  float64
		lon  float64
		hash uint64
		dist float64
	}

	center := tData{name: "Tian An Men Square", lat: 39.905637761392, lon: 116.39763057232, hash: 4069885364411786}

	places := []tData{
		{name: "Tian An Men Square", lat: 39.905637761392, lon: 116.39763057232, dist: 0, hash: 4069885364411786},
		{name: "The Great Wall", lat: 40.359759768836, lon: 116.02002181113, dist: 59853.4742, hash: 4069895257856587},
		{name: "The Palace Museum", lat: 39.916345328893, lon: 116.39715582132, dist: 1191.8406, hash: 4069885548623625},
		{name: "The Summer Palace", lat: 39.999886103047, lon: 116.27552270889, dist: 14774.6742, hash: 4069880322548821},
		{name: "Great Hall of the people", lat: 39.9050003, lon: 116.3939423, dist: 322.7538, hash: 4069885362257819},
		{name: "Terracotta Warriors and Horses", lat: 34.384972, lon: 109.274127, dist: 880281.2654, hash: 4040142446455543},
		{name: "West Lake", lat: 30.150197, lon: 120.094491, dist: 1135799.4856, hash: 4054121678641499},
		{name: "Hainan ends of the earth", lon: 109.205175, lat: 18.173128, dist: 2514090.2704, hash: 3974157332439237},
		{name: "Pearl of the Orient", lon: 121.49491, lat: 31.24169, dist: 1067807.3858, hash: 4054803515096369},
		{name: "Buckingham Palace", lon: -0.83279, lat: 51.30387, dist: 8193510.0282, hash: 2163507521029941},
		{name: "Taj Mahal", lon: 78.23188, lat: 27.102839, dist: 3780302.7628, hash: 3631332645702463},
		{name: "Sydney Opera House, Australia", lon: 151.12541, lat: -33.512513, dist: 8912296.5074, hash: 3252040564825549},
		{name: "Pyramids, Egypt", lon: 31.8506, lat: 29.584341, dist: 7525469.5594, hash: 3491552924055853},
		{name: "Statue of Liberty, New York City, USA", lon: -74.24038, lat: 40.412148, dist: 11022442.0136, hash: 1791816099668153},
		{name: "Mount verest", lon: 86.9221941736, lat: 27.9782502279, dist: 3007044.9039, hash: 3639839274149119},
	}

	for _, v := range places {
		dist := GetDistance(center.lon, center.lat, v.lon, v.lat)
		if math.Abs(dist-v.dist) > 0.5 {
			t.Fatalf("distance for Tian An Men Square to %s is %f, not %f", v.name, v.dist, dist)
		}
	}

	for _, v := range places {
		dist := DistBetweenGeoHashWGS84(center.hash, v.hash)
		if math.Abs(dist-v.dist) > 0.0001 {
			t.Fatalf("distance for Tian An Men Square to %s is %f, not %f", v.name, v.dist, dist)
		}
	}

}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := EncodeWGS84(0, 85.06)
	assert.Equal(t, ErrCoordOutOfRange, err)
	_, err = EncodeWGS84(0, -89)
	assert.Equal(t, ErrCoordOutOfRange, err)
	_, err = EncodeWGS84(180.5, 0)
	assert.Equal(t, ErrCoordOutOfRange, err)
	_, err = Encode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, 0, 0, 0)
	assert.Equal(t, ErrInvalidStep, err)
	_, err = Encode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, 0, 0, 33)
	assert.Equal(t, ErrInvalidStep, err)
	_, err = Encode(&Range{}, WGS84_LAT_RANGE, 0, 0, 26)
	assert.Equal(t, ErrInvalidRange, err)
}

func TestEncodeEdges(t *testing.T) {
	// the upper edges stay inside the 52 bits space
	for _, p := range []Point{{180, GEO_LAT_MAX}, {-180, GEO_LAT_MIN}, {180, 0}, {0, GEO_LAT_MAX}} {
		hash, err := EncodeWGS84(p.Longitude, p.Latitude)
		assert.Nil(t, err)
		assert.Equal(t, uint64(0), hash>>52)
		lon, lat := DecodeToLongLatWGS84(hash)
		assert.InDelta(t, p.Longitude, lon, 0.00001)
		assert.InDelta(t, p.Latitude, lat, 0.00001)
	}
}

func TestDecodeWGS84(t *testing.T) {
	area, err := DecodeWGS84(3663813411800601)
	assert.Nil(t, err)
	assert.True(t, area.Longitude.Min <= 2.174019 && 2.174019 <= area.Longitude.Max)
	assert.True(t, area.Latitude.Min <= 48.512954 && 48.512954 <= area.Latitude.Max)

	_, err = DecodeWGS84(1 << 52)
	assert.Equal(t, ErrHashOutOfMaxRange, err)
}

func TestGeoHashString(t *testing.T) {
	s, err := GeoHashString(4069885364411786)
	assert.Nil(t, err)
	assert.Equal(t, "wx4g08w5jm0", s)
	s, err = GeoHashString(4069895257856587)
	assert.Nil(t, err)
	assert.Equal(t, "wx4t8570wk0", s)
	_, err = GeoHashString(1 << 60)
	assert.NotNil(t, err)
}

func TestNeighborsWrapAround(t *testing.T) {
	hash, err := Encode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, 179.9, 0.1, 4)
	assert.Nil(t, err)
	neighbors := GetNeighbors(hash)
	east := decode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, neighbors.East)
	assert.Equal(t, -180.0, east.Longitude.Min)
	west := decode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, neighbors.West)
	area := decode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, hash)
	assert.InDelta(t, area.Longitude.Min, west.Longitude.Max, 1e-9)
}

func inCells(r *Radius, hash uint64) bool {
	for _, cell := range r.Cells() {
		if cell.IsZero() {
			continue
		}
		min, max := ScoresOfGeoHashBox(cell)
		if hash >= min && hash < max {
			return true
		}
	}
	return false
}

func checkBoxCovered(t *testing.T, minLon, minLat, maxLon, maxLat float64) {
	r, err := GetAreasByBoxWGS84(minLon, minLat, maxLon, maxLat)
	if !assert.Nil(t, err) {
		return
	}
	samples := []Point{
		{minLon, minLat}, {minLon, maxLat}, {maxLon, minLat}, {maxLon, maxLat},
		{(minLon + maxLon) / 2, (minLat + maxLat) / 2},
		{(minLon + maxLon) / 2, minLat}, {(minLon + maxLon) / 2, maxLat},
		{minLon, (minLat + maxLat) / 2}, {maxLon, (minLat + maxLat) / 2},
	}
	for i := 0; i < 200; i++ {
		samples = append(samples, Point{
			minLon + rand.Float64()*(maxLon-minLon),
			minLat + rand.Float64()*(maxLat-minLat),
		})
	}
	for _, p := range samples {
		lon := p.Longitude
		if lon > 180 {
			lon -= 360
		} else if lon < -180 {
			lon += 360
		}
		if p.Latitude > GEO_LAT_MAX || p.Latitude < GEO_LAT_MIN {
			continue
		}
		hash, err := EncodeWGS84(lon, p.Latitude)
		assert.Nil(t, err)
		assert.True(t, inCells(r, hash), "point %v not covered by box [%v,%v,%v,%v]",
			p, minLon, minLat, maxLon, maxLat)
	}
}

func TestGetAreasByBoxCovers(t *testing.T) {
	checkBoxCovered(t, -5, -5, 10, 10)
	checkBoxCovered(t, 116.3, 39.8, 116.5, 40.0)
	checkBoxCovered(t, 0, 0, 0.0001, 0.0001)
	checkBoxCovered(t, -180, -85, 180, 85)
	checkBoxCovered(t, 170, -10, 190, 10)
	checkBoxCovered(t, -190, 60, -170, 70)
	checkBoxCovered(t, -74.1, 40.6, -73.8, 40.9)
	checkBoxCovered(t, 10, 80, 20, 85.05)
	checkBoxCovered(t, 10, -85.05, 11, -84)
	for i := 0; i < 50; i++ {
		lon := rand.Float64()*360 - 180
		lat := rand.Float64()*160 - 80
		w := rand.Float64() * 20
		h := rand.Float64() * 5
		checkBoxCovered(t, lon, lat, lon+w, math.Min(lat+h, GEO_LAT_MAX))
	}
}

func TestGetAreasByBoxOutOfRange(t *testing.T) {
	_, err := GetAreasByBoxWGS84(0, 86, 1, 89)
	assert.Equal(t, ErrCoordOutOfRange, err)
	_, err = GetAreasByBoxWGS84(0, -89, 1, -86)
	assert.Equal(t, ErrCoordOutOfRange, err)
}

func TestGetAreasByRadiusCovers(t *testing.T) {
	centers := []Point{{0, 0}, {116.39763057232, 39.905637761392}, {179.99, 10}, {-179.99, -10}, {20, 84}}
	radiuses := []float64{1, 100, 1000, 50000, 1000000, 5000000}
	for _, c := range centers {
		for _, radius := range radiuses {
			r, err := GetAreasByRadiusWGS84(c.Longitude, c.Latitude, radius)
			if !assert.Nil(t, err) {
				continue
			}
			for i := 0; i < 200; i++ {
				lon := c.Longitude + (rand.Float64()*2-1)*radDeg(radius/EARTH_RADIUS_IN_METERS)*4
				lat := c.Latitude + (rand.Float64()*2-1)*radDeg(radius/EARTH_RADIUS_IN_METERS)
				if lon > 180 {
					lon -= 360
				} else if lon < -180 {
					lon += 360
				}
				if lat > GEO_LAT_MAX || lat < GEO_LAT_MIN {
					continue
				}
				if GetDistance(c.Longitude, c.Latitude, lon, lat) > radius {
					continue
				}
				hash, err := EncodeWGS84(lon, lat)
				assert.Nil(t, err)
				assert.True(t, inCells(r, hash), "point %v,%v within %v of %v not covered", lon, lat, radius, c)
			}
		}
	}
}

func TestBoundingBoxLargeRadius(t *testing.T) {
	minLon, minLat, maxLon, maxLat := boundingBox(0, -60, 10000e3)
	assert.Equal(t, float64(GEO_LONG_MIN), minLon)
	assert.Equal(t, float64(GEO_LONG_MAX), maxLon)
	assert.Equal(t, float64(-90), minLat)
	// 10000km is about 89.9 degrees
	assert.InDelta(t, 29.9, maxLat, 0.1)

	_, minLat, _, maxLat = boundingBox(30, 10, 30000e3)
	assert.Equal(t, float64(-90), minLat)
	assert.Equal(t, float64(90), maxLat)
}

func TestGetAreasByHugeRadiusCovers(t *testing.T) {
	for n := 0; n < 100; n++ {
		lon := rand.Float64()*360 - 180
		lat := rand.Float64()*170 - 85
		radius := 6000e3 + rand.Float64()*14000e3
		r, err := GetAreasByRadiusWGS84(lon, lat, radius)
		if !assert.Nil(t, err) {
			continue
		}
		for i := 0; i < 100; i++ {
			plon := rand.Float64()*360 - 180
			plat := rand.Float64()*170 - 85
			if GetDistance(lon, lat, plon, plat) > radius {
				continue
			}
			hash, err := EncodeWGS84(plon, plat)
			assert.Nil(t, err)
			assert.True(t, inCells(r, hash), "point %v,%v within %v of %v,%v not covered", plon, plat, radius, lon, lat)
		}
	}
}
