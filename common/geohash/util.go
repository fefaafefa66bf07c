package geohash

import "math"

var (
	// const used to interleave64 and deinterleave64
	// From:  https://graphics.stanford.edu/~seander/bithacks.html#InterleaveBMN
	s = []uint32{0, 1, 2, 4, 8, 16}

	b = []uint64{
		0x5555555555555555,
		0x3333333333333333,
		0x0F0F0F0F0F0F0F0F,
		0x00FF00FF00FF00FF,
		0x0000FFFF0000FFFF,
		0x00000000FFFFFFFF,
	}

	geoalphabet = "0123456789bcdefghjkmnpqrstuvwxyz"
)

const (
	MERCATOR_MAX float64 = 20037726.37

	// Earth's quatratic mean radius for WGS-84
	EARTH_RADIUS_IN_METERS float64 = 6372797.560856

	D_R = (math.Pi / 180.0)
)

func degRad(ang float64) float64 {
	return ang * D_R
}

func radDeg(ang float64) float64 {
	return ang / D_R
}

/* Interleave lower bits of x and y, so the bits of x
 * are in the even positions and bits from y in the odd;
 * x and y must initially be less than 2**32 (65536).
 * From:  https://graphics.stanford.edu/~seander/bithacks.html#InterleaveBMN
 */
func interleave64(xlo uint32, ylo uint32) uint64 {
	var x, y uint64 = uint64(xlo), uint64(ylo)
	x = (x | x<<s[5]) & b[4]
	y = (y | y<<s[5]) & b[4]

	x = (x | x<<s[4]) & b[3]
	y = (y | y<<s[4]) & b[3]

	x = (x | x<<s[3]) & b[2]
	y = (y | y<<s[3]) & b[2]

	x = (x | x<<s[2]) & b[1]
	y = (y | y<<s[2]) & b[1]

	x = (x | x<<s[1]) & b[0]
	y = (y | y<<s[1]) & b[0]

	return x | (y << 1)
}

/* reverse the interleave process
 * derived from http://stackoverflow.com/questions/4909263
 */
func deinterleave64(interleaved uint64) (uint32, uint32) {
	x, y := interleaved, interleaved>>1

	x = (x | (x >> s[0])) & b[0]
	y = (y | (y >> s[0])) & b[0]

	x = (x | (x >> s[1])) & b[1]
	y = (y | (y >> s[1])) & b[1]

	x = (x | (x >> s[2])) & b[2]
	y = (y | (y >> s[2])) & b[2]

	x = (x | (x >> s[3])) & b[3]
	y = (y | (y >> s[3])) & b[3]

	x = (x | (x >> s[4])) & b[4]
	y = (y | (y >> s[4])) & b[4]

	x = (x | (x >> s[5])) & b[5]
	y = (y | (y >> s[5])) & b[5]

	x = x | (y << 32)

	return uint32(x), uint32(x >> 32)
}

func DistBetweenGeoHashWGS84(hash0 uint64, hash1 uint64) float64 {
	lon0d, lat0d := DecodeToLongLatWGS84(hash0)
	lon1d, lat1d := DecodeToLongLatWGS84(hash1)

	return GetDistance(lon0d, lat0d, lon1d, lat1d)
}

// Calculate distance using haversin great circle distance formula.
func GetDistance(lon0d, lat0d, lon1d, lat1d float64) float64 {
	lat0r := degRad(lat0d)
	lon0r := degRad(lon0d)
	lat1r := degRad(lat1d)
	lon1r := degRad(lon1d)

	u := math.Sin((lat1r - lat0r) / 2)
	v := math.Sin((lon1r - lon0r) / 2)

	return 2.0 * EARTH_RADIUS_IN_METERS *
		math.Asin(
			math.Sqrt(
				u*u+
					math.Cos(lat0r)*math.Cos(lat1r)*v*v))
}

func EncodeToBase32(hash uint64) []byte {
	buf := make([]byte, 11)
	var i uint8 = 0
	for ; i < 11; i++ {
		idx := (hash >> (52 - ((i + 1) * 5))) & 0x1f
		buf[i] = geoalphabet[idx]
	}
	return buf
}

// GetAreasByRadiusWGS84 returns the cells to scan for all the points within
// radius meters of the centre.
func GetAreasByRadiusWGS84(longitude, latitude, radius float64) (*Radius, error) {
	minLon, minLat, maxLon, maxLat := boundingBox(longitude, latitude, radius)
	return GetAreasByBoxWGS84(minLon, minLat, maxLon, maxLat)
}

// GetAreasByBoxWGS84 returns the centre cell and neighbors which together
// cover the box. Longitudes may exceed [-180, 180] to describe a box
// crossing the antimeridian, the neighbors wrap around in that case.
// Neighbors which are not needed to cover the box are cleaned.
func GetAreasByBoxWGS84(minLon, minLat, maxLon, maxLat float64) (*Radius, error) {
	if minLat > GEO_LAT_MAX || maxLat < GEO_LAT_MIN || minLat > maxLat || minLon > maxLon {
		return nil, ErrCoordOutOfRange
	}
	if minLat < GEO_LAT_MIN {
		minLat = GEO_LAT_MIN
	}
	if maxLat > GEO_LAT_MAX {
		maxLat = GEO_LAT_MAX
	}
	if maxLon-minLon >= GEO_LONG_MAX-GEO_LONG_MIN {
		minLon, maxLon = GEO_LONG_MIN, GEO_LONG_MAX
	}

	longitude := (minLon + maxLon) / 2
	latitude := (minLat + maxLat) / 2
	// keep the bounds in the same frame as the centre
	for longitude > GEO_LONG_MAX {
		longitude -= 360
		minLon -= 360
		maxLon -= 360
	}
	for longitude < GEO_LONG_MIN {
		longitude += 360
		minLon += 360
		maxLon += 360
	}

	halfHeight := degRad((maxLat-minLat)/2) * EARTH_RADIUS_IN_METERS
	halfWidth := degRad((maxLon-minLon)/2) * EARTH_RADIUS_IN_METERS * math.Cos(degRad(latitude))
	steps := estimateStepsByRadius(math.Sqrt(halfHeight*halfHeight+halfWidth*halfWidth), latitude)

	var hash HashBits
	var area *Area
	var err error
	for {
		hash, err = Encode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, longitude, latitude, steps)
		if err != nil {
			return nil, err
		}
		area = decode(WGS84_LONG_RANGE, WGS84_LAT_RANGE, hash)

		/* Check if the step is enough at the limits of the covered area.
		 * Sometimes when the search area is near an edge of the
		 * area, the estimated step is not small enough, since one of the
		 * north / south / west / east square is too near to the search area
		 * to cover everything. */
		if steps <= 1 || coveredByNeighbors(area, minLon, minLat, maxLon, maxLat) {
			break
		}
		steps--
	}

	neighbors := GetNeighbors(hash)

	/* Exclude the search areas that are useless. */
	if area.Latitude.Min < minLat || area.Latitude.Min <= GEO_LAT_MIN {
		(&neighbors.South).Clean()
		(&neighbors.SouthWest).Clean()
		(&neighbors.SouthEast).Clean()
	}
	if area.Latitude.Max > maxLat || area.Latitude.Max >= GEO_LAT_MAX {
		(&neighbors.North).Clean()
		(&neighbors.NorthEast).Clean()
		(&neighbors.NorthWest).Clean()
	}
	if area.Longitude.Min < minLon {
		(&neighbors.West).Clean()
		(&neighbors.SouthWest).Clean()
		(&neighbors.NorthWest).Clean()
	}
	if area.Longitude.Max > maxLon {
		(&neighbors.East).Clean()
		(&neighbors.SouthEast).Clean()
		(&neighbors.NorthEast).Clean()
	}

	return &Radius{
		Area:      *area,
		Hash:      hash,
		Neighbors: neighbors,
	}, nil
}

// coveredByNeighbors reports whether the 3x3 cells around area contain the box.
func coveredByNeighbors(area *Area, minLon, minLat, maxLon, maxLat float64) bool {
	cellW := area.Longitude.Max - area.Longitude.Min
	cellH := area.Latitude.Max - area.Latitude.Min
	if area.Latitude.Min-cellH > minLat && area.Latitude.Min > GEO_LAT_MIN {
		return false
	}
	if area.Latitude.Max+cellH < maxLat && area.Latitude.Max < GEO_LAT_MAX {
		return false
	}
	if cellW*3 >= GEO_LONG_MAX-GEO_LONG_MIN {
		return true
	}
	return area.Longitude.Min-cellW <= minLon && area.Longitude.Max+cellW >= maxLon
}

func boundingBox(longitude, latitude, radius float64) (
	minLongitude float64,
	minLatitude float64,
	maxLongitude float64,
	maxLatitude float64) {

	lonR, latR := degRad(longitude), degRad(latitude)

	// angular distance, half the circumference reaches the whole sphere
	distance := math.Min(radius/EARTH_RADIUS_IN_METERS, math.Pi)
	minLatitude, maxLatitude = radDeg(latR-distance), radDeg(latR+distance)

	// a pole inside the circle means every longitude is reachable
	ratio := math.Sin(distance) / math.Cos(latR)
	if maxLatitude >= 90 || minLatitude <= -90 || ratio >= 1 {
		minLatitude = math.Max(minLatitude, -90)
		maxLatitude = math.Min(maxLatitude, 90)
		minLongitude, maxLongitude = GEO_LONG_MIN, GEO_LONG_MAX
		return
	}
	diffLongitude := math.Asin(ratio)

	minLongitude = radDeg(lonR - diffLongitude)
	maxLongitude = radDeg(lonR + diffLongitude)
	return
}

/* This function is used in order to estimate the step (bits precision)
 * of the 9 search area boxes during radius queries. */
func estimateStepsByRadius(rangeMeters, latitude float64) uint8 {
	if rangeMeters <= 0 {
		return WGS84_GEO_STEP
	}
	var step int8 = 1
	for rangeMeters < MERCATOR_MAX {
		rangeMeters *= 2
		step++
	}

	// Make sure range is included in most of the base cases.
	step -= 2

	// Wider range torwards the poles... Note: it is possible to do better
	// than this approximation by computing the distance between meridians
	// at this latitude, but this does the trick for now.
	if latitude > 66 || latitude < -66 {
		step--
		if latitude > 80 || latitude < -80 {
			step--
		}
	}

	/* Frame to valid range. */
	if step < 1 {
		step = 1
	} else if step > 26 {
		step = 26
	}
	return uint8(step)

}

func GetNeighbors(hash HashBits) *Neighbors {
	neighbors := &Neighbors{
		East:      hash,
		West:      hash,
		North:     hash,
		South:     hash,
		SouthEast: hash,
		SouthWest: hash,
		NorthEast: hash,
		NorthWest: hash,
	}

	moveX(&(neighbors.East), 1)
	moveY(&(neighbors.East), 0)

	moveX(&(neighbors.West), -1)
	moveY(&(neighbors.West), 0)

	moveX(&(neighbors.South), 0)
	moveY(&(neighbors.South), -1)

	moveX(&(neighbors.North), 0)
	moveY(&(neighbors.North), 1)

	moveX(&(neighbors.NorthWest), -1)
	moveY(&(neighbors.NorthWest), 1)

	moveX(&(neighbors.NorthEast), 1)
	moveY(&(neighbors.NorthEast), 1)

	moveX(&(neighbors.SouthEast), 1)
	moveY(&(neighbors.SouthEast), -1)

	moveX(&(neighbors.SouthWest), -1)
	moveY(&(neighbors.SouthWest), -1)

	return neighbors
}

func moveX(hash *HashBits, d int8) *HashBits {
	if d == 0 {
		return hash
	}

	var xmask, ymask uint64 = 0xaaaaaaaaaaaaaaaa, 0x5555555555555555
	var x uint64 = hash.Bits & xmask
	var y uint64 = hash.Bits & ymask

	var zz uint64 = ymask >> (64 - hash.Step*2)

	if d > 0 {
		x = x + (zz + 1)
	} else {
		x = x | zz
		x = x - (zz + 1)
	}

	x &= (xmask >> (64 - hash.Step*2))
	hash.Bits = (x | y)
	return hash
}

func moveY(hash *HashBits, d int8) *HashBits {
	if d == 0 {
		return hash
	}

	var xmask, ymask uint64 = 0xaaaaaaaaaaaaaaaa, 0x5555555555555555

	var x uint64 = hash.Bits & xmask
	var y uint64 = hash.Bits & ymask

	var zz uint64 = xmask >> (64 - hash.Step*2)
	if d > 0 {
		y = y + (zz + 1)
	} else {
		y = y | zz
		y = y - (zz + 1)
	}
	y &= (ymask >> (64 - hash.Step*2))
	hash.Bits = (x | y)
	return hash
}

// GeoHashString returns the standard 11 characters geohash of a 52 bits
// hash. The internal hash uses [-85.05112878, 85.05112878] as latitude
// range, so the position is decoded and encoded again using the standard
// ranges.
func GeoHashString(hash uint64) (string, error) {
	if hash>>(WGS84_GEO_STEP*2) != 0 {
		return "", ErrHashOutOfMaxRange
	}
	longitude, latitude := DecodeToLongLatWGS84(hash)
	code, err := Encode(
		&Range{Max: 180, Min: -180},
		&Range{Max: 90, Min: -90},
		longitude,
		latitude,
		WGS84_GEO_STEP)
	if err != nil {
		return "", err
	}
	return string(EncodeToBase32(code.Bits)), nil
}
