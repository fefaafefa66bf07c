package geohash

type Range struct {
	Max float64
	Min float64
}

func (r *Range) IsZero() bool {
	return r.Max == 0 && r.Min == 0
}

type Point struct {
	Longitude float64
	Latitude  float64
}

type HashBits struct {
	Bits uint64
	Step uint8
}

func (hash HashBits) IsZero() bool {
	return hash.Bits == 0 && hash.Step == 0
}

func (hash *HashBits) Clean() {
	hash.Bits = 0
	hash.Step = 0
}

type Neighbors struct {
	North     HashBits
	East      HashBits
	West      HashBits
	South     HashBits
	NorthEast HashBits
	SouthEast HashBits
	NorthWest HashBits
	SouthWest HashBits
}

type Area struct {
	Hash      HashBits
	Longitude Range
	Latitude  Range
}

// Radius is the centre cell of a search together with its eight
// neighbors. Cleaned neighbors do not need to be scanned.
type Radius struct {
	Area
	Hash HashBits
	*Neighbors
}

// Cells returns the centre cell followed by the neighbors in a fixed order:
// centre, N, S, E, W, NE, NW, SE, SW.
func (r *Radius) Cells() [9]HashBits {
	return [9]HashBits{
		r.Hash,
		r.North,
		r.South,
		r.East,
		r.West,
		r.NorthEast,
		r.NorthWest,
		r.SouthEast,
		r.SouthWest,
	}
}
