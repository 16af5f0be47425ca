// Package geo implements the coordinate and statistical-region
// arithmetic shared by every other package: great-circle distance,
// tile indexing, and bounding-box containment.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// earthRadiusMiles is the Earth-radius constant used throughout the
// resolver. Fixed by spec: 3963.191 miles.
const earthRadiusMiles = 3963.191

// sentinelDistance is returned by SphereDist when floating point error
// pushes the clamped cosine outside a sane tolerance.
const sentinelDistance = 1e6

// Coord is a geographic coordinate. Lat is in [-90, 90]; Long wraps at
// the antimeridian and is not itself clamped to any canonical range by
// this type (callers normalize via NormalizeLong where it matters).
type Coord struct {
	Lat  float64
	Long float64
}

// NormalizeLong wraps a longitude value into [-180, 180).
func NormalizeLong(long float64) float64 {
	long = math.Mod(long+180, 360)
	if long < 0 {
		long += 360
	}
	return long - 180
}

// SphereDist returns the great-circle distance between p and q in
// miles, using the spherical law of cosines. cos(angle) is clamped to
// [-1, 1]; if the raw value strays further than 1.000001 from that
// range (floating point blowup on antipodal/near-antipodal points),
// the sentinel large distance is returned instead of a NaN.
func SphereDist(p, q Coord) float64 {
	lat1, lon1 := p.Lat*math.Pi/180, p.Long*math.Pi/180
	lat2, lon2 := q.Lat*math.Pi/180, q.Long*math.Pi/180

	cosAngle := math.Sin(lat1)*math.Sin(lat2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon1-lon2)

	if cosAngle > 1 {
		if cosAngle > 1.000001 {
			return sentinelDistance
		}
		cosAngle = 1
	} else if cosAngle < -1 {
		if cosAngle < -1.000001 {
			return sentinelDistance
		}
		cosAngle = -1
	}

	return earthRadiusMiles * math.Acos(cosAngle)
}

// DegreesDist returns the absolute angular distance between two
// coordinates' great-circle separation expressed in degrees, used by
// the evaluator's degree-error breakdown.
func DegreesDist(p, q Coord) float64 {
	return SphereDist(p, q) / (2 * math.Pi * earthRadiusMiles / 360)
}

// TileIndex identifies one cell of the degrees-per-region grid.
type TileIndex struct {
	I, J int
}

// Params holds the grid sizing the rest of this package's functions
// are parameterized by: the tile edge length in degrees and the width
// (in tiles) of one statistical region.
type Params struct {
	DegreesPerRegion  float64
	WidthOfStatRegion int
}

// CoordToTile maps a coordinate to the tile that contains it.
func (p Params) CoordToTile(c Coord) TileIndex {
	return TileIndex{
		I: int(math.Floor(c.Lat / p.DegreesPerRegion)),
		J: int(math.Floor(c.Long / p.DegreesPerRegion)),
	}
}

// CoordToStatRegion maps a coordinate to the south-west TileIndex of
// the statistical region that would be centered nearest to it: shift
// back by (W-1)/2 tiles (clamping latitude, wrapping longitude),
// then tile-index the shifted point.
func (p Params) CoordToStatRegion(c Coord) TileIndex {
	half := (float64(p.WidthOfStatRegion-1) / 2) * p.DegreesPerRegion
	lat := c.Lat - half
	if lat < -90 {
		lat = -90
	}
	long := NormalizeLong(c.Long - half)
	return p.CoordToTile(Coord{Lat: lat, Long: long})
}

// StatRegionCenter returns the approximate center coordinate of the
// statistical region whose south-west tile is sw.
func (p Params) StatRegionCenter(sw TileIndex) Coord {
	shift := (float64(p.WidthOfStatRegion) / 2) * p.DegreesPerRegion
	lat := float64(sw.I)*p.DegreesPerRegion + shift
	if lat > 90 {
		lat = 90
	}
	long := NormalizeLong(float64(sw.J)*p.DegreesPerRegion + shift)
	return Coord{Lat: lat, Long: long}
}

// BoundingBox is an axis-aligned lat/long rectangle, inclusive on all
// four sides. It does not handle antimeridian crossing: Min.Long is
// assumed <= Max.Long.
type BoundingBox struct {
	bound orb.Bound
}

// EmptyBoundingBox returns a bounding box that contains nothing, ready
// to be grown with Extend.
func EmptyBoundingBox() BoundingBox {
	return BoundingBox{bound: orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}}
}

// Extend grows the box, if necessary, to include c.
func (b BoundingBox) Extend(c Coord) BoundingBox {
	b.bound = b.bound.Extend(orb.Point{c.Long, c.Lat})
	return b
}

// Contains reports whether c falls within the box, inclusive on all
// sides.
func (b BoundingBox) Contains(c Coord) bool {
	return b.bound.Contains(orb.Point{c.Long, c.Lat})
}

// IsEmpty reports whether the box has never been extended.
func (b BoundingBox) IsEmpty() bool {
	return math.IsInf(b.bound.Min[0], 1)
}

// Min returns the south-west corner.
func (b BoundingBox) Min() Coord { return Coord{Lat: b.bound.Min[1], Long: b.bound.Min[0]} }

// Max returns the north-east corner.
func (b BoundingBox) Max() Coord { return Coord{Lat: b.bound.Max[1], Long: b.bound.Max[0]} }

// HullOf computes the bounding box that tightly encloses every
// coordinate in cs. Used by Division boundary computation: the
// reference design retains every locality (the outlier filter is
// disabled), so this is a plain axis-aligned hull, not a robust one.
func HullOf(cs []Coord) BoundingBox {
	b := EmptyBoundingBox()
	for _, c := range cs {
		b = b.Extend(c)
	}
	return b
}
