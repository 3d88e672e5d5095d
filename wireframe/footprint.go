package wireframe

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// FootprintRing projects the polygon onto the x-y plane as an orb ring.
// Output consumers reason about roof faces through their 2D footprint: the
// face's planar area and center, independent of its slope.
func FootprintRing(p *Polygon) orb.Ring {
	ring := make(orb.Ring, len(p.Path.Sequence))
	for i, vertex := range p.Path.Sequence {
		ring[i] = orb.Point{vertex.X, vertex.Y}
	}
	return ring
}

// FootprintArea returns the absolute planar area of the polygon's footprint.
func FootprintArea(p *Polygon) float64 {
	return math.Abs(planar.Area(FootprintRing(p)))
}

// FootprintCenter returns the center of the footprint's bounding box.
func FootprintCenter(p *Polygon) orb.Point {
	return FootprintRing(p).Bound().Center()
}
