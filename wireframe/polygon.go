package wireframe

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// minRectExtent pads degenerate bounding boxes so they remain valid R-tree
// rectangles. A polygon on a vertical plane projects to a line in the x-y
// footprint and would otherwise have a zero-extent box. The padding only
// widens candidate search; exact containment checks follow.
const minRectExtent = 1e-9

// Polygon wraps a traced path with its x-y bounding box for containment
// filtering.
type Polygon struct {
	Path     *Path
	Min, Max Coordinates
	rect     *rtreego.Rect
}

// NewPolygon derives the bounding box of the path's footprint.
func NewPolygon(path *Path) *Polygon {
	minimum := Coordinates{X: math.Inf(1), Y: math.Inf(1), Z: math.NaN()}
	maximum := Coordinates{X: math.Inf(-1), Y: math.Inf(-1), Z: math.NaN()}

	for _, vertex := range path.Sequence {
		minimum.X = math.Min(minimum.X, vertex.X)
		maximum.X = math.Max(maximum.X, vertex.X)
		minimum.Y = math.Min(minimum.Y, vertex.Y)
		maximum.Y = math.Max(maximum.Y, vertex.Y)
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{minimum.X, minimum.Y},
		[]float64{
			math.Max(maximum.X-minimum.X, minRectExtent),
			math.Max(maximum.Y-minimum.Y, minRectExtent),
		},
	)
	polygon := &Polygon{Path: path, Min: minimum, Max: maximum}
	if err == nil {
		polygon.rect = &rect
	}
	return polygon
}

// Bounds implements rtreego.Spatial.
func (p *Polygon) Bounds() rtreego.Rect { return *p.rect }

// containsBoundaryOf reports whether the other polygon's bounding box lies
// inside this polygon's bounding box.
func (p *Polygon) containsBoundaryOf(other *Polygon) bool {
	return p.Min.X <= other.Min.X && p.Max.X >= other.Max.X &&
		p.Min.Y <= other.Min.Y && p.Max.Y >= other.Max.Y
}

// ContainsPoint reports whether the point lies inside or on the polygon's
// footprint. Vertices of the polygon count as inside; interior membership is
// decided by casting a horizontal ray and counting boundary crossings.
func (p *Polygon) ContainsPoint(point Coordinates) bool {
	if p.Path.Contains(point) {
		return true
	}

	n := len(p.Path.Sequence) - 1
	inside := false
	for i := 0; i < n; i++ {
		a := p.Path.Sequence[i]
		b := p.Path.Sequence[(i+1)%n]
		if (a.Y > point.Y) != (b.Y > point.Y) &&
			point.X < a.X+(point.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y) {
			inside = !inside
		}
	}
	return inside
}

// SharesSidesWith reports whether the two polygons have a directed edge in
// common: the same two endpoints, traversed in the same order. With both
// windings canonicalized upward, a shared directed edge is the signature of
// one face being a subdivision of the other rather than two faces that merely
// touch.
func (p *Polygon) SharesSidesWith(other *Polygon) bool {
	for i := 0; i < len(p.Path.Sequence)-1; i++ {
		for j := 0; j < len(other.Path.Sequence)-1; j++ {
			if p.Path.Sequence[i] == other.Path.Sequence[j] &&
				p.Path.Sequence[i+1] == other.Path.Sequence[j+1] {
				return true
			}
		}
	}
	return false
}

// Contains reports whether every vertex of the other polygon lies inside or
// on this polygon, short-circuiting on the bounding boxes.
func (p *Polygon) Contains(other *Polygon) bool {
	if !p.containsBoundaryOf(other) {
		return false
	}
	for _, vertex := range other.Path.Sequence {
		if !p.ContainsPoint(vertex) {
			return false
		}
	}
	return true
}

// redundant reports whether the polygon is made redundant by any candidate:
// another polygon that both contains it and shares a directed edge with it.
// Pure containment without a shared edge means two unrelated faces and keeps
// both.
func redundant(polygon *Polygon, candidates []*Polygon) bool {
	for _, other := range candidates {
		if other.Path == polygon.Path {
			continue
		}
		if other.Contains(polygon) && other.SharesSidesWith(polygon) {
			return true
		}
	}
	return false
}

// FilterFundamental removes every polygon contained in, and edge-sharing
// with, another polygon of the set: such a loop traces the same physical face
// as its container, reached through an internal subdivision line. Candidate
// containers are narrowed with an R-tree over the footprint bounding boxes
// before the exact test runs.
func FilterFundamental(polygons []*Polygon) []*Polygon {
	if len(polygons) == 0 {
		return nil
	}

	tree := rtreego.NewTree(2, 2, 8)
	for _, polygon := range polygons {
		if polygon.rect != nil {
			tree.Insert(polygon)
		}
	}

	fundamental := make([]*Polygon, 0, len(polygons))
	for _, polygon := range polygons {
		var candidates []*Polygon
		if polygon.rect != nil {
			for _, spatial := range tree.SearchIntersect(*polygon.rect) {
				candidates = append(candidates, spatial.(*Polygon))
			}
		} else {
			candidates = polygons
		}
		if !redundant(polygon, candidates) {
			fundamental = append(fundamental, polygon)
		}
	}
	return fundamental
}

// filterFundamentalLinear is the all-pairs reference used to cross-check the
// R-tree variant in tests.
func filterFundamentalLinear(polygons []*Polygon) []*Polygon {
	fundamental := make([]*Polygon, 0, len(polygons))
	for _, polygon := range polygons {
		if !redundant(polygon, polygons) {
			fundamental = append(fundamental, polygon)
		}
	}
	return fundamental
}
