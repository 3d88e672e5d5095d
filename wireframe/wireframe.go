// Package wireframe reconstructs closed planar polygons from an unordered
// collection of 3D line segments, such as the roof faces of a building from
// its ridge and edge wireframe. The pipeline builds a pruned adjacency graph,
// annotates every directed connection with the planes it shares at its
// destination junction, traces plane-consistent closed loops, validates and
// canonically orients them, and finally drops loops made redundant by a
// containing face that shares an edge with them.
package wireframe

// Polygonalize runs the full pipeline on the input segments at a single
// coplanarity tolerance and returns the fundamental polygons.
func Polygonalize(lines []Connection, epsilon float64) []*Polygon {
	graph := NewPathGraphBuilder(lines, epsilon).Build()
	paths := NewPathBuilder(graph).Build()

	polygons := make([]*Polygon, 0, paths.Len())
	for _, path := range paths.Paths() {
		polygons = append(polygons, NewPolygon(path))
	}
	return FilterFundamental(polygons)
}

// PolygonalizeSweep traces the segments at every given tolerance, unions the
// discovered loops, and filters once. Sweeping several tolerances recovers
// faces whose planes are too tight for one epsilon and too loose for another;
// the set-based loop identity deduplicates faces found at more than one.
func PolygonalizeSweep(lines []Connection, epsilons []float64) []*Polygon {
	paths := NewPathSet()
	for _, epsilon := range epsilons {
		graph := NewPathGraphBuilder(lines, epsilon).Build()
		for _, path := range NewPathBuilder(graph).Build().Paths() {
			paths.Add(path)
		}
	}

	polygons := make([]*Polygon, 0, paths.Len())
	for _, path := range paths.Paths() {
		polygons = append(polygons, NewPolygon(path))
	}
	return FilterFundamental(polygons)
}
