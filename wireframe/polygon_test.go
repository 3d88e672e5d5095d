package wireframe

import "testing"

func squarePolygon() *Polygon {
	return NewPolygon(NewPath([]Coordinates{
		pt(0, 0, 0), pt(1, 0, 0), pt(1, 1, 0), pt(0, 1, 0),
	}))
}

// The two triangles subdivide the square along its diagonal; all three are
// wound upward.
func trianglePolygons() (*Polygon, *Polygon) {
	lowerRight := NewPolygon(NewPath([]Coordinates{
		pt(0, 0, 0), pt(1, 0, 0), pt(1, 1, 0),
	}))
	upperLeft := NewPolygon(NewPath([]Coordinates{
		pt(0, 0, 0), pt(1, 1, 0), pt(0, 1, 0),
	}))
	return lowerRight, upperLeft
}

func TestNewPolygon_Bounds(t *testing.T) {
	polygon := NewPolygon(NewPath([]Coordinates{
		pt(-1, 2, 0), pt(3, 2, 5), pt(3, 7, 5), pt(-1, 7, 0),
	}))

	if polygon.Min.X != -1 || polygon.Min.Y != 2 {
		t.Errorf("Min = %+v, want x=-1 y=2", polygon.Min)
	}
	if polygon.Max.X != 3 || polygon.Max.Y != 7 {
		t.Errorf("Max = %+v, want x=3 y=7", polygon.Max)
	}
	if polygon.rect == nil {
		t.Error("Bounds() must yield a rectangle")
	}
}

func TestNewPolygon_DegenerateFootprint(t *testing.T) {
	// A vertical face projects to a line; the bounding rectangle is padded
	// so spatial indexing still works.
	vertical := NewPolygon(NewPath([]Coordinates{
		pt(0, 0, 0), pt(1, 0, 0), pt(1, 0, 1), pt(0, 0, 1),
	}))

	if vertical.rect == nil {
		t.Fatal("degenerate footprint must still have bounds")
	}
	if filtered := FilterFundamental([]*Polygon{vertical}); len(filtered) != 1 {
		t.Errorf("FilterFundamental() = %d, want the vertical face kept", len(filtered))
	}
}

func TestPolygon_ContainsPoint(t *testing.T) {
	square := squarePolygon()

	tests := []struct {
		name  string
		point Coordinates
		want  bool
	}{
		{"interior", pt(0.5, 0.5, 0), true},
		{"vertex", pt(1, 1, 0), true},
		{"outside", pt(2, 0.5, 0), false},
		{"outside below", pt(0.5, -0.5, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := square.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%+v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestPolygon_SharesSidesWithIsDirected(t *testing.T) {
	square := squarePolygon()
	lowerRight, _ := trianglePolygons()

	if !square.SharesSidesWith(lowerRight) {
		t.Error("square and triangle share the directed bottom edge")
	}

	reversed := NewPolygon(NewPath([]Coordinates{
		pt(0, 1, 0), pt(1, 1, 0), pt(1, 0, 0), pt(0, 0, 0),
	}))
	if square.SharesSidesWith(reversed) {
		t.Error("opposite windings traverse every edge in opposite directions")
	}
}

func TestPolygon_Contains(t *testing.T) {
	square := squarePolygon()
	lowerRight, upperLeft := trianglePolygons()

	if !square.Contains(lowerRight) || !square.Contains(upperLeft) {
		t.Error("square must contain its subdividing triangles")
	}
	if lowerRight.Contains(square) {
		t.Error("a triangle does not contain the square")
	}

	far := NewPolygon(NewPath([]Coordinates{
		pt(5, 5, 0), pt(6, 5, 0), pt(6, 6, 0), pt(5, 6, 0),
	}))
	if square.Contains(far) {
		t.Error("disjoint polygons do not contain each other")
	}
}

func TestFilterFundamental_DropsContainedSubdivisions(t *testing.T) {
	square := squarePolygon()
	lowerRight, upperLeft := trianglePolygons()

	filtered := FilterFundamental([]*Polygon{square, lowerRight, upperLeft})
	if len(filtered) != 1 {
		t.Fatalf("FilterFundamental() = %d polygons, want 1", len(filtered))
	}
	if filtered[0] != square {
		t.Error("the containing face must survive")
	}
}

func TestFilterFundamental_KeepsContainmentWithoutSharedEdge(t *testing.T) {
	outer := NewPolygon(NewPath([]Coordinates{
		pt(0, 0, 0), pt(4, 0, 0), pt(4, 4, 0), pt(0, 4, 0),
	}))
	inner := NewPolygon(NewPath([]Coordinates{
		pt(1, 1, 0), pt(2, 1, 0), pt(2, 2, 0), pt(1, 2, 0),
	}))

	filtered := FilterFundamental([]*Polygon{outer, inner})
	if len(filtered) != 2 {
		t.Errorf("FilterFundamental() = %d polygons, want both kept", len(filtered))
	}
}

func TestFilterFundamental_MatchesLinearReference(t *testing.T) {
	square := squarePolygon()
	lowerRight, upperLeft := trianglePolygons()
	far := NewPolygon(NewPath([]Coordinates{
		pt(10, 10, 0), pt(11, 10, 0), pt(11, 11, 0), pt(10, 11, 0),
	}))

	input := []*Polygon{square, lowerRight, upperLeft, far}

	indexed := FilterFundamental(input)
	linear := filterFundamentalLinear(input)

	if len(indexed) != len(linear) {
		t.Fatalf("indexed filter kept %d, linear kept %d", len(indexed), len(linear))
	}
	for i := range indexed {
		if indexed[i] != linear[i] {
			t.Errorf("filter outputs diverge at %d", i)
		}
	}
}

func TestFilterFundamental_Empty(t *testing.T) {
	if filtered := FilterFundamental(nil); len(filtered) != 0 {
		t.Errorf("FilterFundamental(nil) = %d, want 0", len(filtered))
	}
}
