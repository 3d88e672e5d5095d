package wireframe

import (
	"math"
	"testing"
)

// xyPlane spans z=0 with its canonical upward normal.
func xyPlane(epsilon float64) PlaneMatcher {
	return PlaneBetween(Vector{X: 1}, Vector{Y: 1}, epsilon)
}

func TestPlaneBetween_CollinearIsUndefined(t *testing.T) {
	matcher := PlaneBetween(Vector{X: 1}, Vector{X: 2}, 0.1)
	if !matcher.IsUndefined() {
		t.Error("collinear vectors must yield an undefined plane")
	}
}

func TestPlaneBetween_CanonicalNormal(t *testing.T) {
	// The two argument orders produce opposite cross products, but the
	// normal is canonicalized, so both describe the same plane.
	a := PlaneBetween(Vector{X: 1}, Vector{Y: 1}, 0.1)
	b := PlaneBetween(Vector{Y: 1}, Vector{X: 1}, 0.1)

	if a.IsUndefined() || b.IsUndefined() {
		t.Fatal("orthogonal vectors must define a plane")
	}
	if !a.SameAs(b) {
		t.Error("argument order must not change the plane")
	}
}

func TestPlaneMatcher_SameAs(t *testing.T) {
	xy := xyPlane(0.1)
	xz := PlaneBetween(Vector{X: 1}, Vector{Z: 1}, 0.1)

	if xy.SameAs(xz) {
		t.Error("orthogonal planes must not match")
	}
	if xy.SameAs(UndefinedPlane(0.1)) {
		t.Error("undefined plane matches nothing")
	}
	if UndefinedPlane(0.1).SameAs(UndefinedPlane(0.1)) {
		t.Error("two undefined planes must not match")
	}
}

func TestPlaneMatcher_MatchAgainst(t *testing.T) {
	xy := xyPlane(0.1)
	xz := PlaneBetween(Vector{X: 1}, Vector{Z: 1}, 0.1)
	undefined := UndefinedPlane(0.1)

	if _, ok := xy.MatchAgainst(xy, false); !ok {
		t.Error("a plane must match itself")
	}
	if _, ok := xy.MatchAgainst(xz, false); ok {
		t.Error("orthogonal planes must not match strictly")
	}
	if merged, ok := xy.MatchAgainst(xz, true); !ok || !merged.SameAs(xy) {
		t.Error("relaxed matching keeps the candidate's plane")
	}
	if merged, ok := xy.MatchAgainst(undefined, false); !ok || !merged.SameAs(xy) {
		t.Error("defined side wins over undefined")
	}
	if merged, ok := undefined.MatchAgainst(xy, false); !ok || !merged.SameAs(xy) {
		t.Error("defined side wins over undefined, either way around")
	}
	if _, ok := undefined.MatchAgainst(undefined, false); ok {
		t.Error("two undefined planes must not match")
	}
}

func TestPlaneMatcher_CoplanarityWith(t *testing.T) {
	xy := xyPlane(0.1)
	xz := PlaneBetween(Vector{X: 1}, Vector{Z: 1}, 0.1)

	same, ok := xy.CoplanarityWith(xyPlane(0.1))
	if !ok || math.Abs(same) > 1e-12 {
		t.Errorf("CoplanarityWith(same plane) = %v, %v, want 0", same, ok)
	}

	orthogonal, ok := xy.CoplanarityWith(xz)
	if !ok || math.Abs(orthogonal-1) > 1e-12 {
		t.Errorf("CoplanarityWith(orthogonal plane) = %v, %v, want 1", orthogonal, ok)
	}

	if _, ok := xy.CoplanarityWith(UndefinedPlane(0.1)); ok {
		t.Error("coplanarity with an undefined plane is undefined")
	}
}

func TestPlaneMatcher_Project(t *testing.T) {
	xy := xyPlane(0.1)

	projected, ok := xy.Project(Vector{Z: 2})
	if !ok {
		t.Fatal("Project() failed for the normal direction")
	}
	// The normal component lands in the local z slot.
	if math.Abs(projected.X) > 1e-12 || math.Abs(projected.Y) > 1e-12 || math.Abs(projected.Z-1) > 1e-12 {
		t.Errorf("Project(normal) = %+v, want local (0, 0, 1)", projected)
	}

	if _, ok := UndefinedPlane(0.1).Project(Vector{X: 1}); ok {
		t.Error("Project() on an undefined plane must fail")
	}
	if _, ok := xy.Project(Vector{}); ok {
		t.Error("Project() of a zero vector must fail")
	}
}

func TestPlaneMatcher_ProjectAngleBetween(t *testing.T) {
	xy := xyPlane(0.1)

	tests := []struct {
		name      string
		successor Vector
		want      float64
	}{
		{"straight continuation", Vector{X: 1}, math.Pi},
		{"right turn is a small clockwise angle", Vector{Y: -1}, math.Pi / 2},
		{"left turn is a large clockwise angle", Vector{Y: 1}, 3 * math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			angle, ok := xy.ProjectAngleBetween(Vector{X: 1}, tt.successor)
			if !ok {
				t.Fatal("ProjectAngleBetween() failed")
			}
			if math.Abs(angle-tt.want) > 1e-9 {
				t.Errorf("angle = %v, want %v", angle, tt.want)
			}
		})
	}
}

func TestPlaneMatcher_ProjectAngleBetween_Undefined(t *testing.T) {
	if _, ok := UndefinedPlane(0.1).ProjectAngleBetween(Vector{X: 1}, Vector{Y: 1}); ok {
		t.Error("angle on an undefined plane must fail")
	}
}
