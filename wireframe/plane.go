package wireframe

import "math"

// plane is a concrete plane through the origin: a canonical normal (z forced
// non-negative) plus an orthonormal basis spanning it.
type plane struct {
	normal Vector
	u, v   Vector
}

// PlaneMatcher represents either a concrete plane or the absence of one.
// The undefined state appears when the defining vectors are collinear and
// carries no geometric constraint, which lets junction code treat zero, one,
// or many distinguishable planes uniformly.
type PlaneMatcher struct {
	plane   *plane
	epsilon float64
}

// UndefinedPlane returns a matcher with no plane.
func UndefinedPlane(epsilon float64) PlaneMatcher {
	return PlaneMatcher{epsilon: epsilon}
}

// PlaneBetween builds the plane spanned by the two vectors. When the cross
// product does not normalize within epsilon the vectors are collinear and the
// result is undefined.
func PlaneBetween(current, successor Vector, epsilon float64) PlaneMatcher {
	normal, ok := current.Cross(successor).Normalize(epsilon)
	if !ok {
		return UndefinedPlane(epsilon)
	}
	if normal.Z < 0 {
		normal = normal.Rescale(-1)
	}

	// The in-plane reference direction is the coordinate axis least parallel
	// to the normal, so repeated construction from the same normal is
	// bit-identical across runs.
	u, _ := normal.Cross(referenceAxis(normal)).Normalize(math.SmallestNonzeroFloat64)
	v, _ := normal.Cross(u).Normalize(math.SmallestNonzeroFloat64)

	return PlaneMatcher{
		plane:   &plane{normal: normal, u: u, v: v},
		epsilon: epsilon,
	}
}

// referenceAxis picks the coordinate axis with the smallest projection onto
// the normal. The cross product with the normal then has the largest norm of
// the three candidates and is never degenerate for a unit normal.
func referenceAxis(normal Vector) Vector {
	ax, ay, az := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	switch {
	case ax <= ay && ax <= az:
		return Vector{X: 1}
	case ay <= az:
		return Vector{Y: 1}
	default:
		return Vector{Z: 1}
	}
}

// IsUndefined reports whether no plane could be fit.
func (m PlaneMatcher) IsUndefined() bool {
	return m.plane == nil
}

// SameAs reports whether both matchers hold concrete planes whose normals are
// parallel within the matcher's epsilon. An undefined plane matches nothing.
func (m PlaneMatcher) SameAs(other PlaneMatcher) bool {
	if m.plane == nil || other.plane == nil {
		return false
	}
	return m.plane.normal.IsParallelTo(other.plane.normal, m.epsilon)
}

// MatchAgainst merges the matcher with a traversal plane. When both sides are
// concrete it succeeds if the normals are epsilon-parallel, or unconditionally
// when relaxed is set (a junction with a single continuation has no plane
// ambiguity to resolve). When exactly one side is concrete that side wins.
// Two undefined planes do not match.
func (m PlaneMatcher) MatchAgainst(other PlaneMatcher, relaxed bool) (PlaneMatcher, bool) {
	switch {
	case m.plane != nil && other.plane != nil:
		if relaxed || m.plane.normal.IsParallelTo(other.plane.normal, m.epsilon) {
			return m, true
		}
		return PlaneMatcher{}, false
	case m.plane != nil:
		return m, true
	case other.plane != nil:
		return other, true
	default:
		return PlaneMatcher{}, false
	}
}

// CoplanarityWith returns the norm of the cross product of the two normals, a
// continuous measure of how far apart the planes are. It reports false when
// either side is undefined. Junction bucketing uses it to pick the best
// matching registered plane rather than merely the first one below epsilon,
// which avoids fragmenting a sheaf of nearly coplanar edges across several
// marginal planes.
func (m PlaneMatcher) CoplanarityWith(other PlaneMatcher) (float64, bool) {
	if m.plane == nil || other.plane == nil {
		return 0, false
	}
	return m.plane.normal.Cross(other.plane.normal).Norm(), true
}

// Project expresses the vector in the plane's local (u, v, normal) frame and
// renormalizes. It reports false for an undefined plane or a near-zero result.
func (m PlaneMatcher) Project(vector Vector) (Vector, bool) {
	if m.plane == nil {
		return Vector{}, false
	}
	projected := Vector{
		X: m.plane.u.Dot(vector),
		Y: m.plane.v.Dot(vector),
		Z: m.plane.normal.Dot(vector),
	}
	return projected.Normalize(m.epsilon)
}

// ProjectAngleBetween projects both vectors onto the plane and returns the
// clockwise angle from current to successor in [0, 2π). A straight
// continuation measures π; smaller values turn harder clockwise.
func (m PlaneMatcher) ProjectAngleBetween(current, successor Vector) (float64, bool) {
	u, ok := m.Project(current)
	if !ok {
		return 0, false
	}
	v, ok := m.Project(successor)
	if !ok {
		return 0, false
	}
	return math.Pi + math.Atan2(v.Y*u.X-v.X*u.Y, u.X*v.X+u.Y*v.Y), true
}
