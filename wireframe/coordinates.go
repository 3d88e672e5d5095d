package wireframe

import "math"

// Coordinates is a point in 3D space. It is used directly as a graph key, so
// two points name the same junction iff their components are bit-identical.
// Graph keys are always taken from the input, never reconstructed, and the
// epsilon-tolerant predicates for plane and angle reasoning never apply here.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Less orders points lexicographically by (x, y, z). It is used to sort the
// vertex set when computing order-independent polygon identity.
func (c Coordinates) Less(other Coordinates) bool {
	if c.X != other.X {
		return c.X < other.X
	}
	if c.Y != other.Y {
		return c.Y < other.Y
	}
	return c.Z < other.Z
}

// Connection is the directed form of an undirected input segment. A single
// segment yields two connections, one per traversal direction.
type Connection struct {
	From Coordinates
	To   Coordinates
}

// Vector is a displacement or direction in 3D space.
type Vector struct {
	X float64
	Y float64
	Z float64
}

// VectorOf returns the displacement from a connection's origin to its
// destination.
func VectorOf(c Connection) Vector {
	return Vector{
		X: c.To.X - c.From.X,
		Y: c.To.Y - c.From.Y,
		Z: c.To.Z - c.From.Z,
	}
}

// Norm returns the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Rescale multiplies every component by the given factor.
func (v Vector) Rescale(multiplier float64) Vector {
	return Vector{X: multiplier * v.X, Y: multiplier * v.Y, Z: multiplier * v.Z}
}

// Normalize returns the unit vector in the same direction. It reports false
// when the norm is at or below epsilon, in which case the direction carries
// no usable information.
func (v Vector) Normalize(epsilon float64) (Vector, bool) {
	norm := v.Norm()
	if norm <= epsilon {
		return Vector{}, false
	}
	return v.Rescale(1 / norm), true
}

// Dot returns the dot product with other.
func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product with other.
func (v Vector) Cross(other Vector) Vector {
	return Vector{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Normal returns the normalized cross product of the two vectors, reporting
// false when they are collinear within epsilon.
func (v Vector) Normal(other Vector, epsilon float64) (Vector, bool) {
	return v.Cross(other).Normalize(epsilon)
}

// IsParallelTo reports whether the two vectors are parallel within epsilon,
// measured as the norm of their cross product.
func (v Vector) IsParallelTo(other Vector, epsilon float64) bool {
	return v.Cross(other).Norm() <= epsilon
}
