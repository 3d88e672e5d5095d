package wireframe

import "math"

// The path graph is built in two stages. PathGraphBuilder first folds the raw
// undirected segments into an adjacency structure and prunes dangling dead-end
// chains, since a dead end can never close into a polygon. Build then derives,
// for every directed connection arriving at a junction, the set of planes that
// connection shares with the other edges at that junction, keeping per plane
// only the continuation with the smallest clockwise turning angle.
//
// Both structures preserve insertion order everywhere (a slice beside each
// map). Map iteration order in Go is randomized, and the traversal that runs
// on top of this graph must visit roots and successors in a reproducible
// order to yield the same polygon set on every run.

// neighborSet is an insertion-ordered set of adjacent junctions. Removal
// swaps with the last element, so it stays O(1) without losing determinism.
type neighborSet struct {
	order []Coordinates
	index map[Coordinates]int
}

func newNeighborSet() *neighborSet {
	return &neighborSet{index: make(map[Coordinates]int)}
}

func (s *neighborSet) add(c Coordinates) {
	if _, ok := s.index[c]; ok {
		return
	}
	s.index[c] = len(s.order)
	s.order = append(s.order, c)
}

func (s *neighborSet) remove(c Coordinates) {
	at, ok := s.index[c]
	if !ok {
		return
	}
	last := len(s.order) - 1
	s.order[at] = s.order[last]
	s.index[s.order[at]] = at
	s.order = s.order[:last]
	delete(s.index, c)
}

func (s *neighborSet) len() int { return len(s.order) }

// adjacency maps each junction to its directly connected junctions.
type adjacency struct {
	nodes     []Coordinates
	neighbors map[Coordinates]*neighborSet
}

func (a *adjacency) at(c Coordinates) *neighborSet {
	set, ok := a.neighbors[c]
	if !ok {
		set = newNeighborSet()
		a.neighbors[c] = set
		a.nodes = append(a.nodes, c)
	}
	return set
}

// PathGraphBuilder holds the pruned adjacency from which the plane-annotated
// graph is derived.
type PathGraphBuilder struct {
	adjacencies *adjacency
	epsilon     float64
}

// PlaneSuccessor pairs a plane registered for a connection with the single
// continuation chosen for that plane.
type PlaneSuccessor struct {
	Matcher   PlaneMatcher
	Successor Connection
}

// PathGraph is the plane-annotated successor graph: for every directed
// connection, at most one continuation per distinguishable plane at the
// connection's destination junction. It is read-only once built.
type PathGraph struct {
	epsilon    float64
	order      []Connection
	successors map[Connection][]PlaneSuccessor
}

// Epsilon returns the coplanarity tolerance the graph was built with.
func (g *PathGraph) Epsilon() float64 { return g.epsilon }

// Connections returns every directed connection in insertion order.
func (g *PathGraph) Connections() []Connection { return g.order }

// Successors returns the (plane, continuation) pairs registered for the
// connection.
func (g *PathGraph) Successors(c Connection) []PlaneSuccessor { return g.successors[c] }

// NewPathGraphBuilder builds the undirected adjacency from the input segments
// and prunes dead ends. Pruning is iterative: removing a leaf can drop its
// neighbor to degree one, so candidate leaves are re-collected until none
// remain. Every junction that survives has degree >= 2.
func NewPathGraphBuilder(lines []Connection, epsilon float64) *PathGraphBuilder {
	adjacencies := &adjacency{neighbors: make(map[Coordinates]*neighborSet)}

	for _, line := range lines {
		adjacencies.at(line.From).add(line.To)
		adjacencies.at(line.To).add(line.From)
	}

	var leaves []Coordinates
	for _, node := range adjacencies.nodes {
		if adjacencies.neighbors[node].len() == 1 {
			leaves = append(leaves, node)
		}
	}

	for len(leaves) > 0 {
		var updated []Coordinates
		seen := make(map[Coordinates]struct{})

		for _, leaf := range leaves {
			set, ok := adjacencies.neighbors[leaf]
			if !ok {
				continue
			}
			if set.len() > 0 {
				adjacent := set.order[0]
				if adjacencies.neighbors[adjacent].len() <= 2 {
					if _, dup := seen[adjacent]; !dup {
						seen[adjacent] = struct{}{}
						updated = append(updated, adjacent)
					}
				}
				adjacencies.neighbors[adjacent].remove(leaf)
			}
			delete(adjacencies.neighbors, leaf)
		}

		leaves = updated
	}

	return &PathGraphBuilder{adjacencies: adjacencies, epsilon: epsilon}
}

// Nodes returns the surviving junctions in insertion order.
func (b *PathGraphBuilder) Nodes() []Coordinates {
	var nodes []Coordinates
	for _, node := range b.adjacencies.nodes {
		if _, ok := b.adjacencies.neighbors[node]; ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// Degree returns the number of junctions adjacent to the given one, or zero
// when the junction was pruned.
func (b *PathGraphBuilder) Degree(node Coordinates) int {
	if set, ok := b.adjacencies.neighbors[node]; ok {
		return set.len()
	}
	return 0
}

// projected is a candidate continuation with its clockwise turning angle on
// the bucket's plane. Collinear continuations have no angle and sort first,
// matching the ordering the tracer relies on.
type projected struct {
	successor Connection
	angle     float64
	hasAngle  bool
}

func projectedOn(matcher PlaneMatcher, incident, adjacent Connection) projected {
	angle, ok := matcher.ProjectAngleBetween(VectorOf(incident), VectorOf(adjacent))
	return projected{successor: adjacent, angle: angle, hasAngle: ok}
}

// before orders candidates by angle, with angle-less candidates first.
func (p projected) before(other projected) bool {
	if p.hasAngle != other.hasAngle {
		return !p.hasAngle
	}
	return p.angle < other.angle
}

// planeBucket collects the continuations registered for one plane of one
// incident connection before the minimum-angle collapse.
type planeBucket struct {
	matcher    PlaneMatcher
	candidates []projected
}

type deferredPair struct {
	incident Connection
	adjacent Connection
}

// Build derives the plane-annotated graph. For every ordered pair of distinct
// neighbors (u, v) of a junction J, the incident connection (u, J) and the
// adjacent connection (J, v) define a plane. A defined plane is merged into
// the already registered plane with the smallest coplanarity below epsilon,
// or registered fresh when none qualifies. Collinear pairs are deferred: a
// straight continuation is compatible with any plane, so after all junctions
// are processed it is appended to every defined plane of its incident
// connection and additionally registered under an explicit undefined entry.
func (b *PathGraphBuilder) Build() *PathGraph {
	order := make([]Connection, 0)
	buckets := make(map[Connection][]*planeBucket)
	var deferred []deferredPair
	deferredAt := make(map[Connection]int)

	ensure := func(c Connection) {
		if _, ok := buckets[c]; !ok {
			buckets[c] = nil
			order = append(order, c)
		}
	}

	for _, junction := range b.adjacencies.nodes {
		set, ok := b.adjacencies.neighbors[junction]
		if !ok {
			continue
		}
		for _, u := range set.order {
			incident := Connection{From: u, To: junction}
			ensure(incident)

			for _, v := range set.order {
				if u == v {
					continue
				}
				adjacent := Connection{From: junction, To: v}
				ensure(adjacent)

				matcher := PlaneBetween(VectorOf(incident), VectorOf(adjacent), b.epsilon)
				if matcher.IsUndefined() {
					if at, ok := deferredAt[incident]; ok {
						deferred[at].adjacent = adjacent
					} else {
						deferredAt[incident] = len(deferred)
						deferred = append(deferred, deferredPair{incident: incident, adjacent: adjacent})
					}
					continue
				}

				var matching *planeBucket
				coplanarity := math.Inf(1)
				for _, bucket := range buckets[incident] {
					if value, ok := bucket.matcher.CoplanarityWith(matcher); ok {
						if value < coplanarity && value <= b.epsilon {
							coplanarity = value
							matching = bucket
						}
					}
				}

				if matching != nil {
					matching.candidates = append(matching.candidates,
						projectedOn(matching.matcher, incident, adjacent))
				} else {
					buckets[incident] = append(buckets[incident], &planeBucket{
						matcher:    matcher,
						candidates: []projected{projectedOn(matcher, incident, adjacent)},
					})
				}
			}
		}
	}

	for _, pair := range deferred {
		for _, bucket := range buckets[pair.incident] {
			bucket.candidates = append(bucket.candidates,
				projectedOn(bucket.matcher, pair.incident, pair.adjacent))
		}
		buckets[pair.incident] = append(buckets[pair.incident], &planeBucket{
			matcher:    UndefinedPlane(b.epsilon),
			candidates: []projected{{successor: pair.adjacent}},
		})
	}

	successors := make(map[Connection][]PlaneSuccessor, len(buckets))
	for connection, connectionBuckets := range buckets {
		collapsed := make([]PlaneSuccessor, 0, len(connectionBuckets))
		for _, bucket := range connectionBuckets {
			best := bucket.candidates[0]
			for _, candidate := range bucket.candidates[1:] {
				if candidate.before(best) {
					best = candidate
				}
			}
			collapsed = append(collapsed, PlaneSuccessor{
				Matcher:   bucket.matcher,
				Successor: best.successor,
			})
		}
		successors[connection] = collapsed
	}

	return &PathGraph{epsilon: b.epsilon, order: order, successors: successors}
}
