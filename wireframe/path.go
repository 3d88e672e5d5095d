package wireframe

import (
	"encoding/binary"
	"math"
	"sort"
)

// Path is a closed loop of junctions. Sequence repeats the first vertex at
// the end; set holds the distinct vertices and defines identity, so the same
// physical loop compares equal no matter where tracing started or in which
// direction it ran.
type Path struct {
	Sequence []Coordinates
	set      map[Coordinates]struct{}
}

// NewPath builds a closed path from an open vertex sequence by repeating the
// first vertex at the end.
func NewPath(sequence []Coordinates) *Path {
	path := &Path{set: make(map[Coordinates]struct{}, len(sequence))}
	for _, vertex := range sequence {
		path.Sequence = append(path.Sequence, vertex)
		path.set[vertex] = struct{}{}
	}
	if len(sequence) > 0 {
		path.Sequence = append(path.Sequence, sequence[0])
	}
	return path
}

// Contains reports whether the vertex is part of the loop.
func (p *Path) Contains(vertex Coordinates) bool {
	_, ok := p.set[vertex]
	return ok
}

// Vertices returns the number of distinct vertices.
func (p *Path) Vertices() int { return len(p.set) }

// key is the order-independent identity of the loop: the sorted vertex set,
// encoded bit-exactly.
func (p *Path) key() string {
	vertices := make([]Coordinates, 0, len(p.set))
	for vertex := range p.set {
		vertices = append(vertices, vertex)
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i].Less(vertices[j]) })

	encoded := make([]byte, 0, 24*len(vertices))
	var buffer [8]byte
	for _, vertex := range vertices {
		for _, component := range [3]float64{vertex.X, vertex.Y, vertex.Z} {
			binary.LittleEndian.PutUint64(buffer[:], math.Float64bits(component))
			encoded = append(encoded, buffer[:]...)
		}
	}
	return string(encoded)
}

// sumInteriorAnglesOn projects every consecutive edge pair onto the plane and
// accumulates the clockwise angles, including the closing angle between the
// last and first edge.
func (p *Path) sumInteriorAnglesOn(plane PlaneMatcher) (float64, bool) {
	total := 0.0
	for i := 0; i < len(p.Sequence)-2; i++ {
		angle, ok := plane.ProjectAngleBetween(
			VectorOf(Connection{From: p.Sequence[i], To: p.Sequence[i+1]}),
			VectorOf(Connection{From: p.Sequence[i+1], To: p.Sequence[i+2]}),
		)
		if !ok {
			return 0, false
		}
		total += angle
	}

	closing, ok := plane.ProjectAngleBetween(
		VectorOf(Connection{From: p.Sequence[len(p.Sequence)-2], To: p.Sequence[0]}),
		VectorOf(Connection{From: p.Sequence[0], To: p.Sequence[1]}),
	)
	if !ok {
		return 0, false
	}
	return total + closing, true
}

// isValidOn reports whether the loop is a simple planar polygon on the given
// plane. A sequence of length n (counting the repeated closing vertex) must
// sum its clockwise interior angles to (n-3)π within tolerance; loops that
// self-intersect or drift off the plane miss that sum. Non-closed or empty
// sequences are rejected outright.
func (p *Path) isValidOn(plane PlaneMatcher, tolerance float64) bool {
	if len(p.Sequence) == 0 || p.Sequence[0] != p.Sequence[len(p.Sequence)-1] {
		return false
	}
	total, ok := p.sumInteriorAnglesOn(plane)
	if !ok {
		return false
	}
	return math.Abs(total-math.Pi*float64(len(p.Sequence)-3)) <= tolerance
}

// reverseIfNormalIsNegative canonicalizes the winding so the loop faces
// upward. It scans consecutive edge pairs until one is non-collinear enough
// to yield a normal, and reverses the sequence when that normal points down.
func (p *Path) reverseIfNormalIsNegative() *Path {
	for i := 0; i < len(p.Sequence)-2; i++ {
		normal, ok := VectorOf(Connection{From: p.Sequence[i], To: p.Sequence[i+1]}).Normal(
			VectorOf(Connection{From: p.Sequence[i+1], To: p.Sequence[i+2]}),
			math.SmallestNonzeroFloat64,
		)
		if !ok {
			continue
		}
		if normal.Z < 0 {
			for left, right := 0, len(p.Sequence)-1; left < right; left, right = left+1, right-1 {
				p.Sequence[left], p.Sequence[right] = p.Sequence[right], p.Sequence[left]
			}
		}
		break
	}
	return p
}

// PathSet is an insertion-ordered set of paths keyed by their vertex set.
type PathSet struct {
	order []*Path
	index map[string]struct{}
}

// NewPathSet returns an empty set.
func NewPathSet() *PathSet {
	return &PathSet{index: make(map[string]struct{})}
}

// Add inserts the path unless an equal loop is already present.
func (s *PathSet) Add(path *Path) {
	key := path.key()
	if _, ok := s.index[key]; ok {
		return
	}
	s.index[key] = struct{}{}
	s.order = append(s.order, path)
}

// Contains reports whether an equal loop is present.
func (s *PathSet) Contains(path *Path) bool {
	_, ok := s.index[path.key()]
	return ok
}

// Paths returns the paths in insertion order.
func (s *PathSet) Paths() []*Path { return s.order }

// Len returns the number of distinct loops.
func (s *PathSet) Len() int { return len(s.order) }

// traceKind distinguishes the three ways a traversal frame can finish.
type traceKind int

const (
	// traceDone: the destination has been fully explored for every viable
	// plane reachable from here.
	traceDone traceKind = iota
	// traceClosure: the destination equals the path root; a loop was found.
	traceClosure
	// traceBacktrack: the destination was visited earlier in the current
	// stack but is not the root. The loop closes at an ancestor frame, so
	// the result propagates upward accumulating the unwound vertices.
	traceBacktrack
)

// traceResult carries payload only for backtracking: the ancestor that owns
// the loop, the plane it was found on, and the vertices collected while
// unwinding toward that ancestor.
type traceResult struct {
	kind        traceKind
	destination Coordinates
	plane       PlaneMatcher
	sequence    []Coordinates
}

func backtrackTo(destination Coordinates, plane PlaneMatcher) traceResult {
	return traceResult{
		kind:        traceBacktrack,
		destination: destination,
		plane:       plane,
		sequence:    []Coordinates{destination},
	}
}

// enqueue appends the unwinding frame's vertex to the accumulated sequence.
func (r traceResult) enqueue(vertex Coordinates) traceResult {
	r.sequence = append(r.sequence, vertex)
	return r
}

// transition identifies one (grandparent, parent, next) step of the search.
type transition struct {
	before  Coordinates
	current Coordinates
	next    Coordinates
}

// recursionCache records, per transition, the planes already explored through
// it. Reaching the same transition again under an already explored plane is
// redundant no matter which route led there, which bounds the search to
// roughly one exploration per (transition, plane) pair.
type recursionCache struct {
	table map[transition][]PlaneMatcher
}

func newRecursionCache() *recursionCache {
	return &recursionCache{table: make(map[transition][]PlaneMatcher)}
}

func (c *recursionCache) contains(t transition, plane PlaneMatcher) bool {
	for _, cached := range c.table[t] {
		if cached.SameAs(plane) {
			return true
		}
	}
	return false
}

func (c *recursionCache) insert(t transition, plane PlaneMatcher) {
	c.table[t] = append(c.table[t], plane)
}

func (c *recursionCache) clear() {
	c.table = make(map[transition][]PlaneMatcher)
}

// PathBuilder traces every plane-consistent closed loop of a path graph. The
// stack and visited set are transient per root connection; the cache is
// cleared between roots so entries from one exploration never suppress loops
// reachable from another.
type PathBuilder struct {
	graph *PathGraph
	cache *recursionCache
	paths *PathSet
	stack []Coordinates
	seen  map[Coordinates]struct{}
}

// NewPathBuilder prepares a traversal over the given graph.
func NewPathBuilder(graph *PathGraph) *PathBuilder {
	return &PathBuilder{
		graph: graph,
		cache: newRecursionCache(),
		paths: NewPathSet(),
		seen:  make(map[Coordinates]struct{}),
	}
}

// Build runs one depth-first exploration rooted at every connection of the
// graph and returns the validated, canonically wound loops.
func (b *PathBuilder) Build() *PathSet {
	for _, source := range b.graph.Connections() {
		b.cache.clear()
		b.push(source.From)
		b.traverse(source, UndefinedPlane(b.graph.Epsilon()))
		b.pop()
	}
	return b.paths
}

func (b *PathBuilder) traverse(current Connection, plane PlaneMatcher) traceResult {
	if before, currentTop, ok := b.precedent(); ok {
		if b.cache.contains(transition{before: before, current: currentTop, next: current.To}, plane) {
			return traceResult{kind: traceDone}
		}
	}

	if root, ok := b.root(); ok && current.To == root {
		b.save(NewPath(b.stack), plane)
		return traceResult{kind: traceClosure}
	}

	if b.contains(current.To) {
		return backtrackTo(current.To, plane)
	}

	for _, candidate := range b.graph.Successors(current) {
		relaxed := len(b.graph.Successors(current)) == 1
		merged, ok := candidate.Matcher.MatchAgainst(plane, relaxed)
		if !ok {
			continue
		}

		b.push(current.To)
		result := b.traverse(candidate.Successor, merged)

		if result.kind == traceBacktrack {
			if result.destination == current.To {
				b.save(NewPath(result.sequence), result.plane)
			} else {
				b.pop()
				return result.enqueue(current.To)
			}
		}

		b.pop()
	}

	if before, currentTop, ok := b.precedent(); ok {
		b.cache.insert(transition{before: before, current: currentTop, next: current.To}, plane)
	}

	return traceResult{kind: traceDone}
}

// save validates the candidate loop against the plane it was traced on and
// stores it with upward-facing winding.
func (b *PathBuilder) save(path *Path, plane PlaneMatcher) {
	if path.isValidOn(plane, b.graph.Epsilon()) {
		b.paths.Add(path.reverseIfNormalIsNegative())
	}
}

func (b *PathBuilder) push(vertex Coordinates) {
	b.seen[vertex] = struct{}{}
	b.stack = append(b.stack, vertex)
}

func (b *PathBuilder) pop() {
	if len(b.stack) == 0 {
		return
	}
	vertex := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	delete(b.seen, vertex)
}

func (b *PathBuilder) root() (Coordinates, bool) {
	if len(b.stack) == 0 {
		return Coordinates{}, false
	}
	return b.stack[0], true
}

func (b *PathBuilder) precedent() (Coordinates, Coordinates, bool) {
	if len(b.stack) < 2 {
		return Coordinates{}, Coordinates{}, false
	}
	return b.stack[len(b.stack)-2], b.stack[len(b.stack)-1], true
}

func (b *PathBuilder) contains(vertex Coordinates) bool {
	_, ok := b.seen[vertex]
	return ok
}
