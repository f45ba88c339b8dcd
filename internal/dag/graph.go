package dag

// Edge is a single ordering constraint: From must precede To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AdjacencyMap maps every source node to its direct successors.
// Successors keep submission order and duplicates; nodes iterate in the
// order they were first used as a source.
type AdjacencyMap struct {
	keys []string
	succ map[string][]string
}

// Successors returns the successors of n, or nil when n has none.
func (a *AdjacencyMap) Successors(n string) []string {
	return a.succ[n]
}

// OutDegree is len(Successors(n)).
func (a *AdjacencyMap) OutDegree(n string) int {
	return len(a.succ[n])
}

// Nodes returns the source nodes in insertion order.
func (a *AdjacencyMap) Nodes() []string {
	return append([]string(nil), a.keys...)
}

// Len is the number of source nodes.
func (a *AdjacencyMap) Len() int { return len(a.keys) }

func (a *AdjacencyMap) add(from, to string) {
	if a.succ == nil {
		a.succ = make(map[string][]string)
	}
	if _, ok := a.succ[from]; !ok {
		a.keys = append(a.keys, from)
		a.succ[from] = []string{}
	}
	a.succ[from] = append(a.succ[from], to)
}

// InDegreeMap holds the incoming edge count of every node in the graph,
// including nodes with no incoming edges. Nodes iterate in the order they
// were first mentioned.
type InDegreeMap struct {
	keys []string
	deg  map[string]int
}

// Get returns the in-degree of n and whether n is part of the graph.
func (m *InDegreeMap) Get(n string) (int, bool) {
	d, ok := m.deg[n]
	return d, ok
}

// Nodes returns every node in insertion order.
func (m *InDegreeMap) Nodes() []string {
	return append([]string(nil), m.keys...)
}

// Len is the number of distinct nodes.
func (m *InDegreeMap) Len() int { return len(m.keys) }

// ensure registers n with in-degree 0 unless it is already present.
func (m *InDegreeMap) ensure(n string) {
	if m.deg == nil {
		m.deg = make(map[string]int)
	}
	if _, ok := m.deg[n]; !ok {
		m.keys = append(m.keys, n)
		m.deg[n] = 0
	}
}

func (m *InDegreeMap) inc(n string) {
	m.ensure(n)
	m.deg[n]++
}

func (m *InDegreeMap) snapshot() map[string]int {
	out := make(map[string]int, len(m.deg))
	for k, v := range m.deg {
		out[k] = v
	}
	return out
}

// Build turns a list of constraints into adjacency and in-degree maps.
// Parallel edges are kept as independent constraints.
func Build(edges []Edge) (*AdjacencyMap, *InDegreeMap) {
	adj := &AdjacencyMap{succ: make(map[string][]string)}
	in := &InDegreeMap{deg: make(map[string]int, len(edges))}

	for _, e := range edges {
		adj.add(e.From, e.To)
		in.inc(e.To)
		in.ensure(e.From)
	}
	return adj, in
}
