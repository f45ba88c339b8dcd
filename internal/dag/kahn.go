package dag

import (
	"fmt"
	"math"
)

// Result is the outcome of Sort: either an Ordering or a Diagnostic.
type Result interface {
	result()
}

// Ordering is a complete topological order of the graph.
type Ordering []string

func (Ordering) result() {}

// Diagnostic describes a graph that could not be ordered. MostOutgoing and
// LeastIncoming are picked independently over the whole node set, so the pair
// is a hint and not necessarily an edge of the cycle.
type Diagnostic struct {
	MostOutgoing       string
	LeastIncoming      string
	MostOutgoingCount  int
	LeastIncomingCount int

	// Unresolved lists the nodes Kahn's traversal never reached.
	Unresolved []string
}

func (Diagnostic) result() {}

// Message renders the diagnostic in the service's wire wording.
func (d Diagnostic) Message() string {
	return fmt.Sprintf(
		"Cycle detected. Break cycle by removing edge from '%s' (most outgoing) to '%s' (least incoming).",
		d.MostOutgoing, d.LeastIncoming)
}

// Sort orders the graph with Kahn's algorithm (BFS over zero in-degree
// nodes). If fewer nodes are emitted than the graph holds, a cycle exists
// and a Diagnostic is returned instead. Neither input is modified.
func Sort(adj *AdjacencyMap, in *InDegreeMap) Result {
	remaining := in.snapshot()

	queue := make([]string, 0, in.Len())
	for _, n := range in.keys {
		if remaining[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make(Ordering, 0, in.Len())
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)
		for _, v := range adj.Successors(u) {
			remaining[v]--
			if remaining[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(order) == in.Len() {
		return order
	}

	d := diagnose(adj, in)
	for _, n := range in.keys {
		if remaining[n] > 0 {
			d.Unresolved = append(d.Unresolved, n)
		}
	}
	return d
}

// diagnose scans the original maps once, in node order, for the node with
// the most successors and the node with the fewest incoming edges. Ties keep
// the first node seen.
func diagnose(adj *AdjacencyMap, in *InDegreeMap) Diagnostic {
	var (
		maxOutNode string
		maxOut     = -1
		minInNode  string
		minIn      = math.MaxInt
	)
	for _, n := range in.keys {
		if out := adj.OutDegree(n); out > maxOut {
			maxOutNode, maxOut = n, out
		}
		if deg := in.deg[n]; deg < minIn {
			minInNode, minIn = n, deg
		}
	}
	return Diagnostic{
		MostOutgoing:       maxOutNode,
		LeastIncoming:      minInNode,
		MostOutgoingCount:  maxOut,
		LeastIncomingCount: minIn,
	}
}
