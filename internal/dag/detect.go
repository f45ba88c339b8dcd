package dag

import (
	"context"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/edkuperman/pairsort/internal/errors"
)

// EdgeSource yields the constraints of one stored graph.
type EdgeSource interface {
	Edges(ctx context.Context, dagID string) ([]Edge, error)
}

// EdgeCache serves a fixed edge list regardless of dagID.
type EdgeCache []Edge

func (m EdgeCache) Edges(ctx context.Context, dagID string) ([]Edge, error) {
	return m, nil
}

// Querier is the subset of *pgxpool.Pool used to read edges.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DBEdges reads edges from the dag_edges table in insertion order.
type DBEdges struct {
	DB Querier
}

func (s *DBEdges) Edges(ctx context.Context, dagID string) ([]Edge, error) {
	rows, err := s.DB.Query(ctx, `SELECT src, dst FROM dag_edges WHERE dag_id=$1 ORDER BY id`, dagID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "query edges of dag %s", dagID)
	}
	defer rows.Close()

	out := []Edge{}
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "scan edge of dag %s", dagID)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "read edges of dag %s", dagID)
	}
	return out, nil
}

// Order loads a stored graph and sorts it.
func Order(ctx context.Context, src EdgeSource, dagID string) (Result, error) {
	edges, err := src.Edges(ctx, dagID)
	if err != nil {
		return nil, err
	}
	return Sort(Build(edges)), nil
}

// FindCycles walks the graph depth-first and returns one path per back edge.
// Each path starts and ends at the same node, e.g. [A B A]. Roots are
// visited in node order and successors in submission order, so the output is
// stable for a given input. An acyclic graph yields nil.
func FindCycles(adj *AdjacencyMap, in *InDegreeMap) [][]string {
	var (
		cycles  [][]string
		visited = map[string]bool{}
		stack   = map[string]bool{}
		path    []string
	)

	var dfs func(string)
	dfs = func(n string) {
		visited[n] = true
		stack[n] = true
		path = append(path, n)

		for _, next := range adj.Successors(n) {
			if !visited[next] {
				dfs(next)
			} else if stack[next] {
				start := 0
				for i, v := range path {
					if v == next {
						start = i
						break
					}
				}
				cycle := append([]string(nil), path[start:]...)
				cycles = append(cycles, append(cycle, next))
			}
		}

		stack[n] = false
		path = path[:len(path)-1]
	}

	for _, node := range in.keys {
		if !visited[node] {
			dfs(node)
		}
	}
	return cycles
}
