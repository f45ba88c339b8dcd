package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/edkuperman/pairsort/internal/errors"
)

// Querier is the read-only subset of *pgxpool.Pool the repo needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DAGRepo reads the catalogue of stored DAGs. pairsort never writes to it.
type DAGRepo struct{ DB Querier }

func NewDAGRepo(db Querier) *DAGRepo { return &DAGRepo{DB: db} }

// IDs lists every stored DAG id in ascending order.
func (r *DAGRepo) IDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT id FROM dags ORDER BY id;`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "list dags")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "scan dag id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "list dags")
	}
	return ids, nil
}

// Exists reports whether a DAG with id is stored.
func (r *DAGRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM dags WHERE id = $1);`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "lookup dag %s", id)
	}
	return exists, nil
}
