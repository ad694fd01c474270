// Package postgres persists plan snapshots in a single caseplan_tasks
// table, preserving row order. Save replaces the table contents in one
// transaction so the stored snapshot is always a complete plan.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/caseplan/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS caseplan_tasks (
	id          UUID PRIMARY KEY,
	row_order   INT NOT NULL,
	case_id     TEXT NOT NULL DEFAULT '',
	project     TEXT NOT NULL DEFAULT '',
	nature      TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL DEFAULT '',
	parent_case TEXT NOT NULL DEFAULT '',
	ref         TEXT NOT NULL DEFAULT '',
	dependency  TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT '',
	weight      TEXT NOT NULL DEFAULT '',
	progress    INT NOT NULL DEFAULT 0,
	steps       BOOLEAN[] NOT NULL DEFAULT '{}'
)`

// Repository is a SnapshotRepository backed by PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

var _ domain.SnapshotRepository = (*Repository)(nil)

// New connects to PostgreSQL and ensures the snapshot table exists.
func New(ctx context.Context, dsn string, maxConns int32) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ensure schema: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	r.pool.Close()
}

// Load reads the full ordered record list.
func (r *Repository) Load(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, project, nature, name, parent_case, ref, dependency,
		        start_date, end_date, weight, progress, steps
		 FROM caseplan_tasks
		 ORDER BY row_order`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres.Repository.Load: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var (
			t          domain.Task
			start, end string
			nature     string
			steps      []bool
		)
		err = rows.Scan(
			&t.ID, &t.CaseID, &t.Project, &nature, &t.Name, &t.ParentCaseID,
			&t.Ref, &t.DependencyCaseID, &start, &end, &t.Weight, &t.Progress, &steps,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres.Repository.Load: scan: %w", err)
		}

		t.Nature = domain.Nature(nature)
		if t.Start, err = domain.ParseDate(start); err != nil {
			return nil, fmt.Errorf("postgres.Repository.Load: case %q: %w", t.CaseID, err)
		}
		if t.End, err = domain.ParseDate(end); err != nil {
			return nil, fmt.Errorf("postgres.Repository.Load: case %q: %w", t.CaseID, err)
		}
		for i := 0; i < len(steps) && i < domain.NumSteps; i++ {
			t.Steps[i] = steps[i]
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.Repository.Load: %w", err)
	}

	return tasks, nil
}

// Save replaces the stored snapshot with the given ordered record list.
func (r *Repository) Save(ctx context.Context, tasks []*domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres.Repository.Save: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM caseplan_tasks`); err != nil {
		return fmt.Errorf("postgres.Repository.Save: clear: %w", err)
	}

	batch := &pgx.Batch{}
	for i, t := range tasks {
		id := t.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(
			`INSERT INTO caseplan_tasks
			 (id, row_order, case_id, project, nature, name, parent_case, ref,
			  dependency, start_date, end_date, weight, progress, steps)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			id, i, t.CaseID, t.Project, string(t.Nature), t.Name, t.ParentCaseID,
			t.Ref, t.DependencyCaseID, t.Start.String(), t.End.String(),
			t.Weight, t.Progress, t.Steps[:],
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres.Repository.Save: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres.Repository.Save: commit: %w", err)
	}
	return nil
}
