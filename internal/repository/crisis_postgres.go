package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crisis-service/internal/domain"
)

const crisisColumns = `id, title, description, severity, status, date_reported, date_resolved,
               resolution, reported_by, assigned_to, tags, affected_systems`

type postgresCrisisRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCrisisRepository instantiates a repository on a pgx pool.
func NewPostgresCrisisRepository(pool *pgxpool.Pool) CrisisRepository {
	return &postgresCrisisRepository{pool: pool}
}

func (r *postgresCrisisRepository) Create(ctx context.Context, crisis *domain.Crisis) error {
	const query = `
        INSERT INTO crises (title, description, severity, status, date_reported, date_resolved,
            resolution, reported_by, assigned_to, tags, affected_systems)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		crisis.Title,
		crisis.Description,
		crisis.Severity,
		crisis.Status,
		crisis.DateReported,
		crisis.DateResolved,
		crisis.Resolution,
		crisis.ReportedBy,
		crisis.AssignedTo,
		crisis.Tags,
		crisis.AffectedSystems,
	).Scan(&crisis.ID)
}

func (r *postgresCrisisRepository) GetByID(ctx context.Context, id int64) (*domain.Crisis, error) {
	query := `SELECT ` + crisisColumns + ` FROM crises WHERE id=$1`
	crisis, err := scanCrisis(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return crisis, nil
}

func (r *postgresCrisisRepository) List(ctx context.Context) ([]domain.Crisis, error) {
	return r.listWhere(ctx, nil, nil)
}

func (r *postgresCrisisRepository) Search(ctx context.Context, query string) ([]domain.Crisis, error) {
	if query == "" {
		return r.List(ctx)
	}
	args := []any{query}
	const p = "$1"
	clause := fmt.Sprintf(`(strpos(LOWER(title), LOWER(%[1]s)) > 0
            OR strpos(LOWER(description), LOWER(%[1]s)) > 0
            OR strpos(LOWER(reported_by), LOWER(%[1]s)) > 0
            OR strpos(LOWER(assigned_to), LOWER(%[1]s)) > 0
            OR strpos(LOWER(resolution), LOWER(%[1]s)) > 0
            OR EXISTS (SELECT 1 FROM unnest(tags) AS t(v) WHERE strpos(LOWER(t.v), LOWER(%[1]s)) > 0)
            OR EXISTS (SELECT 1 FROM unnest(affected_systems) AS s(v) WHERE strpos(LOWER(s.v), LOWER(%[1]s)) > 0))`, p)
	return r.listWhere(ctx, []string{clause}, args)
}

func (r *postgresCrisisRepository) Filter(ctx context.Context, filter domain.CrisisFilter) ([]domain.Crisis, error) {
	clauses := []string{}
	args := []any{}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		clauses = append(clauses, fmt.Sprintf("LOWER(severity) = LOWER($%d)", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("LOWER(status) = LOWER($%d)", len(args)))
	}
	return r.listWhere(ctx, clauses, args)
}

func (r *postgresCrisisRepository) listWhere(ctx context.Context, extra []string, args []any) ([]domain.Crisis, error) {
	clauses := append([]string{"1=1"}, extra...)
	query := fmt.Sprintf(`SELECT %s FROM crises WHERE %s ORDER BY id ASC`,
		crisisColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCrises(rows)
}

// Update replaces every mutable column. date_reported is never rewritten.
func (r *postgresCrisisRepository) Update(ctx context.Context, crisis *domain.Crisis) error {
	const query = `
        UPDATE crises SET title=$1, description=$2, severity=$3, status=$4, date_resolved=$5,
            resolution=$6, reported_by=$7, assigned_to=$8, tags=$9, affected_systems=$10
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		crisis.Title,
		crisis.Description,
		crisis.Severity,
		crisis.Status,
		crisis.DateResolved,
		crisis.Resolution,
		crisis.ReportedBy,
		crisis.AssignedTo,
		crisis.Tags,
		crisis.AffectedSystems,
		crisis.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresCrisisRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM crises WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresCrisisRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM crises WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *postgresCrisisRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}

func scanCrisis(row pgx.Row) (*domain.Crisis, error) {
	var crisis domain.Crisis
	if err := row.Scan(
		&crisis.ID,
		&crisis.Title,
		&crisis.Description,
		&crisis.Severity,
		&crisis.Status,
		&crisis.DateReported,
		&crisis.DateResolved,
		&crisis.Resolution,
		&crisis.ReportedBy,
		&crisis.AssignedTo,
		&crisis.Tags,
		&crisis.AffectedSystems,
	); err != nil {
		return nil, err
	}
	return &crisis, nil
}

func scanCrises(rows pgx.Rows) ([]domain.Crisis, error) {
	result := []domain.Crisis{}
	for rows.Next() {
		crisis, err := scanCrisis(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *crisis)
	}
	return result, rows.Err()
}
