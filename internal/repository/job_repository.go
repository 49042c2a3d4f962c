package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printops/jobtrack/internal/domain"
)

// JobFieldPatch is a sparse update to a job's own fields. Status and
// DepartmentID are set together or not at all; every writer preserves that
// lockstep.
type JobFieldPatch struct {
	Status       *string
	DepartmentID *string
	Priority     *domain.JobPriority
	ApprovalURL  *string
}

// Empty reports whether the patch would change nothing.
func (p JobFieldPatch) Empty() bool {
	return p.Status == nil && p.DepartmentID == nil && p.Priority == nil && p.ApprovalURL == nil
}

// JobRepository encapsulates job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
	Delete(ctx context.Context, id string) error
	// CommitUpdate applies a field patch and appends a history entry in one
	// transaction: both writes succeed or neither does. Either part may be
	// absent.
	CommitUpdate(ctx context.Context, jobID string, patch JobFieldPatch, update *domain.JobUpdate) error
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (client_name, specifications, status, department_id, priority, approval_url)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		job.ClientName,
		job.Specifications,
		job.Status,
		job.DepartmentID,
		job.Priority,
		job.ApprovalURL,
	).Scan(&job.ID, &job.CreatedAt)
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	const query = `
        SELECT id, client_name, specifications, status, department_id, priority, approval_url, created_at
        FROM jobs WHERE id=$1`
	var job domain.Job
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.ClientName,
		&job.Specifications,
		&job.Status,
		&job.DepartmentID,
		&job.Priority,
		&job.ApprovalURL,
		&job.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context) ([]domain.Job, error) {
	const query = `
        SELECT id, client_name, specifications, status, department_id, priority, approval_url, created_at
        FROM jobs ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.ClientName,
			&job.Specifications,
			&job.Status,
			&job.DepartmentID,
			&job.Priority,
			&job.ApprovalURL,
			&job.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) CommitUpdate(ctx context.Context, jobID string, patch JobFieldPatch, update *domain.JobUpdate) error {
	if patch.Empty() && update == nil {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if !patch.Empty() {
		const query = `
            UPDATE jobs SET
                status = COALESCE($1, status),
                department_id = COALESCE($2, department_id),
                priority = COALESCE($3, priority),
                approval_url = COALESCE($4, approval_url)
            WHERE id=$5`
		cmd, err := tx.Exec(ctx, query,
			patch.Status,
			patch.DepartmentID,
			patch.Priority,
			patch.ApprovalURL,
			jobID,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
	}

	if update != nil {
		const query = `
            INSERT INTO job_updates (job_id, user_id, department_id, comment, new_status, new_priority, file_urls)
            VALUES ($1,$2,$3,$4,$5,$6,COALESCE($7,'{}'::text[]))
            RETURNING id, created_at`
		if err := tx.QueryRow(ctx, query,
			jobID,
			update.UserID,
			update.DepartmentID,
			update.Comment,
			update.NewStatus,
			update.NewPriority,
			update.FileURLs,
		).Scan(&update.ID, &update.CreatedAt); err != nil {
			return err
		}
		update.JobID = jobID
	}

	return tx.Commit(ctx)
}
