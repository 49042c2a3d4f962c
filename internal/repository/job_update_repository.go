package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printops/jobtrack/internal/domain"
)

// JobUpdateRepository reads and appends immutable job history entries.
// Entries are never mutated or deleted individually; they disappear only
// when the parent job is removed.
type JobUpdateRepository interface {
	Create(ctx context.Context, update *domain.JobUpdate) error
	ListByJob(ctx context.Context, jobID string) ([]domain.JobUpdate, error)
}

type jobUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewJobUpdateRepository builds repository.
func NewJobUpdateRepository(pool *pgxpool.Pool) JobUpdateRepository {
	return &jobUpdateRepository{pool: pool}
}

func (r *jobUpdateRepository) Create(ctx context.Context, update *domain.JobUpdate) error {
	const query = `
        INSERT INTO job_updates (job_id, user_id, department_id, comment, new_status, new_priority, file_urls)
        VALUES ($1,$2,$3,$4,$5,$6,COALESCE($7,'{}'::text[]))
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		update.JobID,
		update.UserID,
		update.DepartmentID,
		update.Comment,
		update.NewStatus,
		update.NewPriority,
		update.FileURLs,
	).Scan(&update.ID, &update.CreatedAt)
}

// ListByJob returns a job's history newest first.
func (r *jobUpdateRepository) ListByJob(ctx context.Context, jobID string) ([]domain.JobUpdate, error) {
	const query = `
        SELECT id, job_id, user_id, department_id, comment, new_status, new_priority, file_url, file_urls, created_at
        FROM job_updates WHERE job_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobUpdate
	for rows.Next() {
		var update domain.JobUpdate
		if err := rows.Scan(
			&update.ID,
			&update.JobID,
			&update.UserID,
			&update.DepartmentID,
			&update.Comment,
			&update.NewStatus,
			&update.NewPriority,
			&update.FileURL,
			&update.FileURLs,
			&update.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}
