// internal/repository/job_repository.go
package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"label-service/internal/database"
	"label-service/internal/model"
)

// jobRepository implements JobRepository on Postgres
type jobRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewJobRepository creates a Postgres backed job repository
func NewJobRepository(db *database.DB, logger *zap.Logger) JobRepository {
	return &jobRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a print job
func (r *jobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	query := `
		INSERT INTO print_jobs (
			id, printer, label_type, tape, copies,
			bytes, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Printer, string(job.LabelType), string(job.Tape), job.Copies,
		job.Bytes, string(job.Status), job.ErrorMessage, job.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create print job", zap.Error(err))
		return fmt.Errorf("failed to create print job: %w", err)
	}

	return nil
}

// List retrieves recent print jobs, newest first
func (r *jobRepository) List(ctx context.Context, filter *JobFilter) ([]*model.PrintJob, error) {
	query := `
		SELECT id, printer, label_type, tape, copies,
			   bytes, status, error_message, created_at
		FROM print_jobs
	`
	args := []interface{}{}

	if filter != nil && filter.Printer != "" {
		query += " WHERE printer = $1"
		args = append(args, filter.Printer)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, filter.limit())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.PrintJob
	for rows.Next() {
		job := &model.PrintJob{}
		err := rows.Scan(
			&job.ID, &job.Printer, &job.LabelType, &job.Tape, &job.Copies,
			&job.Bytes, &job.Status, &job.ErrorMessage, &job.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan print job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate print jobs: %w", err)
	}

	return jobs, nil
}
