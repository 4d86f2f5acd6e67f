// internal/repository/interfaces.go
package repository

import (
	"context"

	"label-service/internal/model"
)

// DefaultListLimit caps job listings when the filter names no limit
const DefaultListLimit = 50

// JobRepository defines print job history operations
type JobRepository interface {
	Create(ctx context.Context, job *model.PrintJob) error

	// List returns the most recent jobs first
	List(ctx context.Context, filter *JobFilter) ([]*model.PrintJob, error)
}

// JobFilter represents job listing filters
type JobFilter struct {
	Printer string `json:"printer,omitempty"`
	Limit   int    `json:"limit"`
}

func (f *JobFilter) limit() int {
	if f == nil || f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

func (f *JobFilter) matches(job *model.PrintJob) bool {
	return f == nil || f.Printer == "" || f.Printer == job.Printer
}
