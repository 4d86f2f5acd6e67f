// internal/repository/memory_repository.go
package repository

import (
	"context"
	"sync"

	"label-service/internal/model"
)

// memoryJobRepository keeps the most recent jobs in a fixed size ring
type memoryJobRepository struct {
	jobs  []*model.PrintJob
	next  int
	count int
	mu    sync.RWMutex
}

// NewMemoryJobRepository creates an in-process job history holding size jobs
func NewMemoryJobRepository(size int) JobRepository {
	if size < 1 {
		size = 1
	}
	return &memoryJobRepository{
		jobs: make([]*model.PrintJob, size),
	}
}

func (r *memoryJobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	stored := *job

	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[r.next] = &stored
	r.next = (r.next + 1) % len(r.jobs)
	if r.count < len(r.jobs) {
		r.count++
	}
	return nil
}

func (r *memoryJobRepository) List(ctx context.Context, filter *JobFilter) ([]*model.PrintJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.limit()
	jobs := make([]*model.PrintJob, 0, min(limit, r.count))

	for i := 1; i <= r.count && len(jobs) < limit; i++ {
		job := r.jobs[(r.next-i+len(r.jobs))%len(r.jobs)]
		if !filter.matches(job) {
			continue
		}
		copied := *job
		jobs = append(jobs, &copied)
	}

	return jobs, nil
}
