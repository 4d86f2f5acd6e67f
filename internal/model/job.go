// internal/model/job.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the outcome of a print job
type JobStatus string

const (
	JobStatusPrinted JobStatus = "PRINTED"
	JobStatusFailed  JobStatus = "FAILED"
)

// PrintJob is one accepted print request, kept for history
type PrintJob struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Printer      string    `json:"printer" db:"printer"`
	LabelType    LabelType `json:"label_type" db:"label_type"`
	Tape         TapeSize  `json:"tape" db:"tape"`
	Copies       int       `json:"copies" db:"copies"`
	Bytes        int       `json:"bytes" db:"bytes"`
	Status       JobStatus `json:"status" db:"status"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Event types pushed to status stream subscribers
const (
	EventTypeJob    = "job"
	EventTypeStatus = "status"
)

// Event is a print job outcome or a status snapshot
type Event struct {
	Type      string                    `json:"type"`
	Job       *PrintJob                 `json:"job,omitempty"`
	Status    map[string]*PrinterStatus `json:"status,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
}
