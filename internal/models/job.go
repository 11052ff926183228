// internal/models/job.go
package models

import (
	"encoding/json"
	"time"
)

type JobType string

const (
	JobTypeOneToMany  JobType = "one_to_many"
	JobTypeManyToMany JobType = "many_to_many"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusFailed     JobStatus = "failed"
)

// MatchJob is one row of the job queue table. It is created by an external
// request handler and transitioned exclusively by the worker that claimed it.
type MatchJob struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Type        JobType         `json:"jobType"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"` // 0-100
	Error       string          `json:"error,omitempty"`
	Params      json.RawMessage `json:"params,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}
