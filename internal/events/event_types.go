package events

import (
	"time"

	"github.com/printops/jobtrack/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated         EventType = "job_created"
	EventJobUpdated         EventType = "job_updated"
	EventJobReaped          EventType = "job_reaped"
	EventUserDeptReassigned EventType = "user_department_reassigned"
)

// Event represents a domain event emitted by services. JobID is empty for
// events not tied to one job.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	JobID     string      `json:"job_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	ClientName   string             `json:"client_name"`
	Status       string             `json:"status"`
	DepartmentID string             `json:"department_id"`
	Priority     domain.JobPriority `json:"priority"`
}

// JobUpdatedPayload payload. Optional fields mirror the sparse update.
type JobUpdatedPayload struct {
	NewStatus    *string             `json:"new_status,omitempty"`
	DepartmentID *string             `json:"department_id,omitempty"`
	NewPriority  *domain.JobPriority `json:"new_priority,omitempty"`
	Comment      *string             `json:"comment,omitempty"`
	FileURLs     []string            `json:"file_urls,omitempty"`
}

// JobReapedPayload payload.
type JobReapedPayload struct {
	FilesDeleted int `json:"files_deleted"`
	FilesFailed  int `json:"files_failed"`
}

// UserDeptReassignedPayload payload.
type UserDeptReassignedPayload struct {
	UserID       string  `json:"user_id"`
	DepartmentID *string `json:"department_id"`
}
