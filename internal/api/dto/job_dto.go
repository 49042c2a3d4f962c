package dto

import (
	"time"

	"github.com/printops/jobtrack/internal/domain"
)

// DepartmentResponse is one board column.
type DepartmentResponse struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Description  string                    `json:"description,omitempty"`
	Presentation domain.StatusPresentation `json:"presentation"`
}

// CreateJobRequest starts a new job at the entry stage.
type CreateJobRequest struct {
	ClientName     string `json:"client_name"`
	Specifications string `json:"specifications"`
	Priority       string `json:"priority"`
}

// JobResponse is one job with its display metadata.
type JobResponse struct {
	ID                   string                     `json:"id"`
	ClientName           string                     `json:"client_name"`
	Specifications       string                     `json:"specifications"`
	Status               string                     `json:"status"`
	DepartmentID         string                     `json:"department_id"`
	Priority             string                     `json:"priority"`
	ApprovalURL          *string                    `json:"approval_url,omitempty"`
	CreatedAt            time.Time                  `json:"created_at"`
	StatusPresentation   domain.StatusPresentation  `json:"status_presentation"`
	PriorityPresentation *domain.PriorityPresentation `json:"priority_presentation,omitempty"`
}

// JobUpdateResponse is one immutable history entry.
type JobUpdateResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DepartmentID *string   `json:"department_id,omitempty"`
	Comment      *string   `json:"comment,omitempty"`
	NewStatus    *string   `json:"new_status,omitempty"`
	NewPriority  *string   `json:"new_priority,omitempty"`
	FileURLs     []string  `json:"file_urls,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BoardResponse is the role-scoped Kanban view.
type BoardResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Jobs        []JobResponse        `json:"jobs"`
}

// JobDetailResponse pairs a job with its history, newest first.
type JobDetailResponse struct {
	Job     JobResponse         `json:"job"`
	Updates []JobUpdateResponse `json:"updates"`
}

// ApprovalRequestResponse returns the shareable tracking link.
type ApprovalRequestResponse struct {
	TrackingLink string `json:"tracking_link"`
}

// UpdateJobResponse reports the pipeline outcome. Reaped means the job hit
// the terminal stage and no longer exists.
type UpdateJobResponse struct {
	Reaped bool               `json:"reaped"`
	Job    *JobResponse       `json:"job,omitempty"`
	Update *JobUpdateResponse `json:"update,omitempty"`
}
