package domain

import "time"

// JobPriority enumerates urgency levels.
type JobPriority string

const (
	PriorityUrgent JobPriority = "Urgent"
	PriorityHigh   JobPriority = "High"
	PriorityNormal JobPriority = "Normal"
	PriorityLow    JobPriority = "Low"
)

// ValidPriority reports whether the value is a known priority level.
func ValidPriority(p JobPriority) bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Job is one client print order moving through the pipeline. Status and
// DepartmentID are kept in lockstep by every writer: Status always equals
// the name of the department DepartmentID references. A job never persists
// with the terminal stage as its status; reaching it deletes the job.
type Job struct {
	ID             string
	ClientName     string
	Specifications string
	Status         string
	DepartmentID   string
	Priority       JobPriority
	ApprovalURL    *string
	CreatedAt      time.Time
}
