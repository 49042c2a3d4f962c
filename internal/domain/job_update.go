package domain

import "time"

// JobUpdate is one immutable history entry on a job. Entries are append
// only: once written they are never mutated and only disappear when the
// parent job is deleted. Display order is newest first.
type JobUpdate struct {
	ID           string
	JobID        string
	UserID       string
	DepartmentID *string
	Comment      *string
	NewStatus    *string
	NewPriority  *JobPriority
	// FileURL predates multi-file attachments; old entries may still carry
	// a single URL here. New writes always use FileURLs.
	FileURL   *string
	FileURLs  []string
	CreatedAt time.Time
}

// ReferencedFiles returns every file URL this entry references, covering
// both the legacy single-URL field and the multi-URL field.
func (u *JobUpdate) ReferencedFiles() []string {
	var urls []string
	if u.FileURL != nil && *u.FileURL != "" {
		urls = append(urls, *u.FileURL)
	}
	urls = append(urls, u.FileURLs...)
	return urls
}
