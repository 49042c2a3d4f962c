package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/events"
	"github.com/printops/jobtrack/internal/repository"
	"github.com/printops/jobtrack/internal/storage"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// JobService coordinates job creation and the update pipeline.
type JobService struct {
	jobs        repository.JobRepository
	updates     repository.JobUpdateRepository
	departments repository.DepartmentRepository
	files       storage.FileStore
	reaper      *ReaperService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	trackerBase string
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo        repository.JobRepository
	JobUpdateRepo  repository.JobUpdateRepository
	DepartmentRepo repository.DepartmentRepository
	Files          storage.FileStore
	Reaper         *ReaperService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	// TrackerBase is the public base URL the shareable tracking link is
	// built from, e.g. https://jobs.example.com.
	TrackerBase string
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	return &JobService{
		jobs:        deps.JobRepo,
		updates:     deps.JobUpdateRepo,
		departments: deps.DepartmentRepo,
		files:       deps.Files,
		reaper:      deps.Reaper,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		trackerBase: strings.TrimRight(deps.TrackerBase, "/"),
	}
}

// JobCreateInput describes a new job.
type JobCreateInput struct {
	ClientName     string
	Specifications string
	Priority       domain.JobPriority
}

// FileAttachment is one file to upload as part of an update.
type FileAttachment struct {
	Filename    string
	ContentType string
	Content     io.Reader
	Size        int64
}

// UpdateChanges is the sparse set of changes one update may carry. Every
// field is explicitly optional; Empty distinguishes a no-op submission
// from a real one.
type UpdateChanges struct {
	NewStatus   *string
	NewPriority *domain.JobPriority
	ApprovalURL *string
	Comment     *string
	Screenshot  *FileAttachment
	Files       []FileAttachment
}

// Empty reports whether the update would change nothing.
func (c UpdateChanges) Empty() bool {
	return c.NewStatus == nil &&
		c.NewPriority == nil &&
		c.ApprovalURL == nil &&
		(c.Comment == nil || strings.TrimSpace(*c.Comment) == "") &&
		c.Screenshot == nil &&
		len(c.Files) == 0
}

// UpdateResult reports the outcome of ApplyUpdate.
type UpdateResult struct {
	// Reaped is true when the update hit the terminal stage: the job no
	// longer exists and Update is nil. Callers must navigate away from any
	// job detail view.
	Reaped bool
	Job    *domain.Job
	Update *domain.JobUpdate
}

// CreateJob starts a new job at the entry stage. Allowed for the owner and
// for employees assigned to the entry department.
func (s *JobService) CreateJob(ctx context.Context, input JobCreateInput, actor *domain.UserProfile) (*domain.Job, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("sign in to create jobs")
	}
	if strings.TrimSpace(input.ClientName) == "" {
		return nil, apperrors.NewValidationError("client name is required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityNormal
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	entry, err := s.departments.GetByName(ctx, domain.EntryStageName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewConfigurationError("entry stage department is missing")
		}
		return nil, apperrors.Classify(err)
	}
	if !actor.IsOwner() && !actor.AssignedTo(entry.ID) {
		return nil, apperrors.NewPermissionDenied("only the entry department creates jobs")
	}

	job := &domain.Job{
		ClientName:     strings.TrimSpace(input.ClientName),
		Specifications: strings.TrimSpace(input.Specifications),
		Status:         entry.Name,
		DepartmentID:   entry.ID,
		Priority:       input.Priority,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.Classify(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventJobCreated,
		JobID:   job.ID,
		ActorID: actor.ID,
		Payload: events.JobCreatedPayload{
			ClientName:   job.ClientName,
			Status:       job.Status,
			DepartmentID: job.DepartmentID,
			Priority:     job.Priority,
		},
	})
	return job, nil
}

// GetJob fetches one job.
func (s *JobService) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.Classify(err)
	}
	return job, nil
}

// ListHistory returns a job's updates newest first.
func (s *JobService) ListHistory(ctx context.Context, jobID string) ([]domain.JobUpdate, error) {
	history, err := s.updates.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return history, nil
}

// ApplyUpdate runs the update pipeline: validate, authorize, upload
// attachments, then commit the job-field patch and the history entry as
// one transaction. A status change targeting the terminal stage skips the
// write path entirely and routes to the reaper; no history entry is
// appended because the job ceases to exist.
func (s *JobService) ApplyUpdate(ctx context.Context, jobID string, changes UpdateChanges, actor *domain.UserProfile) (*UpdateResult, error) {
	if changes.Empty() {
		return nil, apperrors.NewNoChanges()
	}
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("sign in to update jobs")
	}
	if changes.NewPriority != nil && !domain.ValidPriority(*changes.NewPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *changes.NewPriority})
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !CanUpdate(actor, job) {
		return nil, apperrors.NewPermissionDenied("job belongs to another department")
	}

	if changes.NewStatus != nil && *changes.NewStatus == domain.TerminalStageName {
		if _, err := s.reaper.Reap(ctx, actor.ID, jobID); err != nil {
			return nil, err
		}
		return &UpdateResult{Reaped: true}, nil
	}

	patch := repository.JobFieldPatch{}
	var statusLine *string
	if changes.NewStatus != nil && *changes.NewStatus != job.Status {
		dept, err := s.departments.GetByName(ctx, *changes.NewStatus)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewValidationError("unknown pipeline stage", map[string]any{"status": *changes.NewStatus})
			}
			return nil, apperrors.Classify(err)
		}
		// Status and department id move together, never independently.
		patch.Status = &dept.Name
		patch.DepartmentID = &dept.ID
		statusLine = &dept.Name
	}
	if changes.NewPriority != nil && *changes.NewPriority != job.Priority {
		patch.Priority = changes.NewPriority
	}
	approvalSet := changes.ApprovalURL != nil && (job.ApprovalURL == nil || *changes.ApprovalURL != *job.ApprovalURL)
	if approvalSet {
		patch.ApprovalURL = changes.ApprovalURL
	}

	urls, err := s.uploadAttachments(ctx, jobID, changes)
	if err != nil {
		return nil, err
	}

	comment := buildComment(changes, approvalSet)
	update := &domain.JobUpdate{
		UserID:       actor.ID,
		DepartmentID: actor.DepartmentID,
		Comment:      comment,
		NewStatus:    statusLine,
		NewPriority:  patch.Priority,
		FileURLs:     urls,
	}
	if comment == nil && statusLine == nil && patch.Priority == nil && len(urls) == 0 {
		update = nil
	}
	if patch.Empty() && update == nil {
		return nil, apperrors.NewNoChanges()
	}

	if err := s.jobs.CommitUpdate(ctx, jobID, patch, update); err != nil {
		// The uploads already happened outside the transaction. Compensate
		// best effort so a failed commit does not leak orphaned files.
		for _, url := range urls {
			if delErr := s.files.DeleteByURL(ctx, url); delErr != nil {
				s.logger.Warn("orphaned upload cleanup failed",
					zap.String("job_id", jobID),
					zap.String("file_url", url),
					zap.Error(delErr))
			}
		}
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.Classify(err)
	}

	payload := events.JobUpdatedPayload{
		NewStatus:    patch.Status,
		DepartmentID: patch.DepartmentID,
		NewPriority:  patch.Priority,
		Comment:      comment,
	}
	if update != nil {
		payload.FileURLs = update.FileURLs
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventJobUpdated,
		JobID:   jobID,
		ActorID: actor.ID,
		Payload: payload,
	})

	updated, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Job: updated, Update: update}, nil
}

// RequestApproval appends a comment-only history entry recording that the
// client was asked to approve, and returns the shareable tracking link.
func (s *JobService) RequestApproval(ctx context.Context, jobID string, actor *domain.UserProfile) (string, error) {
	if actor == nil {
		return "", apperrors.NewUnauthenticated("sign in to request approval")
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if !CanUpdate(actor, job) {
		return "", apperrors.NewPermissionDenied("job belongs to another department")
	}

	link := s.TrackingLink(jobID)
	comment := fmt.Sprintf("Client approval requested. Tracking link: %s", link)
	// Comment-only entry: nothing on the job row changes, so this goes
	// straight to the history table instead of through a job transaction.
	update := &domain.JobUpdate{
		JobID:        jobID,
		UserID:       actor.ID,
		DepartmentID: actor.DepartmentID,
		Comment:      &comment,
	}
	if err := s.updates.Create(ctx, update); err != nil {
		return "", apperrors.Classify(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventJobUpdated,
		JobID:   jobID,
		ActorID: actor.ID,
		Payload: events.JobUpdatedPayload{Comment: &comment},
	})
	return link, nil
}

// TrackingLink builds the public tracker URL for a job.
func (s *JobService) TrackingLink(jobID string) string {
	return fmt.Sprintf("%s/track/%s", s.trackerBase, jobID)
}

// uploadAttachments uploads the screenshot and every other file, each
// exactly once. Any single failure aborts the whole update; files already
// uploaded are removed best effort so the abort leaves nothing behind.
func (s *JobService) uploadAttachments(ctx context.Context, jobID string, changes UpdateChanges) ([]string, error) {
	var attachments []FileAttachment
	if changes.Screenshot != nil {
		attachments = append(attachments, *changes.Screenshot)
	}
	attachments = append(attachments, changes.Files...)
	if len(attachments) == 0 {
		return nil, nil
	}

	urls := make([]string, 0, len(attachments))
	for _, att := range attachments {
		key := storage.JobFileKey(jobID, att.Filename)
		url, err := s.files.Upload(ctx, key, att.ContentType, att.Content, att.Size)
		if err != nil {
			for _, uploaded := range urls {
				if delErr := s.files.DeleteByURL(ctx, uploaded); delErr != nil {
					s.logger.Warn("aborted upload cleanup failed",
						zap.String("job_id", jobID),
						zap.String("file_url", uploaded),
						zap.Error(delErr))
				}
			}
			return nil, apperrors.Classify(err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// buildComment merges the explicit comment with auto-generated notes: one
// when a screenshot arrives without being mentioned, one when the approval
// URL is newly set.
func buildComment(changes UpdateChanges, approvalSet bool) *string {
	var lines []string
	if changes.Comment != nil {
		if text := strings.TrimSpace(*changes.Comment); text != "" {
			lines = append(lines, text)
		}
	}
	if changes.Screenshot != nil {
		mentioned := len(lines) > 0 && strings.Contains(strings.ToLower(lines[0]), "screenshot")
		if !mentioned {
			lines = append(lines, "Screenshot attached.")
		}
	}
	if approvalSet && changes.ApprovalURL != nil {
		lines = append(lines, fmt.Sprintf("Client approval proof recorded: %s", *changes.ApprovalURL))
	}
	if len(lines) == 0 {
		return nil
	}
	joined := strings.Join(lines, "\n")
	return &joined
}
