package service

import (
	"context"
	"time"

	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/repository"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// TrackerService is the public, unauthenticated projection of one job's
// position in the pipeline.
type TrackerService struct {
	jobs        repository.JobRepository
	departments repository.DepartmentRepository
}

// TrackerDependencies bundles collaborators for the tracker.
type TrackerDependencies struct {
	JobRepo        repository.JobRepository
	DepartmentRepo repository.DepartmentRepository
}

// NewTrackerService constructs the service.
func NewTrackerService(deps TrackerDependencies) *TrackerService {
	return &TrackerService{jobs: deps.JobRepo, departments: deps.DepartmentRepo}
}

// Stage progress states for the tracker stepper.
const (
	StageCompleted = "completed"
	StageCurrent   = "current"
	StagePending   = "pending"
)

// TrackerStage is one step of the progress indicator.
type TrackerStage struct {
	Name  string                    `json:"name"`
	State string                    `json:"state"`
	Meta  domain.StatusPresentation `json:"meta"`
}

// TrackerView is what the public tracking page renders.
type TrackerView struct {
	JobID      string                    `json:"job_id"`
	ClientName string                    `json:"client_name"`
	Status     domain.StatusPresentation `json:"status"`
	Priority   domain.JobPriority        `json:"priority"`
	CreatedAt  time.Time                 `json:"created_at"`
	// Undetermined is true when the job's status matches no known stage.
	// Stages are omitted then; guessing a position would mislead the
	// client.
	Undetermined bool           `json:"undetermined"`
	Stages       []TrackerStage `json:"stages,omitempty"`
}

// Track maps the job's status onto the ordered department list. Stages
// before the match are completed, the match is current, later ones are
// pending. An unmatched status yields the explicit undetermined state.
func (s *TrackerService) Track(ctx context.Context, jobID string) (*TrackerView, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if apperrors.IsNotFound(apperrors.Classify(err)) {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.Classify(err)
	}

	departments, err := s.departments.ListOrdered(ctx)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	view := &TrackerView{
		JobID:      job.ID,
		ClientName: job.ClientName,
		Status:     domain.StatusConfig(job.Status),
		Priority:   job.Priority,
		CreatedAt:  job.CreatedAt,
	}

	idx := domain.StageIndex(departments, job.Status)
	if idx < 0 {
		view.Undetermined = true
		return view, nil
	}

	view.Stages = make([]TrackerStage, len(departments))
	for i, dept := range departments {
		state := StagePending
		switch {
		case i < idx:
			state = StageCompleted
		case i == idx:
			state = StageCurrent
		}
		view.Stages[i] = TrackerStage{
			Name:  dept.Name,
			State: state,
			Meta:  domain.StatusConfig(dept.Name),
		}
	}
	return view, nil
}
