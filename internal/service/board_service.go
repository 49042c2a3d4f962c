package service

import (
	"context"

	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/repository"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// BoardService derives the role-scoped Kanban view from a ready session
// snapshot.
type BoardService struct {
	jobs repository.JobRepository
}

// BoardDependencies bundles collaborators for the board view.
type BoardDependencies struct {
	JobRepo repository.JobRepository
}

// NewBoardService constructs the service.
func NewBoardService(deps BoardDependencies) *BoardService {
	return &BoardService{jobs: deps.JobRepo}
}

// BoardView is the role-scoped board: column departments in pipeline order
// and the jobs visible to the caller.
type BoardView struct {
	Departments []domain.Department
	Jobs        []domain.Job
}

// Board computes the caller's view. Owner sees every column except the
// terminal stage and every job not already at it (terminal jobs should be
// gone, the filter guards against races with the reaper). An assigned
// employee sees exactly their department and its jobs. An unassigned
// employee sees an empty board; the caller renders a pending-assignment
// state.
func (s *BoardService) Board(ctx context.Context, snapshot *SessionSnapshot) (*BoardView, error) {
	if !snapshot.Ready() || snapshot.Profile == nil {
		return nil, apperrors.NewUnauthenticated("session not ready")
	}

	view := &BoardView{
		Departments: VisibleDepartments(snapshot.Profile, snapshot.Departments),
	}
	if len(view.Departments) == 0 {
		view.Jobs = []domain.Job{}
		return view, nil
	}

	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	view.Jobs = VisibleJobs(snapshot.Profile, jobs)
	return view, nil
}

// VisibleDepartments filters the ordered department list by role.
func VisibleDepartments(profile *domain.UserProfile, departments []domain.Department) []domain.Department {
	visible := []domain.Department{}
	switch {
	case profile.IsOwner():
		for _, dept := range departments {
			if dept.Name != domain.TerminalStageName {
				visible = append(visible, dept)
			}
		}
	case profile.DepartmentID != nil:
		for _, dept := range departments {
			if dept.ID == *profile.DepartmentID {
				visible = append(visible, dept)
			}
		}
	}
	return visible
}

// VisibleJobs filters jobs by role.
func VisibleJobs(profile *domain.UserProfile, jobs []domain.Job) []domain.Job {
	visible := []domain.Job{}
	switch {
	case profile.IsOwner():
		for _, job := range jobs {
			if job.Status != domain.TerminalStageName {
				visible = append(visible, job)
			}
		}
	case profile.DepartmentID != nil:
		for _, job := range jobs {
			if job.DepartmentID == *profile.DepartmentID {
				visible = append(visible, job)
			}
		}
	}
	return visible
}

// CanUpdate reports whether the profile may mutate the job: the owner
// always, an employee only while the job sits in their assigned
// department. Re-derived at action time, never cached from a view filter.
func CanUpdate(profile *domain.UserProfile, job *domain.Job) bool {
	if profile == nil || job == nil {
		return false
	}
	if profile.IsOwner() {
		return true
	}
	return profile.AssignedTo(job.DepartmentID)
}
