package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/events"
	"github.com/printops/jobtrack/internal/repository"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// UserService covers the owner's staff administration.
type UserService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
}

// UserDependencies bundles collaborators for staff administration.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	Dispatcher     events.Dispatcher
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// ListUsers returns every staff profile.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	return users, nil
}

// ReassignDepartment moves an employee to a department, or unassigns them
// when departmentID is nil. Owners carry no department assignment.
func (s *UserService) ReassignDepartment(ctx context.Context, userID string, departmentID *string) (*domain.UserProfile, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.Classify(err)
	}
	if target.IsOwner() {
		return nil, apperrors.NewValidationError("owner has no department assignment", nil)
	}

	if departmentID != nil {
		if _, err := s.departments.GetByID(ctx, *departmentID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("department", map[string]any{"department_id": *departmentID})
			}
			return nil, apperrors.Classify(err)
		}
	}

	if err := s.users.UpdateDepartment(ctx, userID, departmentID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.Classify(err)
	}
	target.DepartmentID = departmentID

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventUserDeptReassigned,
		ActorID: userID,
		Payload: events.UserDeptReassignedPayload{
			UserID:       userID,
			DepartmentID: departmentID,
		},
	})
	return target, nil
}
