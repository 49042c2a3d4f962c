package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/repository"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// SessionState names one step of session resolution. Resolution moves
// strictly forward through these states; a snapshot handed to downstream
// consumers is only ever Ready or Unauthenticated.
type SessionState string

const (
	StateCheckingAuth        SessionState = "checking_auth"
	StateFetchingProfile     SessionState = "fetching_profile"
	StateFetchingDepartments SessionState = "fetching_departments"
	StateReady               SessionState = "ready"
	StateUnauthenticated     SessionState = "unauthenticated"
)

// SessionSnapshot is the all-or-nothing view handed to downstream
// consumers. Until State is Ready, Profile and Departments stay nil even
// when parts have already been fetched: no consumer ever observes an
// identity without its matching profile, or a board without its columns.
type SessionSnapshot struct {
	State       SessionState
	Profile     *domain.UserProfile
	Departments []domain.Department
}

// Ready reports whether the snapshot is safe to consume.
func (s *SessionSnapshot) Ready() bool {
	return s != nil && s.State == StateReady
}

// SessionService resolves a bearer token into one consistent snapshot of
// identity, profile and ordered departments.
type SessionService struct {
	tokens      *auth.TokenManager
	users       repository.UserRepository
	departments repository.DepartmentRepository
}

// SessionDependencies bundles collaborators for session resolution.
type SessionDependencies struct {
	Tokens         *auth.TokenManager
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	return &SessionService{
		tokens:      deps.Tokens,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
	}
}

// Resolve walks the session state machine: token check, profile fetch,
// department fetch. A missing or invalid token settles as Unauthenticated
// with everything withheld. A fetch failure mid-flight returns the error
// together with a snapshot frozen in the in-flight state so the caller can
// tell which step broke.
func (s *SessionService) Resolve(ctx context.Context, token string) (*SessionSnapshot, error) {
	snapshot := &SessionSnapshot{State: StateCheckingAuth}

	if token == "" {
		snapshot.State = StateUnauthenticated
		return snapshot, nil
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		snapshot.State = StateUnauthenticated
		return snapshot, nil
	}

	snapshot.State = StateFetchingProfile
	profile, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Token outlived the profile. Settle as unauthenticated.
			snapshot.State = StateUnauthenticated
			return snapshot, nil
		}
		return snapshot, apperrors.Classify(err)
	}

	snapshot.State = StateFetchingDepartments
	departments, err := s.departments.ListOrdered(ctx)
	if err != nil {
		return snapshot, apperrors.Classify(err)
	}

	snapshot.State = StateReady
	snapshot.Profile = profile
	snapshot.Departments = departments
	return snapshot, nil
}

// ResolveProfile builds a ready snapshot for an already-authenticated
// profile, fetching only the department list. Used by handlers that run
// behind the auth middleware.
func (s *SessionService) ResolveProfile(ctx context.Context, profile *domain.UserProfile) (*SessionSnapshot, error) {
	if profile == nil {
		return &SessionSnapshot{State: StateUnauthenticated}, nil
	}
	snapshot := &SessionSnapshot{State: StateFetchingDepartments}
	departments, err := s.departments.ListOrdered(ctx)
	if err != nil {
		return snapshot, apperrors.Classify(err)
	}
	snapshot.State = StateReady
	snapshot.Profile = profile
	snapshot.Departments = departments
	return snapshot, nil
}
