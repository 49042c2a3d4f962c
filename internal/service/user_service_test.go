package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/events"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

func userServiceFixture(t *testing.T) (*UserService, *fakeUserRepo, *fakeDeptRepo) {
	t.Helper()
	users := newFakeUserRepo()
	depts := newFakeDeptRepo(domain.PipelineOrder...)
	svc := NewUserService(UserDependencies{
		UserRepo:       users,
		DepartmentRepo: depts,
		Dispatcher:     events.NewInMemoryDispatcher(),
	})
	return svc, users, depts
}

func TestReassignDepartment(t *testing.T) {
	svc, users, depts := userServiceFixture(t)
	emp := &domain.UserProfile{Email: "emp@shop.test", Role: domain.RoleEmployee}
	require.NoError(t, users.Create(context.Background(), emp))
	billing, err := depts.GetByName(context.Background(), domain.DeptBilling)
	require.NoError(t, err)

	updated, err := svc.ReassignDepartment(context.Background(), emp.ID, &billing.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.DepartmentID)
	assert.Equal(t, billing.ID, *updated.DepartmentID)

	// Unassign.
	updated, err = svc.ReassignDepartment(context.Background(), emp.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.DepartmentID)
}

func TestReassignDepartmentRejectsOwner(t *testing.T) {
	svc, users, depts := userServiceFixture(t)
	boss := &domain.UserProfile{Email: "owner@shop.test", Role: domain.RoleOwner}
	require.NoError(t, users.Create(context.Background(), boss))
	billing, err := depts.GetByName(context.Background(), domain.DeptBilling)
	require.NoError(t, err)

	_, err = svc.ReassignDepartment(context.Background(), boss.ID, &billing.ID)
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeValidationFailed, derr.Code)
}

func TestReassignDepartmentUnknownDepartment(t *testing.T) {
	svc, users, _ := userServiceFixture(t)
	emp := &domain.UserProfile{Email: "emp@shop.test", Role: domain.RoleEmployee}
	require.NoError(t, users.Create(context.Background(), emp))

	bogus := "dept-999"
	_, err := svc.ReassignDepartment(context.Background(), emp.ID, &bogus)
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeNotFound, derr.Code)
}

func TestReassignDepartmentUnknownUser(t *testing.T) {
	svc, _, _ := userServiceFixture(t)

	_, err := svc.ReassignDepartment(context.Background(), "ghost", nil)
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeNotFound, derr.Code)
}
