package util

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify_PassesThroughDomainErrors(t *testing.T) {
	original := NewPermissionDenied("nope")
	classified := Classify(original)
	assert.Equal(t, CodePermissionDenied, classified.Code)
	assert.Equal(t, http.StatusForbidden, classified.HTTPStatus)
}

func TestClassify_NoRowsBecomesNotFound(t *testing.T) {
	classified := Classify(pgx.ErrNoRows)
	assert.Equal(t, CodeNotFound, classified.Code)
	assert.True(t, IsNotFound(classified))
}

func TestClassify_InsufficientPrivilege(t *testing.T) {
	classified := Classify(&pgconn.PgError{Code: "42501"})
	assert.Equal(t, CodePermissionDenied, classified.Code)
}

func TestClassify_ForeignKeyViolationBecomesNotFound(t *testing.T) {
	classified := Classify(&pgconn.PgError{Code: "23503", ConstraintName: "job_updates_job_id_fkey"})
	assert.Equal(t, CodeNotFound, classified.Code)
	assert.Equal(t, "job_updates_job_id_fkey", classified.Details["constraint"])
}

func TestClassify_DeadlineBecomesNetworkError(t *testing.T) {
	classified := Classify(context.DeadlineExceeded)
	assert.Equal(t, CodeNetworkError, classified.Code)
	assert.Equal(t, http.StatusBadGateway, classified.HTTPStatus)
}

func TestClassify_FallbackUnknown(t *testing.T) {
	classified := Classify(errors.New("boom"))
	assert.Equal(t, CodeUnknown, classified.Code)
	assert.ErrorContains(t, classified, "boom")
}

func TestNewNoChanges(t *testing.T) {
	var domainErr *DomainError
	assert.ErrorAs(t, NewNoChanges(), &domainErr)
	assert.Equal(t, CodeNoChanges, domainErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, domainErr.HTTPStatus)
}
