package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/events"
	"github.com/printops/jobtrack/internal/observability"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

type jobServiceHarness struct {
	svc     *JobService
	jobs    *fakeJobRepo
	updates *fakeUpdateRepo
	depts   *fakeDeptRepo
	files   *fakeFileStore
}

func newJobServiceHarness(t *testing.T) *jobServiceHarness {
	t.Helper()
	updates := newFakeUpdateRepo()
	jobs := newFakeJobRepo(updates)
	depts := newFakeDeptRepo(domain.PipelineOrder...)
	files := newFakeFileStore()
	logger := zap.NewNop()

	reaper := NewReaperService(ReaperDependencies{
		JobRepo:       jobs,
		JobUpdateRepo: updates,
		Files:         files,
		Dispatcher:    events.NewInMemoryDispatcher(),
		Logger:        logger,
		Metrics:       observability.NewMetrics(),
	})
	svc := NewJobService(JobDependencies{
		JobRepo:        jobs,
		JobUpdateRepo:  updates,
		DepartmentRepo: depts,
		Files:          files,
		Reaper:         reaper,
		Dispatcher:     events.NewInMemoryDispatcher(),
		Logger:         logger,
		TrackerBase:    "https://jobs.test",
	})
	return &jobServiceHarness{svc: svc, jobs: jobs, updates: updates, depts: depts, files: files}
}

func (h *jobServiceHarness) seedJob(t *testing.T, status string, priority domain.JobPriority) *domain.Job {
	t.Helper()
	dept, err := h.depts.GetByName(context.Background(), status)
	require.NoError(t, err)
	job := &domain.Job{
		ClientName:     "ACME Prints",
		Specifications: "500 flyers, A5, glossy",
		Status:         dept.Name,
		DepartmentID:   dept.ID,
		Priority:       priority,
	}
	require.NoError(t, h.jobs.Create(context.Background(), job))
	return job
}

func owner() *domain.UserProfile {
	return &domain.UserProfile{ID: "owner-1", Email: "owner@shop.test", Role: domain.RoleOwner}
}

func employee(deptID string) *domain.UserProfile {
	p := &domain.UserProfile{ID: "emp-1", Email: "emp@shop.test", Role: domain.RoleEmployee}
	if deptID != "" {
		p.DepartmentID = &deptID
	}
	return p
}

func TestCreateJobStartsAtEntryStage(t *testing.T) {
	h := newJobServiceHarness(t)

	job, err := h.svc.CreateJob(context.Background(), JobCreateInput{
		ClientName:     "ACME Prints",
		Specifications: "business cards",
		Priority:       domain.PriorityHigh,
	}, owner())
	require.NoError(t, err)

	entry, err := h.depts.GetByName(context.Background(), domain.EntryStageName)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStageName, job.Status)
	assert.Equal(t, entry.ID, job.DepartmentID)
}

func TestCreateJobMissingEntryStageIsConfigurationError(t *testing.T) {
	h := newJobServiceHarness(t)
	h.depts.departments = nil

	_, err := h.svc.CreateJob(context.Background(), JobCreateInput{ClientName: "ACME"}, owner())
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeConfigurationError, derr.Code)
}

func TestCreateJobRejectsForeignDepartment(t *testing.T) {
	h := newJobServiceHarness(t)
	printing, err := h.depts.GetByName(context.Background(), domain.DeptPrinting)
	require.NoError(t, err)

	_, err = h.svc.CreateJob(context.Background(), JobCreateInput{ClientName: "ACME"}, employee(printing.ID))
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodePermissionDenied, derr.Code)
}

func TestApplyUpdateEmptyChangesIsNoChanges(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)

	_, err := h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{}, owner())
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeNoChanges, derr.Code)
}

func TestApplyUpdateNilActorIsUnauthenticated(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)
	comment := "hello"

	_, err := h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{Comment: &comment}, nil)
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeUnauthenticated, derr.Code)
}

func TestApplyUpdateStatusMovesDepartmentInLockstep(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)

	status := domain.DeptPrinting
	result, err := h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{NewStatus: &status}, owner())
	require.NoError(t, err)
	require.False(t, result.Reaped)

	printing, err := h.depts.GetByName(context.Background(), domain.DeptPrinting)
	require.NoError(t, err)
	assert.Equal(t, domain.DeptPrinting, result.Job.Status)
	assert.Equal(t, printing.ID, result.Job.DepartmentID)

	require.NotNil(t, result.Update)
	require.NotNil(t, result.Update.NewStatus)
	assert.Equal(t, domain.DeptPrinting, *result.Update.NewStatus)
}

func TestApplyUpdateCommentOnlyLeavesJobFieldsUntouched(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)
	comment := "Client approved colors"

	actor := employee(job.DepartmentID)
	result, err := h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{Comment: &comment}, actor)
	require.NoError(t, err)

	assert.Equal(t, job.Status, result.Job.Status)
	assert.Equal(t, job.DepartmentID, result.Job.DepartmentID)
	assert.Equal(t, job.Priority, result.Job.Priority)

	history, err := h.updates.ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, comment, *history[0].Comment)
	assert.Nil(t, history[0].NewStatus)
	assert.Nil(t, history[0].NewPriority)
}

func TestApplyUpdateEmployeeOutsideDepartmentDenied(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptBilling, domain.PriorityNormal)
	design, err := h.depts.GetByName(context.Background(), domain.DeptDesign)
	require.NoError(t, err)

	comment := "not my lane"
	_, err = h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{Comment: &comment}, employee(design.ID))
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodePermissionDenied, derr.Code)
}

func TestApplyUpdateTerminalStatusRoutesToReaper(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptReady, domain.PriorityNormal)

	// History with an attachment that the reaper must clean up.
	url, err := h.files.Upload(context.Background(), "jobs/"+job.ID+"/updates/1_proof.pdf", "application/pdf", strings.NewReader("x"), 1)
	require.NoError(t, err)
	require.NoError(t, h.updates.Create(context.Background(), &domain.JobUpdate{
		JobID: job.ID, UserID: "emp-1", FileURLs: []string{url},
	}))

	status := domain.TerminalStageName
	result, err := h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{NewStatus: &status}, owner())
	require.NoError(t, err)
	assert.True(t, result.Reaped)
	assert.Nil(t, result.Update)

	_, err = h.jobs.GetByID(context.Background(), job.ID)
	assert.Error(t, err)
	assert.Contains(t, h.files.deleted, url)

	// No history entry is appended for the terminal transition.
	history, err := h.updates.ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestApplyUpdateUploadFailureAbortsWithoutPartialWrite(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)
	h.files.failUpload = "broken"

	changes := UpdateChanges{
		Files: []FileAttachment{
			{Filename: "fine.png", ContentType: "image/png", Content: strings.NewReader("a"), Size: 1},
			{Filename: "broken.png", ContentType: "image/png", Content: strings.NewReader("b"), Size: 1},
		},
	}
	_, err := h.svc.ApplyUpdate(context.Background(), job.ID, changes, owner())
	require.Error(t, err)

	history, lerr := h.updates.ListByJob(context.Background(), job.ID)
	require.NoError(t, lerr)
	assert.Empty(t, history)
	// The upload that succeeded before the failure was compensated.
	assert.Zero(t, h.files.storedCount())
}

func TestApplyUpdateCommitFailureCompensatesUploads(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)
	h.jobs.commitErr = errors.New("store unavailable")

	changes := UpdateChanges{
		Screenshot: &FileAttachment{Filename: "shot.png", ContentType: "image/png", Content: strings.NewReader("s"), Size: 1},
	}
	_, err := h.svc.ApplyUpdate(context.Background(), job.ID, changes, owner())
	require.Error(t, err)
	assert.Zero(t, h.files.storedCount())
}

func TestApplyUpdateScreenshotGetsAutoComment(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)

	changes := UpdateChanges{
		Screenshot: &FileAttachment{Filename: "shot.png", ContentType: "image/png", Content: strings.NewReader("s"), Size: 1},
	}
	result, err := h.svc.ApplyUpdate(context.Background(), job.ID, changes, owner())
	require.NoError(t, err)
	require.NotNil(t, result.Update)
	require.NotNil(t, result.Update.Comment)
	assert.Contains(t, *result.Update.Comment, "Screenshot attached")
	assert.Len(t, result.Update.FileURLs, 1)
}

func TestApplyUpdateApprovalURLGetsAutoComment(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)

	url := "https://proofs.test/approved.pdf"
	result, err := h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{ApprovalURL: &url}, owner())
	require.NoError(t, err)

	require.NotNil(t, result.Job.ApprovalURL)
	assert.Equal(t, url, *result.Job.ApprovalURL)
	require.NotNil(t, result.Update)
	require.NotNil(t, result.Update.Comment)
	assert.Contains(t, *result.Update.Comment, url)
}

func TestApplyUpdateUnknownStageRejected(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)

	status := "Lamination"
	_, err := h.svc.ApplyUpdate(context.Background(), job.ID, UpdateChanges{NewStatus: &status}, owner())
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeValidationFailed, derr.Code)
}

func TestRequestApprovalAppendsNoteAndReturnsLink(t *testing.T) {
	h := newJobServiceHarness(t)
	job := h.seedJob(t, domain.DeptDesign, domain.PriorityNormal)

	link, err := h.svc.RequestApproval(context.Background(), job.ID, owner())
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.test/track/"+job.ID, link)

	history, err := h.updates.ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, *history[0].Comment, link)

	// Job fields untouched: the note goes straight to history without a
	// job transaction.
	fresh, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Status, fresh.Status)
	assert.Zero(t, h.jobs.commits)
}
