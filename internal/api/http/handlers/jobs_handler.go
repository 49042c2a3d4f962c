package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/printops/jobtrack/internal/api/dto"
	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/service"
	"github.com/printops/jobtrack/internal/storage"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// JobsHandler manages job CRUD and the update pipeline endpoints.
type JobsHandler struct {
	jobService *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{jobService: jobService}
}

// CreateJob POST /jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return apperrors.NewUnauthenticated("staff required")
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.jobService.CreateJob(c.UserContext(), service.JobCreateInput{
		ClientName:     req.ClientName,
		Specifications: req.Specifications,
		Priority:       domain.JobPriority(req.Priority),
	}, principal.Profile)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": jobResponse(job)})
}

// GetJob GET /jobs/:id returns the job and its history, newest first.
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return apperrors.NewUnauthenticated("staff required")
	}

	job, err := h.jobService.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.jobService.ListHistory(c.UserContext(), job.ID)
	if err != nil {
		return err
	}

	resp := dto.JobDetailResponse{
		Job:     jobResponse(job),
		Updates: make([]dto.JobUpdateResponse, 0, len(history)),
	}
	for i := range history {
		resp.Updates = append(resp.Updates, jobUpdateResponse(&history[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateJob POST /jobs/:id/updates. Accepts multipart form data: optional
// status, priority, approval_url and comment fields, one optional
// screenshot file and any number of files entries.
func (h *JobsHandler) UpdateJob(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return apperrors.NewUnauthenticated("staff required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form expected", nil)
	}

	changes := service.UpdateChanges{}
	if v := formValue(form, "status"); v != "" {
		changes.NewStatus = &v
	}
	if v := formValue(form, "priority"); v != "" {
		p := domain.JobPriority(v)
		changes.NewPriority = &p
	}
	if v := formValue(form, "approval_url"); v != "" {
		changes.ApprovalURL = &v
	}
	if v := formValue(form, "comment"); v != "" {
		changes.Comment = &v
	}

	var open []multipart.File
	defer func() {
		for _, f := range open {
			_ = f.Close()
		}
	}()

	if headers := form.File["screenshot"]; len(headers) > 0 {
		att, file, err := openAttachment(headers[0])
		if err != nil {
			return err
		}
		open = append(open, file)
		changes.Screenshot = att
	}
	for _, header := range form.File["files"] {
		att, file, err := openAttachment(header)
		if err != nil {
			return err
		}
		open = append(open, file)
		changes.Files = append(changes.Files, *att)
	}

	result, err := h.jobService.ApplyUpdate(c.UserContext(), c.Params("id"), changes, principal.Profile)
	if err != nil {
		return err
	}

	resp := dto.UpdateJobResponse{Reaped: result.Reaped}
	if result.Job != nil {
		job := jobResponse(result.Job)
		resp.Job = &job
	}
	if result.Update != nil {
		update := jobUpdateResponse(result.Update)
		resp.Update = &update
	}
	return c.JSON(fiber.Map{"data": resp})
}

// RequestApproval POST /jobs/:id/approval-request.
func (h *JobsHandler) RequestApproval(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return apperrors.NewUnauthenticated("staff required")
	}
	link, err := h.jobService.RequestApproval(c.UserContext(), c.Params("id"), principal.Profile)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ApprovalRequestResponse{TrackingLink: link}})
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func openAttachment(header *multipart.FileHeader) (*service.FileAttachment, multipart.File, error) {
	if header.Size > storage.MaxUploadSize {
		return nil, nil, apperrors.NewValidationError("file too large", map[string]any{
			"filename": header.Filename,
			"max_size": storage.MaxUploadSize,
		})
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("unreadable file", map[string]any{"filename": header.Filename})
	}
	return &service.FileAttachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
		Size:        header.Size,
	}, file, nil
}
