package handlers

import (
	"github.com/printops/jobtrack/internal/api/dto"
	"github.com/printops/jobtrack/internal/domain"
)

func userResponse(profile *domain.UserProfile) dto.UserResponse {
	return dto.UserResponse{
		ID:           profile.ID,
		Email:        profile.Email,
		Role:         string(profile.Role),
		DepartmentID: profile.DepartmentID,
		CreatedAt:    profile.CreatedAt,
	}
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:           dept.ID,
		Name:         dept.Name,
		Description:  dept.Description,
		Presentation: domain.StatusConfig(dept.Name),
	}
}

func jobResponse(job *domain.Job) dto.JobResponse {
	resp := dto.JobResponse{
		ID:                 job.ID,
		ClientName:         job.ClientName,
		Specifications:     job.Specifications,
		Status:             job.Status,
		DepartmentID:       job.DepartmentID,
		Priority:           string(job.Priority),
		ApprovalURL:        job.ApprovalURL,
		CreatedAt:          job.CreatedAt,
		StatusPresentation: domain.StatusConfig(job.Status),
	}
	if cfg, ok := domain.PriorityConfig(job.Priority); ok {
		resp.PriorityPresentation = &cfg
	}
	return resp
}

func jobUpdateResponse(update *domain.JobUpdate) dto.JobUpdateResponse {
	resp := dto.JobUpdateResponse{
		ID:           update.ID,
		UserID:       update.UserID,
		DepartmentID: update.DepartmentID,
		Comment:      update.Comment,
		NewStatus:    update.NewStatus,
		FileURLs:     update.ReferencedFiles(),
		CreatedAt:    update.CreatedAt,
	}
	if update.NewPriority != nil {
		p := string(*update.NewPriority)
		resp.NewPriority = &p
	}
	return resp
}
