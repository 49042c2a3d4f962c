package dto

import "time"

// UserResponse is the staff profile projection.
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	DepartmentID *string   `json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReassignDepartmentRequest moves an employee; a null department id
// unassigns them.
type ReassignDepartmentRequest struct {
	DepartmentID *string `json:"department_id"`
}

// DiagnoseRequest asks the assistant for a root-cause hint.
type DiagnoseRequest struct {
	Description string `json:"description"`
	CodeContext string `json:"code_context,omitempty"`
}

// DiagnoseResponse is the assistant's advisory answer.
type DiagnoseResponse struct {
	Diagnosis  string `json:"diagnosis"`
	Suggestion string `json:"suggestion,omitempty"`
}
