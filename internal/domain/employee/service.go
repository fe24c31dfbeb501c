package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	// GetMyProfile returns the employee record linked to the caller.
	GetMyProfile(ctx context.Context) (EmployeeResponse, error)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee soft deletes an employee.
	DeleteEmployee(ctx context.Context, id string) error

	UploadDocument(ctx context.Context, req UploadDocumentRequest) (EmployeeResponse, error)
	RemoveDocument(ctx context.Context, id string, name string) (EmployeeResponse, error)
}
