package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrEmailExists        = errors.New("email already registered in this company")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrEmployeeNotActive  = errors.New("employee is not active")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own employee record")
	ErrInvalidBankAccount = errors.New("bank account details are incomplete")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDocumentTooLarge   = errors.New("document exceeds the size limit")
	ErrDocumentType       = errors.New("document type is not allowed")
)
