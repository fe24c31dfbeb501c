package department

import "errors"

var (
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentNameExists = errors.New("department with this name already exists")
	ErrParentNotFound       = errors.New("parent department not found")
	ErrSelfParent           = errors.New("department cannot be its own parent")
	ErrParentCycle          = errors.New("parent would create a cycle")
)
