package transfer

import "errors"

var (
	ErrTransferNotFound       = errors.New("transfer not found")
	ErrTransferNotPending     = errors.New("transfer has already been reviewed")
	ErrSameBranch             = errors.New("target branch must differ from the employee's current branch")
	ErrTransferAlreadyPending = errors.New("employee already has a pending transfer")
)
