package company

import "errors"

var (
	ErrCompanyNotFound       = errors.New("company not found")
	ErrCompanyUsernameExists = errors.New("company username already exists")
	ErrLogoTooLarge          = errors.New("logo exceeds the maximum size")
	ErrLogoType              = errors.New("logo must be a JPEG or PNG image")
)
