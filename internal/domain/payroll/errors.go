package payroll

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidInput     = errors.New("invalid payroll input")
)
