package errors

import "errors"

var (
	ErrNotFound = errors.New("classroom not found")

	ErrDuplicateName = errors.New("classroom name already exists")
)
