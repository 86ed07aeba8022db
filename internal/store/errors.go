package store

import "errors"

var (
	ErrToiletNotFound       = errors.New("toilet not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicateAssignment  = errors.New("toilet assigned to more than one provider")
)
