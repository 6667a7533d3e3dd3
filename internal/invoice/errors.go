package invoice

import "errors"

var (
	ErrShiftNotFound       = errors.New("shift not found")
	ErrLastShift           = errors.New("cannot remove the last shift")
	ErrInvalidValue        = errors.New("invalid value")
	ErrUnknownField        = errors.New("unknown field")
	ErrRecognitionInFlight = errors.New("a timesheet is already being processed")
	ErrUnsupportedType     = errors.New("unsupported file type")
)
