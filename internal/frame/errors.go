package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned by Pipeline.Analyze when a frame is already in flight.
	ErrBusy = errors.New("pipeline busy")
	// ErrInvalidArgument reports a precondition violation such as non-positive dimensions.
	ErrInvalidArgument = errors.New("invalid argument")
)

// FormatError reports a source image whose plane layout cannot be converted.
// The frame carrying it should be dropped.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "unsupported frame format: " + e.Reason
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// IsFormatError reports whether err is, or wraps, a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
