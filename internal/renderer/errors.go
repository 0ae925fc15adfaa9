package renderer

import "errors"

// RenderError represents a failure while drawing, sealing or storing a page.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
	ErrCodeLayoutOverflow = "LAYOUT_OVERFLOW"
	ErrCodeCancelled      = "CANCELLED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the RenderError code wrapped in err, or "".
func ErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
