package partstream

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mazrean/partstream/internal/completion"
)

var (
	// ErrNotMultipart is reported when parsing is requested for a body not identified as multipart.
	ErrNotMultipart = errors.New("the request is not multipart")
	// ErrNilHandler is returned when the part handler is nil.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrNilCompleteFunc is returned when the completion callback is nil.
	ErrNilCompleteFunc = errors.New("the callback must not be nil")
	// ErrTooManyParts is returned when the parts are more than MaxParts.
	ErrTooManyParts = errors.New("too many parts")
	// ErrTooManyHeaders is returned when the headers are more than MaxHeaders.
	ErrTooManyHeaders = errors.New("too many headers")
	// ErrTooManyFields is returned when the non-file fields are more than MaxFields.
	ErrTooManyFields = errors.New("too many fields")
	// ErrFileTooLarge is returned when a file part exceeds MaxFileSize and WithLimitAsError is set.
	ErrFileTooLarge = errors.New("file too large")
	// ErrFieldTooLarge is returned when a field value exceeds MaxFieldSize and WithLimitAsError is set.
	ErrFieldTooLarge = errors.New("field too large")
	// ErrCanceled is the cause reported when Control.Cancel is called with a nil error.
	ErrCanceled = errors.New("multipart parsing canceled")
	// ErrDiscoverAfterTerminal is reported when the framer yields a part after
	// it has signalled the end of the body.
	ErrDiscoverAfterTerminal = completion.ErrDiscoverAfterTerminal
)

// HandlerError is the error a part is destroyed with when its handler fails.
type HandlerError struct {
	Name string
	Err  error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for part %q failed: %v", e.Name, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// IsHandlerError reports whether err was caused by a part handler or file consumer.
func IsHandlerError(err error) bool {
	var handlerErr *HandlerError
	return errors.As(err, &handlerErr)
}

// HTTPStatus returns the response status for a parsing error:
// 500 when a handler failed, 400 for a bad body.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsHandlerError(err):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
