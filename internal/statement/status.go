package statement

import (
	"errors"
	"fmt"
)

// Status is a stable string code describing why a document was rejected.
// Codes cross the API boundary as data, so they never change spelling.
type Status string

const (
	StatusInvalidType       Status = "ERROR_INVALID_TYPE"
	StatusFileTooLarge      Status = "ERROR_FILE_TOO_LARGE"
	StatusEncrypted         Status = "ERROR_ENCRYPTED"
	StatusPasswordIncorrect Status = "ERROR_PASSWORD_INCORRECT"
	StatusDecryptionFailed  Status = "ERROR_DECRYPTION_FAILED"
	StatusPDFLoadFailed     Status = "ERROR_PDF_LOAD_FAILED"
)

// StatusError is an input-rejection error. Nothing was processed and no
// partial result exists when one of these is returned.
type StatusError struct {
	Code    Status
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

func statusErr(code Status, format string, args ...any) *StatusError {
	return &StatusError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StatusOf extracts the rejection code from an error, or empty if the error
// is not an input rejection.
func StatusOf(err error) Status {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
