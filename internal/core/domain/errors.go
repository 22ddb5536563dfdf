package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to clients as the "<Kind>: <message>" prefix.
const (
	KindNoStream   = "NoStreamError"
	KindToolFailed = "ToolError"
	KindBadInput   = "BadInputError"
	KindDownload   = "DownloadError"
)

// Path resolver failures, mapped to specific HTTP statuses by the
// handler layer.
var (
	ErrEmptyPath     = errors.New("missing file path")
	ErrForbiddenPath = errors.New("forbidden path")
	ErrFileNotFound  = errors.New("file not found")
)

// DownloadError is a strategy or orchestrator failure carrying a client
// visible kind.
type DownloadError struct {
	Kind string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewDownloadError wraps err under the given kind.
func NewDownloadError(kind string, err error) *DownloadError {
	return &DownloadError{Kind: kind, Err: err}
}

// ErrorKind extracts the client-visible kind from err, defaulting to
// KindDownload for errors that carry none.
func ErrorKind(err error) string {
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindDownload
}

// ErrorMessage renders err in the "<Kind>: <message>" shape used by
// every JSON error payload.
func ErrorMessage(err error) string {
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Error()
	}
	return fmt.Sprintf("%s: %v", KindDownload, err)
}
