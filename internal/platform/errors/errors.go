package apperrors

import "errors"

// Local-state errors are returned synchronously to the caller; mirror
// errors are only ever reported through the sync status channel.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDuplicateName         = errors.New("activity name already exists")
	ErrNotFound              = errors.New("not found")
	ErrTimerRunning          = errors.New("a timer is already running")
	ErrTimerIdle             = errors.New("no timer is running")
	ErrMirrorUnavailable     = errors.New("mirror unavailable")
	ErrMirrorDocumentMissing = errors.New("mirror document missing")
	ErrStorageUnavailable    = errors.New("local storage unavailable")
)
