package interview

import "errors"

var (
	// ErrPermissionDenied means the user refused camera or microphone access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDeviceUnavailable means no usable capture device was found or a
	// track ended unexpectedly.
	ErrDeviceUnavailable = errors.New("media device unavailable")

	// ErrSessionUnavailable means the conversational agent could not be
	// reached or refused the session. The interview continues without it.
	ErrSessionUnavailable = errors.New("conversational agent unavailable")

	// ErrAlreadyApplied means the candidate already has an application for
	// this job and the submission should redirect instead of duplicating.
	ErrAlreadyApplied = errors.New("application already exists for this job")

	// ErrInvalidJob means the application record could not be created, for
	// example because the job reference is invalid.
	ErrInvalidJob = errors.New("invalid job reference")
)

// FailureClass groups errors by how the flow reacts to them.
type FailureClass int

const (
	ClassUnknown FailureClass = iota
	ClassPermission // terminal for the attempt, user-retriable
	ClassDevice     // terminal for the attempt, user-retriable
	ClassSession    // non-fatal, degrade to recording-only
	ClassUpload     // non-fatal, degrade to sentinel reference
	ClassStore      // fatal to the submission
)

// UploadError wraps a storage failure so Classify can route it.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "upload failed: " + e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// StoreError wraps a record-store failure on application creation.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return "record store error: " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// Classify maps an error to its failure class.
func Classify(err error) FailureClass {
	var ue *UploadError
	var se *StoreError
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, ErrPermissionDenied):
		return ClassPermission
	case errors.Is(err, ErrDeviceUnavailable):
		return ClassDevice
	case errors.Is(err, ErrSessionUnavailable):
		return ClassSession
	case errors.As(err, &ue):
		return ClassUpload
	case errors.As(err, &se), errors.Is(err, ErrInvalidJob):
		return ClassStore
	default:
		return ClassUnknown
	}
}

// Retriable reports whether the user should be offered a retry affordance.
// Session and upload failures degrade instead of retrying.
func Retriable(class FailureClass) bool {
	switch class {
	case ClassPermission, ClassDevice, ClassStore:
		return true
	default:
		return false
	}
}
