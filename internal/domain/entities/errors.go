package entities

import (
	"errors"
	"fmt"
)

// StageErrorKind classifies a provisioning failure by the stage that produced it
type StageErrorKind int

const (
	// ToolchainNotFound means the build tool is not on PATH
	ToolchainNotFound StageErrorKind = iota + 1
	// DownloadFailure means an artifact fetch failed (network, HTTP status, write, integrity)
	DownloadFailure
	// VerificationFailure means a module could not be found or loaded
	VerificationFailure
	// BuildFailure means the build tool exited non-zero
	BuildFailure
	// SpawnError means the build tool process could not be started
	SpawnError
)

// String returns the kind name
func (k StageErrorKind) String() string {
	switch k {
	case ToolchainNotFound:
		return "ToolchainNotFound"
	case DownloadFailure:
		return "DownloadFailure"
	case VerificationFailure:
		return "VerificationFailure"
	case BuildFailure:
		return "BuildFailure"
	case SpawnError:
		return "SpawnError"
	default:
		return fmt.Sprintf("StageErrorKind(%d)", int(k))
	}
}

var (
	// ErrToolchainNotFound is wrapped by ToolchainNotFound errors
	ErrToolchainNotFound = errors.New("build toolchain not found")
	// ErrBuildFailed is wrapped by BuildFailure errors
	ErrBuildFailed = errors.New("build failed")
)

// StageError is a typed provisioning error
type StageError struct {
	Kind StageErrorKind
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with kind
func NewStageError(kind StageErrorKind, err error) *StageError {
	return &StageError{Kind: kind, Err: err}
}

// KindOf returns the StageErrorKind of err, or 0 if err is not a StageError
func KindOf(err error) StageErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
