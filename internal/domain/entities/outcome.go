package entities

import "fmt"

// VerificationStatus is the tag of a VerificationResult
type VerificationStatus int

const (
	// NotFound means no module file exists at the resolved path
	NotFound VerificationStatus = iota
	// LoadFailed means the module exists but could not be loaded
	LoadFailed
	// Works means the module loaded without error
	Works
)

// String returns the status name
func (s VerificationStatus) String() string {
	switch s {
	case Works:
		return "works"
	case LoadFailed:
		return "load-failed"
	case NotFound:
		return "not-found"
	default:
		return fmt.Sprintf("VerificationStatus(%d)", int(s))
	}
}

// VerificationResult is the outcome of one verification attempt
type VerificationResult struct {
	Status VerificationStatus
	Path   string
	Err    error // Set for LoadFailed and NotFound
}

// OK reports whether the module works
func (r VerificationResult) OK() bool {
	return r.Status == Works
}

// AsError converts a failed result into a VerificationFailure stage error
func (r VerificationResult) AsError() error {
	if r.OK() {
		return nil
	}
	return &StageError{Kind: VerificationFailure, Err: r.Err}
}

// BuildOutcome is the result of one source build
type BuildOutcome struct {
	Success bool
	Reason  string // Set on failure
}

// BuildSucceeded returns a successful outcome
func BuildSucceeded() BuildOutcome {
	return BuildOutcome{Success: true}
}

// BuildFailed returns a failed outcome with reason
func BuildFailed(reason string) BuildOutcome {
	return BuildOutcome{Reason: reason}
}
