package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
	"github.com/ochairo/proclist/internal/domain/interfaces/gateways"
)

// InstallState is one step of the install state machine
type InstallState int

// Install states, in the order they can be visited
const (
	StateIdle InstallState = iota
	StateVerifying
	StateDownloading
	StateReVerifying
	StateBuilding
	StateDoneSuccess
	StateDoneFailure
)

// String returns the state name
func (s InstallState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerifying:
		return "verifying"
	case StateDownloading:
		return "downloading"
	case StateReVerifying:
		return "re-verifying"
	case StateBuilding:
		return "building"
	case StateDoneSuccess:
		return "done-success"
	case StateDoneFailure:
		return "done-failure"
	default:
		return fmt.Sprintf("InstallState(%d)", int(s))
	}
}

// InstallOutcome tells which path produced the module
type InstallOutcome int

const (
	// OutcomeFailed means the source build failed too
	OutcomeFailed InstallOutcome = iota
	// OutcomeVerified means the existing module already worked
	OutcomeVerified
	// OutcomeDownloaded means a prebuilt module was downloaded and verified
	OutcomeDownloaded
	// OutcomeBuilt means the module was compiled from source
	OutcomeBuilt
)

// String returns the outcome name
func (o InstallOutcome) String() string {
	switch o {
	case OutcomeVerified:
		return "verified"
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeBuilt:
		return "built"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("InstallOutcome(%d)", int(o))
	}
}

// Downloads runs one download round for the install target
type Downloads interface {
	Fetch(ctx context.Context, descriptors entities.ArtifactSet, target entities.InstallTarget, excludePatterns []string) (*DownloadResult, error)
}

// InstallOrchestrator drives verify, download and build for one policy.
// It holds no per-run state; every Install call returns its own result.
type InstallOrchestrator struct {
	verifier  TargetVerifier
	downloads Downloads
	builder   gateways.SourceBuilder
	logger    interfaces.Logger
}

// NewInstallOrchestrator creates a new install orchestrator
func NewInstallOrchestrator(
	verifier TargetVerifier,
	downloads Downloads,
	builder gateways.SourceBuilder,
	logger interfaces.Logger,
) *InstallOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &InstallOrchestrator{
		verifier:  verifier,
		downloads: downloads,
		builder:   builder,
		logger:    logger,
	}
}

// FallbackMessage announces the switch from the prebuilt path to a source build
const FallbackMessage = "pre-build test failed, compiling from source..."

// InstallResult contains the result of an install run
type InstallResult struct {
	Outcome      InstallOutcome
	States       []InstallState // Visited states, Idle first
	ModulePath   string         // Set when a verification succeeded
	Verification entities.VerificationResult
	PrebuiltErr  error // Why the prebuilt path was abandoned, if it was
	Error        error // Set when the run ended in failure

	VerifyDuration   time.Duration
	DownloadDuration time.Duration
	BuildDuration    time.Duration
	TotalDuration    time.Duration
}

// Success reports whether a working module was produced
func (r *InstallResult) Success() bool {
	return r.Outcome != OutcomeFailed
}

// Final returns the terminal state
func (r *InstallResult) Final() InstallState {
	if len(r.States) == 0 {
		return StateIdle
	}
	return r.States[len(r.States)-1]
}

// Summary returns the one-line status of the run
func (r *InstallResult) Summary() string {
	switch r.Outcome {
	case OutcomeVerified:
		return "pre-built binary verified"
	case OutcomeDownloaded:
		return "pre-built binary downloaded and verified"
	case OutcomeBuilt:
		return "built from source successfully"
	default:
		if r.Error != nil {
			return r.Error.Error()
		}
		return "install failed"
	}
}

// Install runs the state machine for policy and returns the result.
// Download and re-verification failures fall through to the source build;
// the returned error is non-nil only when that build fails.
func (o *InstallOrchestrator) Install(ctx context.Context, policy *entities.ProvisioningPolicy) (*InstallResult, error) {
	startTime := time.Now()
	result := &InstallResult{States: []InstallState{StateIdle}}
	enter := func(s InstallState) { result.States = append(result.States, s) }
	finish := func() { result.TotalDuration = time.Since(startTime) }

	if err := policy.Validate(); err != nil {
		enter(StateDoneFailure)
		result.Error = fmt.Errorf("invalid provisioning policy: %w", err)
		finish()
		return result, result.Error
	}

	// Verifying
	enter(StateVerifying)
	verifyStart := time.Now()
	verification := o.verifier.VerifyTarget(policy.Target, policy.ExcludePatterns)
	result.VerifyDuration = time.Since(verifyStart)
	result.Verification = verification
	o.logger.Debug("module verified",
		interfaces.F("status", verification.Status.String()),
		interfaces.F("path", verification.Path),
	)
	if verification.OK() {
		return o.succeed(result, OutcomeVerified, verification.Path, finish), nil
	}

	// Downloading, then Re-Verifying
	enter(StateDownloading)
	download, err := o.downloads.Fetch(ctx, policy.Artifacts, policy.Target, policy.ExcludePatterns)
	if download != nil {
		result.DownloadDuration = download.Duration
	}
	if err != nil {
		result.PrebuiltErr = err
		o.logger.Debug("prebuilt download failed", interfaces.Err(err))
	} else {
		enter(StateReVerifying)
		result.Verification = download.Verification
		if download.Verification.OK() {
			return o.succeed(result, OutcomeDownloaded, download.Verification.Path, finish), nil
		}
		result.PrebuiltErr = download.Verification.AsError()
		o.logger.Debug("downloaded module failed verification",
			interfaces.F("status", download.Verification.Status.String()),
			interfaces.Err(download.Verification.Err),
		)
	}

	// Building
	o.logger.Warn(FallbackMessage, interfaces.Err(result.PrebuiltErr))
	enter(StateBuilding)
	buildStart := time.Now()
	outcome, err := o.builder.Build(ctx)
	result.BuildDuration = time.Since(buildStart)
	if err == nil && !outcome.Success {
		err = entities.NewStageError(entities.BuildFailure, fmt.Errorf("%w: %s", entities.ErrBuildFailed, outcome.Reason))
	}
	if err != nil {
		enter(StateDoneFailure)
		result.Outcome = OutcomeFailed
		result.Error = err
		o.logger.Error("install failed", interfaces.Err(err))
		finish()
		return result, err
	}

	return o.succeed(result, OutcomeBuilt, "", finish), nil
}

func (o *InstallOrchestrator) succeed(result *InstallResult, outcome InstallOutcome, path string, finish func()) *InstallResult {
	result.States = append(result.States, StateDoneSuccess)
	result.Outcome = outcome
	result.ModulePath = path
	finish()
	o.logger.Info(result.Summary(), interfaces.F("path", path))
	return result
}
