package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
)

type mockDownloads struct {
	result *DownloadResult
	err    error
	calls  int
}

func (m *mockDownloads) Fetch(_ context.Context, _ entities.ArtifactSet, _ entities.InstallTarget, _ []string) (*DownloadResult, error) {
	m.calls++
	if m.err != nil {
		return &DownloadResult{Duration: time.Millisecond}, m.err
	}
	return m.result, nil
}

type mockBuilder struct {
	outcome entities.BuildOutcome
	err     error
	calls   int
}

func (m *mockBuilder) Build(_ context.Context) (entities.BuildOutcome, error) {
	m.calls++
	return m.outcome, m.err
}

type recordingLogger struct {
	interfaces.NoOpLogger
	warnings []string
}

func (r *recordingLogger) Warn(msg string, _ ...interfaces.Field) {
	r.warnings = append(r.warnings, msg)
}

func testPolicy() *entities.ProvisioningPolicy {
	return &entities.ProvisioningPolicy{
		PackageName: "proclist",
		BaseURL:     "https://dist.example/",
		Artifacts:   testArtifacts(),
		Target:      entities.NewInstallTarget("lib", "proclist"),
		Toolchain:   entities.Toolchain{Binary: "make", Action: "rebuild"},
	}
}

func TestInstallOrchestrator_Install(t *testing.T) {
	const modulePath = "lib/proclist.so"
	buildErr := entities.NewStageError(entities.ToolchainNotFound,
		fmt.Errorf("%w: couldn't find the `make` binary", entities.ErrToolchainNotFound))

	tests := []struct {
		name          string
		verifications []entities.VerificationResult
		downloads     *mockDownloads
		builder       *mockBuilder
		wantOutcome   InstallOutcome
		wantStates    []InstallState
		wantSummary   string
		wantDownloads int
		wantBuilds    int
		wantWarning   bool
		wantErr       error
	}{
		{
			name:          "already installed",
			verifications: []entities.VerificationResult{works(modulePath)},
			downloads:     &mockDownloads{},
			builder:       &mockBuilder{},
			wantOutcome:   OutcomeVerified,
			wantStates:    []InstallState{StateIdle, StateVerifying, StateDoneSuccess},
			wantSummary:   "pre-built binary verified",
		},
		{
			name:          "prebuilt downloaded",
			verifications: []entities.VerificationResult{notFound(modulePath)},
			downloads:     &mockDownloads{result: &DownloadResult{Verification: works(modulePath)}},
			builder:       &mockBuilder{},
			wantOutcome:   OutcomeDownloaded,
			wantStates:    []InstallState{StateIdle, StateVerifying, StateDownloading, StateReVerifying, StateDoneSuccess},
			wantSummary:   "pre-built binary downloaded and verified",
			wantDownloads: 1,
		},
		{
			name:          "download fails, build succeeds",
			verifications: []entities.VerificationResult{notFound(modulePath)},
			downloads:     &mockDownloads{err: entities.NewStageError(entities.DownloadFailure, errors.New("HTTP 404"))},
			builder:       &mockBuilder{outcome: entities.BuildSucceeded()},
			wantOutcome:   OutcomeBuilt,
			wantStates:    []InstallState{StateIdle, StateVerifying, StateDownloading, StateBuilding, StateDoneSuccess},
			wantSummary:   "built from source successfully",
			wantDownloads: 1,
			wantBuilds:    1,
			wantWarning:   true,
		},
		{
			name:          "downloaded module does not load, build succeeds",
			verifications: []entities.VerificationResult{notFound(modulePath)},
			downloads: &mockDownloads{result: &DownloadResult{Verification: entities.VerificationResult{
				Status: entities.LoadFailed, Path: modulePath, Err: errors.New("plugin was built with a different version"),
			}}},
			builder:       &mockBuilder{outcome: entities.BuildSucceeded()},
			wantOutcome:   OutcomeBuilt,
			wantStates:    []InstallState{StateIdle, StateVerifying, StateDownloading, StateReVerifying, StateBuilding, StateDoneSuccess},
			wantSummary:   "built from source successfully",
			wantDownloads: 1,
			wantBuilds:    1,
			wantWarning:   true,
		},
		{
			name:          "toolchain missing",
			verifications: []entities.VerificationResult{notFound(modulePath)},
			downloads:     &mockDownloads{err: entities.NewStageError(entities.DownloadFailure, errors.New("offline"))},
			builder:       &mockBuilder{outcome: entities.BuildFailed(buildErr.Error()), err: buildErr},
			wantOutcome:   OutcomeFailed,
			wantStates:    []InstallState{StateIdle, StateVerifying, StateDownloading, StateBuilding, StateDoneFailure},
			wantSummary:   buildErr.Error(),
			wantDownloads: 1,
			wantBuilds:    1,
			wantWarning:   true,
			wantErr:       entities.ErrToolchainNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			verifier := &mockVerifier{results: tt.verifications}
			orch := NewInstallOrchestrator(verifier, tt.downloads, tt.builder, logger)

			result, err := orch.Install(context.Background(), testPolicy())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Install() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Install() error = %v", err)
			}

			if result.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %v, want %v", result.Outcome, tt.wantOutcome)
			}
			if diff := cmp.Diff(tt.wantStates, result.States); diff != "" {
				t.Errorf("state trace mismatch (-want +got):\n%s", diff)
			}
			if got := result.Summary(); got != tt.wantSummary {
				t.Errorf("Summary() = %q, want %q", got, tt.wantSummary)
			}
			if tt.downloads.calls != tt.wantDownloads {
				t.Errorf("download rounds = %d, want %d", tt.downloads.calls, tt.wantDownloads)
			}
			if tt.builder.calls != tt.wantBuilds {
				t.Errorf("builds = %d, want %d", tt.builder.calls, tt.wantBuilds)
			}

			warned := len(logger.warnings) == 1 && logger.warnings[0] == FallbackMessage
			if warned != tt.wantWarning {
				t.Errorf("warnings = %v, want fallback warning: %v", logger.warnings, tt.wantWarning)
			}
			if result.Success() != (tt.wantOutcome != OutcomeFailed) {
				t.Errorf("Success() = %v for outcome %v", result.Success(), result.Outcome)
			}
		})
	}
}

func TestInstallOrchestrator_Install_BuildExitNonZero(t *testing.T) {
	orch := NewInstallOrchestrator(
		&mockVerifier{results: []entities.VerificationResult{notFound("lib/proclist.so")}},
		&mockDownloads{err: errors.New("offline")},
		&mockBuilder{outcome: entities.BuildFailed("exit 2")},
		nil,
	)

	result, err := orch.Install(context.Background(), testPolicy())
	if !errors.Is(err, entities.ErrBuildFailed) {
		t.Errorf("Install() error = %v, want ErrBuildFailed", err)
	}
	if entities.KindOf(err) != entities.BuildFailure {
		t.Errorf("error kind = %v, want BuildFailure", entities.KindOf(err))
	}
	if result.Final() != StateDoneFailure {
		t.Errorf("Final() = %v, want done-failure", result.Final())
	}
}

func TestInstallOrchestrator_Install_InvalidPolicy(t *testing.T) {
	verifier := &mockVerifier{}
	orch := NewInstallOrchestrator(verifier, &mockDownloads{}, &mockBuilder{}, nil)

	policy := testPolicy()
	policy.Artifacts = append(policy.Artifacts, entities.ArtifactDescriptor{
		SourceURL: "https://dist.example/x64/proclist.so", TargetArch: "x64",
	})

	result, err := orch.Install(context.Background(), policy)
	if err == nil {
		t.Fatal("Install() should reject an artifact with arch but no OS")
	}
	if verifier.calls != 0 {
		t.Errorf("verifier called %d times for an invalid policy", verifier.calls)
	}
	if diff := cmp.Diff([]InstallState{StateIdle, StateDoneFailure}, result.States); diff != "" {
		t.Errorf("state trace mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallOrchestrator_ResultsAreIndependent(t *testing.T) {
	verifier := &mockVerifier{results: []entities.VerificationResult{works("lib/proclist.so")}}
	orch := NewInstallOrchestrator(verifier, &mockDownloads{}, &mockBuilder{}, nil)

	first, _ := orch.Install(context.Background(), testPolicy())
	second, _ := orch.Install(context.Background(), testPolicy())

	if len(first.States) != 3 || len(second.States) != 3 {
		t.Errorf("state traces leaked between runs: %v / %v", first.States, second.States)
	}
}

func TestInstallState_String(t *testing.T) {
	want := map[InstallState]string{
		StateIdle:        "idle",
		StateReVerifying: "re-verifying",
		StateDoneFailure: "done-failure",
		InstallState(42): "InstallState(42)",
	}
	for state, name := range want {
		if state.String() != name {
			t.Errorf("%d.String() = %q, want %q", int(state), state.String(), name)
		}
	}
}
