package gateways

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
)

// LookPathFunc resolves a binary name on PATH
type LookPathFunc func(file string) (string, error)

// ToolchainBuilder compiles the native module by spawning the build toolchain
type ToolchainBuilder struct {
	toolchain entities.Toolchain
	goos      string
	lookPath  LookPathFunc
	stdout    io.Writer
	stderr    io.Writer
	logger    interfaces.Logger
}

// ToolchainBuilderConfig contains configuration for the source builder
type ToolchainBuilderConfig struct {
	Toolchain entities.Toolchain
	GOOS      string       // Defaults to the running OS
	LookPath  LookPathFunc // Defaults to exec.LookPath
	Stdout    io.Writer    // Defaults to os.Stdout
	Stderr    io.Writer    // Defaults to os.Stderr
	Logger    interfaces.Logger
}

// BuildResult contains the result of one toolchain run
type BuildResult struct {
	Command  []string
	ExitCode int
	Duration time.Duration
}

// NewToolchainBuilder creates a new source builder
func NewToolchainBuilder(config ToolchainBuilderConfig) *ToolchainBuilder {
	b := &ToolchainBuilder{
		toolchain: config.Toolchain,
		goos:      config.GOOS,
		lookPath:  config.LookPath,
		stdout:    config.Stdout,
		stderr:    config.Stderr,
		logger:    config.Logger,
	}
	if b.toolchain.Action == "" {
		b.toolchain.Action = entities.DefaultToolchainAction
	}
	if b.goos == "" {
		b.goos = runtime.GOOS
	}
	if b.lookPath == nil {
		b.lookPath = exec.LookPath
	}
	if b.stdout == nil {
		b.stdout = os.Stdout
	}
	if b.stderr == nil {
		b.stderr = os.Stderr
	}
	if b.logger == nil {
		b.logger = &interfaces.NoOpLogger{}
	}
	return b
}

// Command resolves the toolchain invocation without running it
func (b *ToolchainBuilder) Command() ([]string, error) {
	path, err := b.lookPath(b.toolchain.Binary)
	if err != nil || path == "" {
		cause := fmt.Errorf("%w: couldn't find the `%s` binary. Make sure it's installed and in your $PATH",
			entities.ErrToolchainNotFound, b.toolchain.Binary)
		return nil, entities.NewStageError(entities.ToolchainNotFound, cause)
	}
	return []string{invocationPath(path, b.goos), b.toolchain.Action}, nil
}

// Build runs `<toolchain> <action>` with live output and waits for it to exit
func (b *ToolchainBuilder) Build(ctx context.Context) (entities.BuildOutcome, error) {
	result, err := b.Run(ctx)
	if err != nil {
		return entities.BuildFailed(err.Error()), err
	}
	b.logger.Info("build finished",
		interfaces.F("command", result.Command),
		interfaces.F("duration", result.Duration),
	)
	return entities.BuildSucceeded(), nil
}

// Run spawns the toolchain once. The returned result is nil only when the
// toolchain could not be resolved.
func (b *ToolchainBuilder) Run(ctx context.Context) (*BuildResult, error) {
	argv, err := b.Command()
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	result := &BuildResult{Command: argv}

	//nolint:gosec // G204: Toolchain comes from the provisioning policy
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = b.toolchain.WorkingDir
	cmd.Stdin = nil
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr

	b.logger.Debug("spawning toolchain", interfaces.F("command", argv), interfaces.F("dir", cmd.Dir))

	if err := cmd.Start(); err != nil {
		result.ExitCode = -1
		b.logger.Error("failed to start toolchain", interfaces.F("command", argv[0]), interfaces.Err(err))
		return result, entities.NewStageError(entities.SpawnError, fmt.Errorf("failed to start %s: %w", argv[0], err))
	}

	err = cmd.Wait()
	result.Duration = time.Since(startTime)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		return result, entities.NewStageError(entities.BuildFailure,
			fmt.Errorf("%w (exit %d)", entities.ErrBuildFailed, result.ExitCode))
	}

	return result, nil
}

// invocationPath appends the .cmd wrapper suffix that Windows shims need
func invocationPath(path, goos string) string {
	if goos == "windows" && filepath.Ext(path) == "" {
		return path + ".cmd"
	}
	return path
}
