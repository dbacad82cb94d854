// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
	"github.com/ochairo/proclist/internal/domain/interfaces/gateways"
	"github.com/ochairo/proclist/internal/domain/services"
)

// TargetVerifier re-checks the install target after artifacts land
type TargetVerifier interface {
	VerifyTarget(target entities.InstallTarget, excludePatterns []string) entities.VerificationResult
}

// DownloadOrchestrator fetches the host-matching artifacts and re-verifies the module
type DownloadOrchestrator struct {
	fetcher  gateways.ArtifactFetcher
	verifier TargetVerifier
	host     services.Host
	logger   interfaces.Logger
}

// DownloadOrchestratorConfig holds configuration for the orchestrator
type DownloadOrchestratorConfig struct {
	Host   services.Host // Defaults to the running host
	Logger interfaces.Logger
}

// NewDownloadOrchestrator creates a new download orchestrator
func NewDownloadOrchestrator(
	fetcher gateways.ArtifactFetcher,
	verifier TargetVerifier,
	config DownloadOrchestratorConfig,
) *DownloadOrchestrator {
	host := config.Host
	if host.OS == "" && host.Arch == "" {
		host = services.CurrentHost()
	}
	logger := config.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &DownloadOrchestrator{
		fetcher:  fetcher,
		verifier: verifier,
		host:     host,
		logger:   logger,
	}
}

// DownloadResult contains the outcome of one download round
type DownloadResult struct {
	Fetched      []string // Written paths, in descriptor order
	Verification entities.VerificationResult
	Duration     time.Duration
}

// Fetch downloads every descriptor applicable to the host into the target
// directory, waits for all of them, then verifies the target.
// A fetch failure is returned as a DownloadFailure and skips verification.
func (o *DownloadOrchestrator) Fetch(
	ctx context.Context,
	descriptors entities.ArtifactSet,
	target entities.InstallTarget,
	excludePatterns []string,
) (*DownloadResult, error) {
	startTime := time.Now()
	result := &DownloadResult{}

	selected := services.FilterForHost(descriptors, o.host)
	o.logger.Debug("artifacts selected",
		interfaces.F("host_os", o.host.OS),
		interfaces.F("host_arch", services.NormalizeArch(o.host.Arch)),
		interfaces.F("selected", len(selected)),
		interfaces.F("declared", len(descriptors)),
	)

	paths := make([]string, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, artifact := range selected {
		g.Go(func() error {
			path, err := o.fetcher.Fetch(gctx, artifact, target.DestinationDir)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", artifact.SourceURL, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		result.Duration = time.Since(startTime)
		return result, entities.NewStageError(entities.DownloadFailure, err)
	}
	result.Fetched = paths

	result.Verification = o.verifier.VerifyTarget(target, excludePatterns)
	result.Duration = time.Since(startTime)
	return result, nil
}
