// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/proclist/internal/domain/entities"
)

// NativeModule is a loaded process enumeration module
type NativeModule interface {
	// Snapshot returns one record per running process with every field the module knows
	Snapshot() ([]entities.ProcessRecord, error)
}

// ModuleLoader loads a native module by its identifier (path without module suffix)
type ModuleLoader interface {
	Load(identifier string) (NativeModule, error)
}

// ModuleLocator searches the filesystem for an installed module
type ModuleLocator interface {
	// Locate returns the first matching path, or "" when nothing matches
	Locate(searchRoot, moduleFileName string, excludePatterns []string) (string, error)
}

// ArtifactFetcher downloads one artifact into a directory
type ArtifactFetcher interface {
	// Fetch writes the artifact to destinationDir and returns the written path
	Fetch(ctx context.Context, artifact entities.ArtifactDescriptor, destinationDir string) (string, error)
}

// SourceBuilder compiles the native module from source
type SourceBuilder interface {
	Build(ctx context.Context) (entities.BuildOutcome, error)
}
