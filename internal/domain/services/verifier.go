package services

import (
	"errors"
	"fmt"
	"os"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
	"github.com/ochairo/proclist/internal/domain/interfaces/gateways"
)

// ModuleVerifier checks that a module file exists and loads.
// Loading without error is the whole check; enumeration output is not inspected.
type ModuleVerifier struct {
	loader  gateways.ModuleLoader
	locator gateways.ModuleLocator
	logger  interfaces.Logger
}

// NewModuleVerifier creates a verifier
func NewModuleVerifier(loader gateways.ModuleLoader, locator gateways.ModuleLocator, logger interfaces.Logger) *ModuleVerifier {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ModuleVerifier{
		loader:  loader,
		locator: locator,
		logger:  logger,
	}
}

// ResolveModulePath returns the located module under the target directory,
// falling back to DestinationDir/ModuleFileName
func (v *ModuleVerifier) ResolveModulePath(target entities.InstallTarget, excludePatterns []string) string {
	if v.locator != nil {
		found, err := v.locator.Locate(target.DestinationDir, target.ModuleFileName, excludePatterns)
		if err != nil {
			v.logger.Warn("module search failed", interfaces.F("dir", target.DestinationDir), interfaces.Err(err))
		} else if found != "" {
			return found
		}
	}
	return target.DefaultModulePath()
}

// VerifyTarget resolves the module path for target and verifies it
func (v *ModuleVerifier) VerifyTarget(target entities.InstallTarget, excludePatterns []string) entities.VerificationResult {
	return v.Verify(v.ResolveModulePath(target, excludePatterns))
}

// Verify attempts to load the module at path
func (v *ModuleVerifier) Verify(path string) (result entities.VerificationResult) {
	result.Path = path
	if path == "" {
		result.Status = entities.NotFound
		result.Err = errors.New("no module path")
		return result
	}

	if _, err := os.Stat(path); err != nil {
		result.Status = entities.NotFound
		result.Err = fmt.Errorf("couldn't find module %s: %w", path, err)
		return result
	}

	identifier := entities.ModuleIdentifier(path)

	defer func() {
		if r := recover(); r != nil {
			result.Status = entities.LoadFailed
			result.Err = fmt.Errorf("module %s panicked during load: %v", identifier, r)
			v.logger.Debug("module load panicked", interfaces.F("module", identifier), interfaces.F("panic", r))
		}
	}()

	if _, err := v.loader.Load(identifier); err != nil {
		result.Status = entities.LoadFailed
		result.Err = fmt.Errorf("module %s doesn't seem to work correctly: %w", identifier, err)
		v.logger.Debug("module load failed", interfaces.F("module", identifier), interfaces.Err(err))
		return result
	}

	result.Status = entities.Works
	v.logger.Debug("module loaded", interfaces.F("module", identifier))
	return result
}
