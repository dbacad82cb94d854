package entities

import (
	"fmt"
	"net/url"
)

// DefaultToolchainAction is the argument passed to the build tool
const DefaultToolchainAction = "rebuild"

// DefaultExcludePatterns skip package-manager shim directories that can hold
// same-named files which are not the module itself
var DefaultExcludePatterns = []string{
	"node_modules/.bin",
	"**/.bin",
}

// Toolchain describes the build tool used for the from-source fallback
type Toolchain struct {
	Binary     string // Looked up on PATH
	Action     string // e.g. "rebuild"
	WorkingDir string // Empty means the current directory
}

// ProvisioningPolicy is the immutable configuration of one install run
type ProvisioningPolicy struct {
	PackageName     string
	BaseURL         string
	Artifacts       ArtifactSet
	Target          InstallTarget
	ExcludePatterns []string
	Toolchain       Toolchain
	KeyFile         string // Optional armored OpenPGP public key for artifact signatures
	KeysURL         string // Optional KEYS file with further trusted public keys
}

// VerifiesSignatures reports whether the policy configures any signing key
func (p *ProvisioningPolicy) VerifiesSignatures() bool {
	return p.KeyFile != "" || p.KeysURL != ""
}

// Validate checks the policy before an install run starts
func (p *ProvisioningPolicy) Validate() error {
	if p.PackageName == "" {
		return fmt.Errorf("policy must have a package name")
	}
	if p.Target.DestinationDir == "" {
		return fmt.Errorf("policy must have a destination directory")
	}
	if p.Target.ModuleFileName == "" {
		return fmt.Errorf("policy must have a module file name")
	}
	if p.Toolchain.Binary == "" {
		return fmt.Errorf("policy must name a build toolchain binary")
	}
	return p.Artifacts.Validate()
}

// ResolveArtifactURL resolves ref against baseURL; absolute refs are returned unchanged
func ResolveArtifactURL(baseURL, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid artifact URL %q: %w", ref, err)
	}
	if r.IsAbs() || baseURL == "" {
		return r.String(), nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return base.ResolveReference(r).String(), nil
}
