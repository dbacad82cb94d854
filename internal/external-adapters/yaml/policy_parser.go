// Package yaml provides YAML-based provisioning policy parsing and loading.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/proclist/internal/domain/entities"
)

// yamlPolicy represents the raw YAML structure
type yamlPolicy struct {
	Package         string         `yaml:"package"`
	Module          string         `yaml:"module"`
	BaseURL         string         `yaml:"base_url"`
	Destination     string         `yaml:"destination"`
	ExcludePatterns []string       `yaml:"exclude_patterns"`
	KeyFile         string         `yaml:"key_file"`
	KeysURL         string         `yaml:"keys_url"`
	Artifacts       []yamlArtifact `yaml:"artifacts"`
	Toolchain       yamlToolchain  `yaml:"toolchain"`
}

type yamlArtifact struct {
	URL          string `yaml:"url"`
	Name         string `yaml:"name,omitempty"`
	OS           string `yaml:"os,omitempty"`
	Arch         string `yaml:"arch,omitempty"`
	Digest       string `yaml:"digest,omitempty"`
	SignatureURL string `yaml:"signature_url,omitempty"`
}

type yamlToolchain struct {
	Binary     string `yaml:"binary"`
	Action     string `yaml:"action"`
	WorkingDir string `yaml:"working_dir"`
}

// PolicyParser parses YAML provisioning policy files
type PolicyParser struct{}

// NewPolicyParser creates a new YAML parser
func NewPolicyParser() *PolicyParser {
	return &PolicyParser{}
}

// ParseFile parses a YAML policy file into a ProvisioningPolicy entity
func (p *PolicyParser) ParseFile(filePath string) (*entities.ProvisioningPolicy, error) {
	//nolint:gosec // G304: filePath is the policy path chosen by the user
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a ProvisioningPolicy entity.
// Relative paths are left as written; the repository anchors them.
func (p *PolicyParser) Parse(data []byte) (*entities.ProvisioningPolicy, error) {
	var raw yamlPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if raw.Package == "" {
		return nil, fmt.Errorf("policy must have a package name")
	}

	module := raw.Module
	if module == "" {
		module = raw.Package
	}
	destination := raw.Destination
	if destination == "" {
		destination = "lib"
	}
	excludes := raw.ExcludePatterns
	if excludes == nil {
		excludes = append([]string(nil), entities.DefaultExcludePatterns...)
	}

	artifacts, err := convertArtifacts(raw.BaseURL, raw.Artifacts)
	if err != nil {
		return nil, err
	}

	keysURL := raw.KeysURL
	if keysURL != "" {
		if keysURL, err = entities.ResolveArtifactURL(raw.BaseURL, keysURL); err != nil {
			return nil, fmt.Errorf("keys_url: %w", err)
		}
	}

	policy := &entities.ProvisioningPolicy{
		PackageName:     raw.Package,
		BaseURL:         raw.BaseURL,
		Artifacts:       artifacts,
		Target:          entities.NewInstallTarget(destination, module),
		ExcludePatterns: excludes,
		Toolchain:       convertToolchain(raw.Toolchain),
		KeyFile:         raw.KeyFile,
		KeysURL:         keysURL,
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func convertArtifacts(baseURL string, raw []yamlArtifact) (entities.ArtifactSet, error) {
	set := make(entities.ArtifactSet, 0, len(raw))
	for i, ya := range raw {
		if ya.URL == "" {
			return nil, fmt.Errorf("artifact %d must have a url", i)
		}
		resolved, err := entities.ResolveArtifactURL(baseURL, ya.URL)
		if err != nil {
			return nil, fmt.Errorf("artifact %d: %w", i, err)
		}

		d := entities.NewArtifactDescriptor(resolved, ya.OS, ya.Arch)
		if ya.Name != "" {
			d.FileName = ya.Name
		}
		d.Digest = ya.Digest
		if ya.SignatureURL != "" {
			sig, err := entities.ResolveArtifactURL(baseURL, ya.SignatureURL)
			if err != nil {
				return nil, fmt.Errorf("artifact %d signature: %w", i, err)
			}
			d.SignatureURL = sig
		}
		set = append(set, d)
	}
	return set, nil
}

func convertToolchain(yt yamlToolchain) entities.Toolchain {
	action := yt.Action
	if action == "" {
		action = entities.DefaultToolchainAction
	}
	return entities.Toolchain{
		Binary:     yt.Binary,
		Action:     action,
		WorkingDir: yt.WorkingDir,
	}
}
