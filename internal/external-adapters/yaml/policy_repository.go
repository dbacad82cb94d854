package yaml

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/proclist/internal/domain/entities"
)

//go:embed default.yml
var defaultPolicy []byte

// PolicyRepository implements repositories.PolicyRepository using YAML files
type PolicyRepository struct {
	parser  *PolicyParser
	workDir string
}

// NewPolicyRepository creates a new YAML-based policy repository.
// The embedded default policy is anchored at workDir (the current directory if empty).
func NewPolicyRepository(workDir string) *PolicyRepository {
	return &PolicyRepository{
		parser:  NewPolicyParser(),
		workDir: workDir,
	}
}

// GetPolicy loads the policy at path, or the embedded default when path is empty.
// Relative destination, key file and working directory are resolved against
// the policy file's directory.
func (r *PolicyRepository) GetPolicy(_ context.Context, path string) (*entities.ProvisioningPolicy, error) {
	if path == "" {
		return r.DefaultPolicy()
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("policy not found: %s", path)
	}

	policy, err := r.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	anchor(policy, filepath.Dir(path))
	return policy, nil
}

// DefaultPolicy returns the embedded default policy
func (r *PolicyRepository) DefaultPolicy() (*entities.ProvisioningPolicy, error) {
	policy, err := r.parser.Parse(defaultPolicy)
	if err != nil {
		return nil, fmt.Errorf("embedded default policy: %w", err)
	}

	dir := r.workDir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	anchor(policy, dir)
	return policy, nil
}

func anchor(policy *entities.ProvisioningPolicy, dir string) {
	policy.Target.DestinationDir = resolve(dir, policy.Target.DestinationDir)
	policy.KeyFile = resolve(dir, policy.KeyFile)
	policy.Toolchain.WorkingDir = resolve(dir, policy.Toolchain.WorkingDir)
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
