// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/proclist/internal/domain/entities"
)

// PolicyRepository defines the interface for accessing provisioning policies
type PolicyRepository interface {
	// GetPolicy loads the policy at path; an empty path selects the built-in default
	GetPolicy(ctx context.Context, path string) (*entities.ProvisioningPolicy, error)

	// DefaultPolicy returns the built-in default policy
	DefaultPolicy() (*entities.ProvisioningPolicy, error)
}
