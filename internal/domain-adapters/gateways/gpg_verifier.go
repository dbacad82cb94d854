package gateways

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/ochairo/proclist/internal/external-adapters/gpg"
)

// gpgVerifier wraps the external GPG adapter for artifact signature checks
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a signature verifier trusting the armored key in keyPath
// and every key published at keysURL. Either may be empty, not both.
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier(ctx context.Context, keyPath, keysURL string, httpClient *http.Client) (*gpgVerifier, error) {
	v := gpg.NewVerifier(httpClient)
	if keyPath != "" {
		if err := v.ImportKeyFromFile(keyPath); err != nil {
			return nil, fmt.Errorf("failed to import GPG key: %w", err)
		}
	}
	if keysURL != "" {
		if err := v.ImportKeysFromURL(ctx, keysURL); err != nil {
			return nil, fmt.Errorf("failed to import GPG keys: %w", err)
		}
	}
	if v.KeyringSize() == 0 {
		return nil, fmt.Errorf("no GPG key file or keys URL configured")
	}
	return &gpgVerifier{verifier: v}, nil
}

// VerifyGPGSignature verifies data against a detached signature downloaded from sigURL
func (g *gpgVerifier) VerifyGPGSignature(ctx context.Context, data []byte, sigURL string) error {
	if err := g.verifier.VerifySignature(ctx, bytes.NewReader(data), sigURL); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}

// VerifyFile verifies an installed module against a local detached signature
func (g *gpgVerifier) VerifyFile(filePath, sigPath string) error {
	if err := g.verifier.VerifySignatureFromFile(filePath, sigPath); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}
