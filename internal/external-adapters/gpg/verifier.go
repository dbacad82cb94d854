// Package gpg provides OpenPGP signature verification for downloaded artifacts.
package gpg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Size limits for remote key and signature material
const (
	maxKeysSize      = 10 * 1024 * 1024
	maxSignatureSize = 10 * 1024
)

const armoredSignaturePrefix = "-----BEGIN PGP SIGNATURE---"

// Verifier checks detached signatures against an in-memory keyring.
// Keys are imported before an install run starts and not modified afterwards.
type Verifier struct {
	keyring    openpgp.EntityList
	httpClient *http.Client
}

// NewVerifier creates a verifier with an empty keyring
func NewVerifier(httpClient *http.Client) *Verifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Verifier{
		keyring:    make(openpgp.EntityList, 0),
		httpClient: httpClient,
	}
}

// ImportKeyFromFile imports an armored or binary public key file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath comes from the provisioning policy
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}
	return v.importKeys(data)
}

// ImportKeysFromURL imports every key in a remote KEYS file
func (v *Verifier) ImportKeysFromURL(ctx context.Context, keysURL string) error {
	data, err := v.get(ctx, keysURL, maxKeysSize)
	if err != nil {
		return fmt.Errorf("failed to download KEYS file: %w", err)
	}
	return v.importKeys(data)
}

func (v *Verifier) importKeys(data []byte) error {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
	}
	if len(entities) == 0 {
		return fmt.Errorf("no keys found")
	}
	v.keyring = append(v.keyring, entities...)
	return nil
}

// VerifySignature downloads a detached signature from sigURL and checks content against it
func (v *Verifier) VerifySignature(ctx context.Context, content io.Reader, sigURL string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no GPG keys imported")
	}

	sig, err := v.get(ctx, sigURL, maxSignatureSize)
	if err != nil {
		return fmt.Errorf("failed to download signature: %w", err)
	}
	return v.verify(content, sig)
}

// VerifySignatureFromFile checks filePath against a local detached signature
func (v *Verifier) VerifySignatureFromFile(filePath, sigPath string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no GPG keys imported")
	}

	//nolint:gosec // G304: sigPath is user-provided for GPG verification
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("failed to open signature file: %w", err)
	}

	//nolint:gosec // G304: filePath is the module being verified
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return v.verify(f, sig)
}

func (v *Verifier) verify(content io.Reader, sig []byte) error {
	if len(sig) < 10 {
		return fmt.Errorf("signature too small to be valid")
	}

	var err error
	if bytes.HasPrefix(sig, []byte(armoredSignaturePrefix)) {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, content, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, content, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

func (v *Verifier) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// KeyringSize returns the number of imported keys
func (v *Verifier) KeyringSize() int {
	return len(v.keyring)
}
