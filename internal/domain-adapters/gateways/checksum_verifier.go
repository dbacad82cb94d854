package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// Supported digest algorithms
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmBLAKE3 = "blake3"
)

// checksumVerifier implements digest verification using pure Go
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// ParseDigest splits "algo:hex" into its parts. A bare hex string is sha256.
func ParseDigest(digest string) (algorithm, value string, err error) {
	algorithm, value, found := strings.Cut(strings.TrimSpace(digest), ":")
	if !found {
		algorithm, value = AlgorithmSHA256, algorithm
	}
	algorithm = strings.ToLower(algorithm)
	value = strings.ToLower(value)

	if _, err := newHasher(algorithm); err != nil {
		return "", "", err
	}
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return "", "", fmt.Errorf("invalid %s digest: %w", algorithm, err)
	}
	if len(decoded) != 32 {
		return "", "", fmt.Errorf("%s digest is %d bytes, want 32", algorithm, len(decoded))
	}
	return algorithm, value, nil
}

// VerifyChecksum verifies a file against an "algo:hex" digest
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, expected string) error {
	algorithm, want, err := ParseDigest(expected)
	if err != nil {
		return err
	}

	got, err := v.CalculateChecksum(filePath, algorithm)
	if err != nil {
		return err
	}

	if got != want {
		return fmt.Errorf("checksum mismatch: expected %s:%s, got %s:%s", algorithm, want, algorithm, got)
	}

	return nil
}

// VerifyData verifies in-memory content against an "algo:hex" digest
func (v *checksumVerifier) VerifyData(data []byte, expected string) error {
	algorithm, want, err := ParseDigest(expected)
	if err != nil {
		return err
	}

	h, err := newHasher(algorithm)
	if err != nil {
		return err
	}
	_, _ = h.Write(data)

	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return fmt.Errorf("checksum mismatch: expected %s:%s, got %s:%s", algorithm, want, algorithm, got)
	}
	return nil
}

// CalculateChecksum calculates the hex digest of a file
func (v *checksumVerifier) CalculateChecksum(filePath, algorithm string) (string, error) {
	h, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}

	//nolint:gosec // G304: File path is the artifact just written by the downloader
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func newHasher(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmBLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}
