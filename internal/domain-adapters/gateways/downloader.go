package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/moby/sys/atomicwriter"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
)

// ArtifactMode is the permission of written artifacts; modules may be executables
const ArtifactMode os.FileMode = 0o755

// maxArtifactSize bounds a single artifact (after decompression)
const maxArtifactSize = 512 << 20

// SignatureVerifier checks content against a detached signature at sigURL
type SignatureVerifier interface {
	VerifyGPGSignature(ctx context.Context, data []byte, sigURL string) error
}

// DigestVerifier checks content against an "algo:hex" digest
type DigestVerifier interface {
	VerifyData(data []byte, expected string) error
}

// Downloader fetches prebuilt artifacts over HTTP
type Downloader struct {
	httpClient *http.Client
	digests    DigestVerifier
	signatures SignatureVerifier
	logger     interfaces.Logger
	userAgent  string
}

// DownloaderOption configures a Downloader
type DownloaderOption func(*Downloader)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.httpClient = c }
}

// WithSignatureVerifier enables detached signature checks for artifacts that carry a SignatureURL
func WithSignatureVerifier(v SignatureVerifier) DownloaderOption {
	return func(d *Downloader) { d.signatures = v }
}

// WithLogger sets the logger
func WithLogger(l interfaces.Logger) DownloaderOption {
	return func(d *Downloader) { d.logger = l }
}

// NewDownloader creates a new downloader. The HTTP client has no overall
// timeout; callers bound a fetch through its context.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{},
		digests:    NewChecksumVerifier(),
		logger:     &interfaces.NoOpLogger{},
		userAgent:  "proclist/1.0",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads one artifact into destinationDir and returns the written path.
// Digest and signature are checked on the received bytes; the file is only
// written, atomically, once both pass.
func (d *Downloader) Fetch(ctx context.Context, artifact entities.ArtifactDescriptor, destinationDir string) (string, error) {
	if err := os.MkdirAll(destinationDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	fileName := artifact.FileName
	if fileName == "" {
		fileName = entities.FileNameFromURL(artifact.SourceURL)
	}
	outputPath := filepath.Join(destinationDir, fileName)

	data, err := d.download(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("download %s failed: %w", artifact.SourceURL, err)
	}

	if err := d.checkIntegrity(ctx, artifact, data); err != nil {
		return "", err
	}

	if err := atomicwriter.WriteFile(outputPath, data, ArtifactMode); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	d.logger.Info("artifact downloaded",
		interfaces.F("file", fileName),
		interfaces.F("bytes", len(data)),
	)
	return outputPath, nil
}

func (d *Downloader) download(ctx context.Context, artifact entities.ArtifactDescriptor) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifact.SourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := decompress(resp.Body, artifact.Compression())
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on decompressor
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxArtifactSize {
		return nil, fmt.Errorf("artifact exceeds %d bytes", maxArtifactSize)
	}
	return data, nil
}

func decompress(r io.Reader, compression string) (io.ReadCloser, error) {
	switch compression {
	case ".gz":
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, nil
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

func (d *Downloader) checkIntegrity(ctx context.Context, artifact entities.ArtifactDescriptor, data []byte) error {
	if artifact.Digest != "" {
		if err := d.digests.VerifyData(data, artifact.Digest); err != nil {
			return fmt.Errorf("artifact %s: %w", artifact.FileName, err)
		}
	}

	if artifact.SignatureURL != "" {
		if d.signatures == nil {
			return fmt.Errorf("artifact %s is signed but no signing key is configured", artifact.FileName)
		}
		if err := d.signatures.VerifyGPGSignature(ctx, data, artifact.SignatureURL); err != nil {
			return fmt.Errorf("artifact %s: %w", artifact.FileName, err)
		}
	}
	return nil
}
