package gateways

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/moby/sys/atomicwriter"

	"github.com/ochairo/proclist/internal/domain/entities"
)

// Packager lays out prebuilt modules the way the downloader fetches them:
// <outputDir>/<osDir>/<archDir>/<module>[.gz|.zst]
type Packager struct {
	checksums *checksumVerifier
}

// NewPackager creates a new packager
func NewPackager() *Packager {
	return &Packager{checksums: NewChecksumVerifier()}
}

// PackageRequest describes one module to publish
type PackageRequest struct {
	ModulePath  string
	OutputDir   string
	OSDir       string // e.g. "linux", "win"
	ArchDir     string // e.g. "x86"
	Compression string // "", ".gz" or ".zst"
	Algorithm   string // Digest algorithm, defaults to sha256
}

// PackagedModule is the published file plus the descriptor fields a policy needs
type PackagedModule struct {
	Path        string // Written file
	RelativeURL string // Relative to the dist root; usable as a policy url
	Digest      string // "algo:hex" of the uncompressed module
	Size        int64
}

// PackageModule compresses (optionally) and writes a module into the dist layout
func (p *Packager) PackageModule(_ context.Context, req PackageRequest) (*PackagedModule, error) {
	if req.OSDir == "" {
		return nil, fmt.Errorf("an OS directory is required")
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmSHA256
	}

	sum, err := p.checksums.CalculateChecksum(req.ModulePath, algorithm)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G304: ModulePath is the module being published
	data, err := os.ReadFile(req.ModulePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}

	payload, err := compress(data, req.Compression)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(req.ModulePath) + req.Compression
	rel := path.Join(req.OSDir, req.ArchDir, name)
	outPath := filepath.Join(req.OutputDir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := atomicwriter.WriteFile(outPath, payload, ArtifactMode); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	return &PackagedModule{
		Path:        outPath,
		RelativeURL: rel,
		Digest:      algorithm + ":" + sum,
		Size:        int64(len(payload)),
	}, nil
}

// Descriptor returns the artifact descriptor for the packaged module served under baseURL
func (m *PackagedModule) Descriptor(baseURL, targetOS, targetArch string) (entities.ArtifactDescriptor, error) {
	u, err := entities.ResolveArtifactURL(baseURL, m.RelativeURL)
	if err != nil {
		return entities.ArtifactDescriptor{}, err
	}
	d := entities.NewArtifactDescriptor(u, targetOS, targetArch)
	d.Digest = m.Digest
	return d, d.Validate()
}

func compress(data []byte, compression string) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser

	switch compression {
	case "":
		return data, nil
	case ".gz":
		w = gzip.NewWriter(&buf)
	case ".zst":
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w = enc
	default:
		return nil, fmt.Errorf("unsupported compression %q (want .gz or .zst)", compression)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress module: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress module: %w", err)
	}
	return buf.Bytes(), nil
}
