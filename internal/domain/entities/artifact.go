// Package entities defines core domain models and data structures.
package entities

import (
	"fmt"
	"path"
	"strings"
)

// Compressed transport suffixes that are stripped from the local file name
var compressedSuffixes = []string{".gz", ".zst"}

// ArtifactDescriptor describes one prebuilt native module that can be downloaded
type ArtifactDescriptor struct {
	SourceURL    string
	FileName     string
	TargetOS     string // Optional; empty means any OS
	TargetArch   string // Optional; requires TargetOS
	Digest       string // Optional "sha256:<hex>" or "blake3:<hex>"
	SignatureURL string // Optional detached OpenPGP signature
}

// NewArtifactDescriptor creates a descriptor whose file name is derived from the URL
func NewArtifactDescriptor(sourceURL, targetOS, targetArch string) ArtifactDescriptor {
	return ArtifactDescriptor{
		SourceURL:  sourceURL,
		FileName:   FileNameFromURL(sourceURL),
		TargetOS:   targetOS,
		TargetArch: targetArch,
	}
}

// Validate checks the descriptor invariants
func (d ArtifactDescriptor) Validate() error {
	if d.SourceURL == "" {
		return fmt.Errorf("artifact must have a source URL")
	}
	if d.TargetArch != "" && d.TargetOS == "" {
		return fmt.Errorf("artifact %s: target arch %q requires a target OS", d.SourceURL, d.TargetArch)
	}
	return nil
}

// IsUniversal reports whether the descriptor applies to every host
func (d ArtifactDescriptor) IsUniversal() bool {
	return d.TargetOS == "" && d.TargetArch == ""
}

// Compression returns the compressed transport suffix of the source URL, if any
func (d ArtifactDescriptor) Compression() string {
	base := path.Base(stripQuery(d.SourceURL))
	for _, suffix := range compressedSuffixes {
		if strings.HasSuffix(base, suffix) {
			return suffix
		}
	}
	return ""
}

// FileNameFromURL returns the basename of a URL without query and compression suffix
func FileNameFromURL(sourceURL string) string {
	base := path.Base(stripQuery(sourceURL))
	for _, suffix := range compressedSuffixes {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

// ArtifactSet is an ordered list of descriptors; order is preserved by filtering
type ArtifactSet []ArtifactDescriptor

// Validate validates every descriptor in the set
func (s ArtifactSet) Validate() error {
	for i, d := range s {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("artifact %d: %w", i, err)
		}
	}
	return nil
}
