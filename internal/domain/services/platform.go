// Package services implements domain business logic and use cases.
package services

import (
	"runtime"
	"strings"

	"github.com/ochairo/proclist/internal/domain/entities"
)

// Architecture buckets used for artifact matching
const (
	ArchX64 = "x64"
	ArchARM = "arm"
	ArchX86 = "x86"
)

// Host identifies the OS and CPU architecture an install runs on
type Host struct {
	OS   string
	Arch string
}

// CurrentHost returns the running host
func CurrentHost() Host {
	return Host{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// NormalizeArch buckets an architecture name into x64, arm or x86.
// Unknown names fall into x86.
func NormalizeArch(arch string) string {
	a := strings.ToLower(strings.TrimSpace(arch))
	switch {
	case a == "x64" || a == "amd64" || a == "x86_64":
		return ArchX64
	case strings.HasPrefix(a, "arm") || strings.HasPrefix(a, "aarch"):
		return ArchARM
	default:
		return ArchX86
	}
}

// NormalizeOS maps OS aliases onto Go's GOOS vocabulary
func NormalizeOS(os string) string {
	o := strings.ToLower(strings.TrimSpace(os))
	if o == "win32" || o == "win" {
		return "windows"
	}
	return o
}

// Matches decides whether a descriptor applies to the given host
func Matches(d entities.ArtifactDescriptor, hostOS, hostArch string) bool {
	if d.IsUniversal() {
		return true
	}
	if d.TargetOS == "" {
		// Arch without OS is rejected by Validate
		return false
	}
	if NormalizeOS(hostOS) != NormalizeOS(d.TargetOS) {
		return false
	}
	return d.TargetArch == "" || NormalizeArch(hostArch) == NormalizeArch(d.TargetArch)
}

// FilterForHost returns the descriptors applicable to host, preserving order
func FilterForHost(set entities.ArtifactSet, host Host) entities.ArtifactSet {
	filtered := make(entities.ArtifactSet, 0, len(set))
	for _, d := range set {
		if Matches(d, host.OS, host.Arch) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
