// Package gateways provides adapter implementations for external services and tools.
package gateways

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/patternmatcher"
)

// errFound stops the directory walk once a match is found
var errFound = errors.New("found")

// ArtifactFinder provides utilities for locating installed modules
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// Locate searches searchRoot recursively for a file named moduleFileName.
// Paths matched by excludePatterns (relative to searchRoot) are skipped.
// A missing root is not an error; it yields "".
func (f *ArtifactFinder) Locate(searchRoot, moduleFileName string, excludePatterns []string) (string, error) {
	if searchRoot == "" || moduleFileName == "" {
		return "", nil
	}

	info, err := os.Stat(searchRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat search root: %w", err)
	}
	if !info.IsDir() {
		if filepath.Base(searchRoot) == moduleFileName {
			return searchRoot, nil
		}
		return "", nil
	}

	var matcher *patternmatcher.PatternMatcher
	if len(excludePatterns) > 0 {
		matcher, err = patternmatcher.New(excludePatterns)
		if err != nil {
			return "", fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}

	var found string
	err = filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtrees are skipped, the root was checked above
			if d != nil && d.IsDir() && path != searchRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if path == searchRoot {
			return nil
		}

		if matcher != nil {
			rel, relErr := filepath.Rel(searchRoot, path)
			if relErr != nil {
				return relErr
			}
			excluded, matchErr := matcher.MatchesOrParentMatches(rel)
			if matchErr != nil {
				return fmt.Errorf("failed to match %s: %w", rel, matchErr)
			}
			if excluded {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.Type().IsRegular() && d.Name() == moduleFileName {
			found = path
			return errFound
		}
		return nil
	})

	if err != nil && !errors.Is(err, errFound) {
		return "", err
	}
	return found, nil
}
