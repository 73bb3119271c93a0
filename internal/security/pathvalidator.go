// Package security validates deletion targets. Every path handed to the
// deleter passes through one validator, so the rules live in one place.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathValidator rejects deletion targets that fall outside the scanned
// tree or inside protected system directories. Duplicate candidates only
// ever come from the scan, so anything else reaching the deleter means a
// bug or a tampered path.
type PathValidator struct {
	protectedPaths []string
	scope          string
}

// NewPathValidator creates a PathValidator with default protected paths.
func NewPathValidator() *PathValidator {
	return &PathValidator{
		protectedPaths: []string{
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib64",
			"/proc",
			"/sbin",
			"/sys",
			"/usr",
			"/var",
			"/System",
			"/Applications",
			"/Library/System",
		},
	}
}

// SetScope restricts valid deletion targets to paths under root. An
// empty root removes the restriction.
func (pv *PathValidator) SetScope(root string) {
	if root == "" {
		pv.scope = ""
		return
	}
	pv.scope = filepath.Clean(root)
}

// ValidateForDeletion checks a path before deletion. The path must be
// absolute and already clean, must not name or sit directly inside a
// protected system directory, and must fall under the configured scope.
func (pv *PathValidator) ValidateForDeletion(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("path contains null byte")
	}

	if err := pv.checkProtectedPaths(path); err != nil {
		return err
	}

	if pv.scope != "" {
		rel, err := filepath.Rel(pv.scope, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			return fmt.Errorf("path outside scanned directory: %s", path)
		}
	}

	return nil
}

// checkProtectedPaths rejects protected directories themselves and
// their direct children. Deeper paths such as /var/tmp/scan/dup.txt
// remain deletable.
func (pv *PathValidator) checkProtectedPaths(path string) error {
	for _, protected := range pv.protectedPaths {
		if path == protected {
			return fmt.Errorf("refusing to delete protected path: %s", path)
		}
		if strings.HasPrefix(path, protected+"/") {
			rel, _ := filepath.Rel(protected, path)
			if !strings.Contains(rel, "/") {
				return fmt.Errorf("refusing to delete critical system path: %s", path)
			}
		}
	}
	return nil
}

// IsProtectedPath reports whether the path lies anywhere under a
// protected system directory.
func (pv *PathValidator) IsProtectedPath(path string) bool {
	cleanPath := filepath.Clean(path)
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected || strings.HasPrefix(cleanPath, protected+"/") {
			return true
		}
	}
	return false
}

// AddProtectedPath adds a custom protected path.
func (pv *PathValidator) AddProtectedPath(path string) {
	pv.protectedPaths = append(pv.protectedPaths, filepath.Clean(path))
}
