package services

import (
	"os"
	"path/filepath"
	"strings"

	"ytgrab/internal/core/domain"
	"ytgrab/internal/core/ports"
)

type pathResolver struct {
	root    string // canonical download root
	rawRoot string // root as configured, before symlink resolution
}

// NewPathResolver builds the resolver around the download root. The
// root is canonicalized once so later containment checks compare
// symlink-free paths; the pre-canonical spelling is kept so fragments
// written through a symlinked root still pass the lexical check.
func NewPathResolver(downloadDir string) ports.PathResolver {
	raw, err := filepath.Abs(downloadDir)
	if err != nil {
		raw = downloadDir
	}
	root := raw
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &pathResolver{root: root, rawRoot: raw}
}

// Resolve validates a caller-supplied fragment and returns the absolute
// path it names, or ErrEmptyPath / ErrForbiddenPath / ErrFileNotFound.
// Containment is checked lexically on the cleaned path first (so
// traversal attempts are rejected even for files that don't exist) and
// again on the symlink-resolved path.
func (r *pathResolver) Resolve(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", domain.ErrEmptyPath
	}
	if !strings.HasPrefix(fragment, "/") {
		fragment = "/" + fragment
	}

	abs, err := filepath.Abs(fragment)
	if err != nil {
		return "", domain.ErrForbiddenPath
	}
	if !contains(r.root, abs) && !contains(r.rawRoot, abs) {
		return "", domain.ErrForbiddenPath
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrFileNotFound
		}
		return "", domain.ErrForbiddenPath
	}
	if !contains(r.root, resolved) {
		return "", domain.ErrForbiddenPath
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", domain.ErrFileNotFound
	}
	if info.IsDir() {
		return "", domain.ErrFileNotFound
	}
	return resolved, nil
}

func contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
