// Package sandbox resolves paths and tests them against allow/block prefix
// sets. Symlinks are followed to their real target before checking, so a
// link inside the workspace cannot smuggle access to a blocked location.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bashbros/bashbros/internal/model"
)

// Sandbox holds the allow/block prefix sets.
type Sandbox struct {
	allow    []string
	block    []string
	allowAll bool
}

// New creates a sandbox from config prefix lists. An allow list containing
// "*" disables the allow check.
func New(allow, block []string) *Sandbox {
	allowAll := len(allow) == 0
	cleaned := make([]string, 0, len(allow))
	for _, a := range allow {
		if a == "*" {
			allowAll = true
			continue
		}
		cleaned = append(cleaned, expandHome(a))
	}
	blocked := make([]string, 0, len(block))
	for _, b := range block {
		blocked = append(blocked, expandHome(b))
	}
	return &Sandbox{allow: cleaned, block: blocked, allowAll: allowAll}
}

// Resolved is the outcome of path resolution.
type Resolved struct {
	Input      string
	Real       string
	WasSymlink bool
}

// Resolve expands ~, makes the path absolute against cwd, and follows
// symlinks when the path exists. A path that does not exist resolves to its
// cleaned absolute form.
func Resolve(path string) Resolved {
	expanded := expandHome(path)

	abs, err := filepath.Abs(expanded)
	if err != nil {
		abs = filepath.Clean(expanded)
	}

	r := Resolved{Input: path, Real: abs}

	if info, err := os.Lstat(abs); err == nil {
		r.WasSymlink = info.Mode()&os.ModeSymlink != 0
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			r.Real = real
		}
	}

	return r
}

// Check resolves the path and tests it against the block set, then the allow
// set. Nil means pass.
func (s *Sandbox) Check(path string) *model.Violation {
	r := Resolve(path)

	// A symlink whose target leaves the input's top-level segment is an
	// escape regardless of the prefix sets.
	if r.WasSymlink && firstSegment(absInput(r.Input)) != firstSegment(r.Real) {
		return &model.Violation{
			Type:     model.ViolationPath,
			Rule:     "symlink_escape",
			Message:  "symlink escapes its directory: " + path + " -> " + r.Real,
			Severity: model.SeverityHigh,
		}
	}

	for _, b := range s.block {
		if isPrefixChild(r.Real, b) {
			return &model.Violation{
				Type:     model.ViolationPath,
				Rule:     "block:" + b,
				Message:  "path is blocked: " + r.Real,
				Severity: model.SeverityHigh,
			}
		}
	}

	if s.allowAll {
		return nil
	}

	for _, a := range s.allow {
		if isPrefixChild(r.Real, a) {
			return nil
		}
	}

	return &model.Violation{
		Type:     model.ViolationPath,
		Rule:     "not-allowed",
		Message:  "path outside allowed prefixes: " + r.Real,
		Severity: model.SeverityMedium,
	}
}

// isPrefixChild reports whether path equals prefix or lives under it.
func isPrefixChild(path, prefix string) bool {
	prefix = filepath.Clean(prefix)
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}

// firstSegment returns the first path component of an absolute path.
func firstSegment(path string) string {
	path = filepath.Clean(path)
	parts := strings.Split(strings.TrimPrefix(path, string(filepath.Separator)), string(filepath.Separator))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func absInput(path string) string {
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
