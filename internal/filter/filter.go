// Package filter decides which filesystem entries take part in a tree traversal.
package filter

import (
	"strings"

	"github.com/temirov/mdtree/internal/tree"
	"github.com/temirov/mdtree/internal/utils"
)

// DefaultHiddenPrefix marks hidden entries.
const DefaultHiddenPrefix = "."

// Filter is a conjunction of independent exclusion predicates. The zero value includes
// everything.
type Filter struct {
	// HiddenPrefix excludes entries whose name starts with it; empty disables the check.
	HiddenPrefix string
	// ExcludedNames excludes entries whose name is exactly one of the values.
	ExcludedNames []string
	// ExcludedSuffixes excludes entries whose name ends with one of the values.
	ExcludedSuffixes []string
	// ExcludedPatterns excludes entries whose root-relative path matches a pattern.
	ExcludedPatterns []string
	// AllowedDirectories, when not empty, restricts directories to the listed names.
	AllowedDirectories []string
}

var _ tree.Includer = Filter{}

// Default returns the policy that only hides hidden entries.
func Default() Filter {
	return Filter{HiddenPrefix: DefaultHiddenPrefix}
}

// Sane returns the policy of the standalone tree renderer.
func Sane() Filter {
	return Filter{
		HiddenPrefix:     DefaultHiddenPrefix,
		ExcludedNames:    []string{utils.GitDirectoryName, "__pycache__"},
		ExcludedSuffixes: []string{".cache", ".txt"},
	}
}

// Include reports whether entry passes every predicate.
func (filter Filter) Include(entry tree.Entry) bool {
	if IsHidden(entry.Name, filter.HiddenPrefix) {
		return false
	}
	if IsExcludedByName(entry.Name, filter.ExcludedNames) {
		return false
	}
	if IsExcludedBySuffix(entry.Name, filter.ExcludedSuffixes) {
		return false
	}
	if IsExcludedByPattern(entry.RelativePath, filter.ExcludedPatterns) {
		return false
	}
	if entry.IsDirectory && len(filter.AllowedDirectories) > 0 && !containsName(filter.AllowedDirectories, entry.Name) {
		return false
	}
	return true
}

// IsHidden reports whether name starts with prefix. An empty prefix hides nothing.
func IsHidden(name string, prefix string) bool {
	return prefix != "" && strings.HasPrefix(name, prefix)
}

// IsExcludedByName reports whether name is one of names.
func IsExcludedByName(name string, names []string) bool {
	return containsName(names, name)
}

// IsExcludedBySuffix reports whether name ends with one of suffixes.
func IsExcludedBySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// IsExcludedByPattern reports whether relativePath matches one of the ignore patterns.
func IsExcludedByPattern(relativePath string, patterns []string) bool {
	if len(patterns) == 0 || relativePath == "" {
		return false
	}
	return utils.MatchesPathPattern(relativePath, patterns)
}

func containsName(names []string, target string) bool {
	for _, name := range names {
		if name == target {
			return true
		}
	}
	return false
}
