// Package companion finds files (typically tests) whose content references a given
// source file, by running an external text search tool.
package companion

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// RipgrepToolName is the ripgrep executable.
	RipgrepToolName = "rg"
	// GrepToolName is the grep executable.
	GrepToolName = "grep"

	errorUnsupportedToolFormat = "unsupported search tool %q"
	errorToolNotFoundFormat    = "%w: tried %s"
)

// ErrSearchToolNotFound reports that none of the candidate search tools is installed.
var ErrSearchToolNotFound = errors.New("search tool executable not found at PATH")

// DefaultToolCandidates lists the search tools in order of preference.
var DefaultToolCandidates = []string{RipgrepToolName, GrepToolName}

// files-with-matches mode, extended regular expressions, pattern passed after -e.
var searchToolArguments = map[string][]string{
	RipgrepToolName: {"--files-with-matches", "--no-messages", "--no-ignore", "--hidden", "--regexp"},
	GrepToolName:    {"--recursive", "--files-with-matches", "--extended-regexp", "--regexp"},
}

// SearchTool is a resolved search executable.
type SearchTool struct {
	Name       string
	Executable string
}

// Arguments returns the command line searching root for pattern.
func (tool SearchTool) Arguments(pattern string, root string) []string {
	baseArguments := searchToolArguments[tool.Name]
	arguments := make([]string, 0, len(baseArguments)+2)
	arguments = append(arguments, baseArguments...)
	return append(arguments, pattern, root)
}

// LookPathFunc resolves an executable name, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// DetectSearchTool returns the first candidate available through lookPath.
// A nil lookPath uses exec.LookPath.
func DetectSearchTool(candidates []string, lookPath LookPathFunc) (SearchTool, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if len(candidates) == 0 {
		candidates = DefaultToolCandidates
	}
	for _, candidate := range candidates {
		if _, supported := searchToolArguments[candidate]; !supported {
			return SearchTool{}, fmt.Errorf(errorUnsupportedToolFormat, candidate)
		}
		executablePath, lookError := lookPath(candidate)
		if lookError != nil {
			continue
		}
		return SearchTool{Name: candidate, Executable: executablePath}, nil
	}
	return SearchTool{}, fmt.Errorf(errorToolNotFoundFormat, ErrSearchToolNotFound, strings.Join(candidates, ", "))
}
