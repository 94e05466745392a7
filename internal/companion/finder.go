package companion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/utils"
)

const (
	// NamePlaceholder is substituted with the quoted file name in a pattern template.
	NamePlaceholder = "{name}"
	// DefaultPatternTemplate finds C and C++ sources including a header.
	DefaultPatternTemplate = "#include .*" + NamePlaceholder

	noMatchExitCode = 1

	errorSearchFormat = "search companions of %s with %s: exit status %d: %s"
	errorRunFormat    = "run %s: %w"
)

// Finder returns the companion files of a source file.
type Finder interface {
	Find(ctx context.Context, sourcePath string) ([]string, error)
}

// CommandRunner executes a command and reports its standard output and exit status.
// A non-nil error means the command could not be run at all.
type CommandRunner interface {
	Run(ctx context.Context, executable string, arguments []string) (RunResult, error)
}

// RunResult is the outcome of one external command.
type RunResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command and waits for it.
func (ExecRunner) Run(ctx context.Context, executable string, arguments []string) (RunResult, error) {
	// #nosec G204
	command := exec.CommandContext(ctx, executable, arguments...)
	var stdoutBuffer, stderrBuffer bytes.Buffer
	command.Stdout = &stdoutBuffer
	command.Stderr = &stderrBuffer

	runError := command.Run()
	result := RunResult{Stdout: stdoutBuffer.Bytes(), Stderr: stderrBuffer.Bytes()}
	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			result.ExitCode = exitError.ExitCode()
			return result, nil
		}
		return result, runError
	}
	return result, nil
}

// ToolFinder searches Root with an external tool for files referencing a source file name.
type ToolFinder struct {
	Tool SearchTool
	// Root is the directory holding companion files.
	Root string
	// PatternTemplate is a regular expression containing NamePlaceholder.
	PatternTemplate string
	// ExcludedPatterns drops matches by their path relative to Root.
	ExcludedPatterns []string
	Runner           CommandRunner
	Logger           *zap.Logger
}

var _ Finder = (*ToolFinder)(nil)

// Pattern returns the search expression for a file name.
func (finder *ToolFinder) Pattern(fileName string) string {
	template := finder.PatternTemplate
	if template == "" {
		template = DefaultPatternTemplate
	}
	return strings.ReplaceAll(template, NamePlaceholder, regexp.QuoteMeta(fileName))
}

// Find returns the slash-separated, sorted, de-duplicated companion paths of sourcePath.
// The source file itself is never reported as its own companion.
func (finder *ToolFinder) Find(ctx context.Context, sourcePath string) ([]string, error) {
	runner := finder.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := utils.LoggerOrNop(finder.Logger)
	fileName := filepath.Base(sourcePath)
	pattern := finder.Pattern(fileName)

	result, runError := runner.Run(ctx, finder.Tool.Executable, finder.Tool.Arguments(pattern, finder.Root))
	if runError != nil {
		return nil, fmt.Errorf(errorRunFormat, finder.Tool.Name, runError)
	}
	switch result.ExitCode {
	case 0:
	case noMatchExitCode:
		logger.Debug("no companions", zap.String("source", sourcePath))
		return nil, nil
	default:
		return nil, fmt.Errorf(errorSearchFormat, sourcePath, finder.Tool.Name, result.ExitCode, strings.TrimSpace(string(result.Stderr)))
	}

	companions := finder.normalizeMatches(sourcePath, strings.Split(string(result.Stdout), "\n"))
	logger.Debug("companions found", zap.String("source", sourcePath), zap.Strings("companions", companions))
	return companions, nil
}

func (finder *ToolFinder) normalizeMatches(sourcePath string, matches []string) []string {
	sourceKey := resolvedPath(sourcePath)
	seenPaths := map[string]struct{}{sourceKey: {}}
	var companions []string
	for _, match := range matches {
		trimmedMatch := strings.TrimSpace(match)
		if trimmedMatch == "" {
			continue
		}
		cleanMatch := filepath.Clean(trimmedMatch)
		if utils.MatchesPathPattern(utils.RelativePathOrSelf(cleanMatch, finder.Root), finder.ExcludedPatterns) {
			continue
		}
		matchKey := resolvedPath(cleanMatch)
		if _, seen := seenPaths[matchKey]; seen {
			continue
		}
		seenPaths[matchKey] = struct{}{}
		companions = append(companions, filepath.ToSlash(cleanMatch))
	}
	sort.Strings(companions)
	return companions
}

func resolvedPath(path string) string {
	absolutePath, absError := filepath.Abs(path)
	if absError != nil {
		return filepath.Clean(path)
	}
	if resolved, linkError := filepath.EvalSymlinks(absolutePath); linkError == nil {
		return resolved
	}
	return absolutePath
}
