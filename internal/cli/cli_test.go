package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/document"
	"github.com/temirov/mdtree/internal/utils"
)

const (
	asciiConfiguration = "companions:\n  enabled: false\nlinks:\n  space_replacement: \" \"\n"
	readmeWithAnchors  = "# Algorithms\n\n## Tree of Implemented DSA\nstale\n## Hall of Fame\nthanks\n"

	expectedReadme = "# Algorithms\n\n## Tree of Implemented DSA\n" +
		"include/\\\n" +
		"└── [foo.h]\n" +
		"\n" +
		"[foo.h                       ]: ./include/foo.h\n" +
		"## Hall of Fame\nthanks\n"
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return copier.err
}

func writeProjectFiles(testingHandle *testing.T, root string, files map[string]string) {
	testingHandle.Helper()
	for relativePath, content := range files {
		fullPath := filepath.Join(root, relativePath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			testingHandle.Fatalf("mkdir %s: %v", relativePath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			testingHandle.Fatalf("write %s: %v", relativePath, err)
		}
	}
}

func newTestEnvironment(testingHandle *testing.T, workingDirectory string) (environment, *bytes.Buffer, *recordingCopier) {
	testingHandle.Helper()
	testingHandle.Setenv("HOME", testingHandle.TempDir())
	stdout := &bytes.Buffer{}
	copier := &recordingCopier{}
	return environment{
		stdout:     stdout,
		stderr:     &bytes.Buffer{},
		fileSystem: afero.NewOsFs(),
		copier:     copier,
		lookPath: func(name string) (string, error) {
			return "", fmt.Errorf("%s not installed", name)
		},
		workingDirectory: func() (string, error) { return workingDirectory, nil },
		newLogger:        func(bool) (*zap.Logger, error) { return zap.NewNop(), nil },
	}, stdout, copier
}

func TestTreeCommandPrintsTree(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeProjectFiles(testingHandle, projectRoot, map[string]string{
		"include/foo.h":       "",
		"include/bar/baz.hpp": "",
		"include/.hidden":     "",
	})
	runtimeEnvironment, stdout, copier := newTestEnvironment(testingHandle, projectRoot)

	err := execute(context.Background(), runtimeEnvironment, []string{"tree", filepath.Join(projectRoot, "include")})
	if err != nil {
		testingHandle.Fatalf("tree error: %v", err)
	}
	expected := "include/\n├── bar/\n│   └── baz.hpp\n└── foo.h\n"
	if stdout.String() != expected {
		testingHandle.Fatalf("unexpected tree:\n%s\nwant:\n%s", stdout.String(), expected)
	}
	if len(copier.copied) != 0 {
		testingHandle.Fatalf("expected no clipboard use, got %v", copier.copied)
	}
}

func TestTreeCommandCopiesToClipboard(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeProjectFiles(testingHandle, projectRoot, map[string]string{"include/foo.h": ""})
	runtimeEnvironment, stdout, copier := newTestEnvironment(testingHandle, projectRoot)

	err := execute(context.Background(), runtimeEnvironment, []string{"tree", "--copy", "yes", filepath.Join(projectRoot, "include")})
	if err != nil {
		testingHandle.Fatalf("tree error: %v", err)
	}
	if len(copier.copied) != 1 || copier.copied[0] != "include/\n└── foo.h\n" {
		testingHandle.Fatalf("unexpected clipboard content %q", copier.copied)
	}
	if stdout.String() != "include/\n└── foo.h\n" {
		testingHandle.Fatalf("unexpected stdout %q", stdout.String())
	}
}

func TestTreeCommandReportsClipboardFailure(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeProjectFiles(testingHandle, projectRoot, map[string]string{"include/foo.h": ""})
	runtimeEnvironment, _, copier := newTestEnvironment(testingHandle, projectRoot)
	clipboardError := errors.New("no display")
	copier.err = clipboardError

	err := execute(context.Background(), runtimeEnvironment, []string{"tree", "--copy", filepath.Join(projectRoot, "include")})
	if !errors.Is(err, clipboardError) {
		testingHandle.Fatalf("expected clipboard error, got %v", err)
	}
}

func TestSyncCommandUpdatesDocument(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeProjectFiles(testingHandle, projectRoot, map[string]string{
		"include/foo.h":      "",
		"README.md":          readmeWithAnchors,
		utils.ConfigFileName: asciiConfiguration,
	})
	runtimeEnvironment, stdout, _ := newTestEnvironment(testingHandle, projectRoot)

	if err := execute(context.Background(), runtimeEnvironment, []string{"sync"}); err != nil {
		testingHandle.Fatalf("sync error: %v", err)
	}
	content, readError := os.ReadFile(filepath.Join(projectRoot, "README.md"))
	if readError != nil {
		testingHandle.Fatalf("read README: %v", readError)
	}
	if string(content) != expectedReadme {
		testingHandle.Fatalf("unexpected README:\n%s\nwant:\n%s", content, expectedReadme)
	}
	if !strings.Contains(stdout.String(), "Updated tree was embedded into README.md.") {
		testingHandle.Fatalf("unexpected status %q", stdout.String())
	}

	stdout.Reset()
	if err := execute(context.Background(), runtimeEnvironment, []string{"sync", "-p"}); err != nil {
		testingHandle.Fatalf("second sync error: %v", err)
	}
	output := stdout.String()
	if !strings.Contains(output, "Generated region:\ninclude/\\\n") {
		testingHandle.Fatalf("expected printed region, got %q", output)
	}
	if !strings.HasSuffix(output, "Tree in README.md is up to date, nothing to update.\n") {
		testingHandle.Fatalf("expected unchanged status, got %q", output)
	}
}

func TestSyncCommandFailsWithoutAnchors(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeProjectFiles(testingHandle, projectRoot, map[string]string{
		"include/foo.h":      "",
		"README.md":          "# No anchors\n",
		utils.ConfigFileName: asciiConfiguration,
	})
	runtimeEnvironment, _, _ := newTestEnvironment(testingHandle, projectRoot)

	err := execute(context.Background(), runtimeEnvironment, []string{"sync"})
	if err == nil {
		testingHandle.Fatalf("expected anchor error")
	}
	if ExitCode(err) != ExitCodeFailure {
		testingHandle.Fatalf("expected exit code %d, got %d", ExitCodeFailure, ExitCode(err))
	}
	content, _ := os.ReadFile(filepath.Join(projectRoot, "README.md"))
	if string(content) != "# No anchors\n" {
		testingHandle.Fatalf("document changed: %q", content)
	}
}

func TestSyncCommandRequiresSearchToolForCompanions(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeProjectFiles(testingHandle, projectRoot, map[string]string{
		"include/foo.h": "",
		"README.md":     readmeWithAnchors,
	})
	runtimeEnvironment, _, _ := newTestEnvironment(testingHandle, projectRoot)

	if err := execute(context.Background(), runtimeEnvironment, []string{"sync"}); err == nil {
		testingHandle.Fatalf("expected missing search tool error")
	}
	content, _ := os.ReadFile(filepath.Join(projectRoot, "README.md"))
	if string(content) != readmeWithAnchors {
		testingHandle.Fatalf("document changed: %q", content)
	}
}

func TestInitCommandWritesLocalConfiguration(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	runtimeEnvironment, stdout, _ := newTestEnvironment(testingHandle, projectRoot)

	if err := execute(context.Background(), runtimeEnvironment, []string{"init"}); err != nil {
		testingHandle.Fatalf("init error: %v", err)
	}
	expectedPath := filepath.Join(projectRoot, utils.ConfigFileName)
	if _, statError := os.Stat(expectedPath); statError != nil {
		testingHandle.Fatalf("expected %s: %v", expectedPath, statError)
	}
	if !strings.Contains(stdout.String(), expectedPath) {
		testingHandle.Fatalf("expected path in output, got %q", stdout.String())
	}
	if err := execute(context.Background(), runtimeEnvironment, []string{"init"}); err == nil {
		testingHandle.Fatalf("expected refusal to overwrite")
	}
	if err := execute(context.Background(), runtimeEnvironment, []string{"init", "--force"}); err != nil {
		testingHandle.Fatalf("forced init error: %v", err)
	}
}

func TestVersionFlagPrintsVersion(testingHandle *testing.T) {
	runtimeEnvironment, stdout, _ := newTestEnvironment(testingHandle, testingHandle.TempDir())
	if err := execute(context.Background(), runtimeEnvironment, []string{"--version"}); err != nil {
		testingHandle.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "mdtree version: ") {
		testingHandle.Fatalf("unexpected version output %q", stdout.String())
	}
}

func TestExitCode(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "success", err: nil, expected: ExitCodeSuccess},
		{name: "failure", err: errors.New("boom"), expected: ExitCodeFailure},
		{name: "verification_only", err: fmt.Errorf("sync: %w", document.ErrVerificationFailed), expected: ExitCodeFailure},
		{
			name:     "restored",
			err:      fmt.Errorf("sync: %w", fmt.Errorf("%w: %w", document.ErrDocumentRestored, document.ErrVerificationFailed)),
			expected: ExitCodeRestored,
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			if actual := ExitCode(testCase.err); actual != testCase.expected {
				testingHandle.Fatalf("ExitCode(%v) = %d, want %d", testCase.err, actual, testCase.expected)
			}
		})
	}
}
