package config

import (
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/spf13/afero"

	"github.com/temirov/mdtree/internal/utils"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, fileSystem afero.Fs, filePath string, content string) {
	testingHandle.Helper()
	if writeError := afero.WriteFile(fileSystem, filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

func TestLoadIgnoreFilePatternsSkipsCommentsAndBlanks(testingHandle *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeTestFile(testingHandle, fileSystem, "include/"+utils.IgnoreFileName, "# generated\n\n  draft.hpp  \nlegacy/\n")

	patterns, loadError := LoadIgnoreFilePatterns(fileSystem, "include/"+utils.IgnoreFileName)
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreFilePatterns failed: %v", loadError)
	}
	expected := []string{"draft.hpp", "legacy/"}
	if !reflect.DeepEqual(patterns, expected) {
		testingHandle.Fatalf("unexpected patterns: got %v want %v", patterns, expected)
	}
}

func TestLoadIgnoreFilePatternsMissingFile(testingHandle *testing.T) {
	patterns, loadError := LoadIgnoreFilePatterns(afero.NewMemMapFs(), "absent/"+utils.IgnoreFileName)
	if loadError != nil || patterns != nil {
		testingHandle.Fatalf("expected no patterns and no error, got %v, %v", patterns, loadError)
	}
}

// TestLoadRecursiveIgnorePatternsPrefixesNestedFiles verifies that patterns from nested ignore files are prefixed with their directory.
func TestLoadRecursiveIgnorePatternsPrefixesNestedFiles(testingHandle *testing.T) {
	const (
		rootPatternName   = "root.hpp"
		nestedPatternName = "nested.hpp"
		nestedDirName     = "graph"
		extraPattern      = "*.bak"
	)

	fileSystem := afero.NewMemMapFs()
	rootDirectory := "include"
	writeTestFile(testingHandle, fileSystem, filepath.Join(rootDirectory, utils.IgnoreFileName), rootPatternName+"\n")
	writeTestFile(testingHandle, fileSystem, filepath.Join(rootDirectory, nestedDirName, utils.IgnoreFileName), nestedPatternName+"\n")
	writeTestFile(testingHandle, fileSystem, filepath.Join(rootDirectory, utils.GitDirectoryName, utils.IgnoreFileName), "never.hpp\n")

	patternList, loadError := LoadRecursiveIgnorePatterns(fileSystem, rootDirectory, []string{extraPattern, rootPatternName})
	if loadError != nil {
		testingHandle.Fatalf("LoadRecursiveIgnorePatterns failed: %v", loadError)
	}

	sort.Strings(patternList)
	expectedPatterns := []string{extraPattern, nestedDirName + "/" + nestedPatternName, rootPatternName}
	sort.Strings(expectedPatterns)
	if !reflect.DeepEqual(patternList, expectedPatterns) {
		testingHandle.Fatalf("unexpected patterns: got %v want %v", patternList, expectedPatterns)
	}
}

func TestLoadRecursiveIgnorePatternsMissingRoot(testingHandle *testing.T) {
	if _, loadError := LoadRecursiveIgnorePatterns(afero.NewMemMapFs(), "missing", nil); loadError == nil {
		testingHandle.Fatalf("expected error for a missing root")
	}
}
