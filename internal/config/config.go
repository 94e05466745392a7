// Package config loads the application configuration and the ignore files found in the
// source tree.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/mdtree/internal/utils"
)

const (
	ignoreFileCommentPrefix = "#"
	relativeRootDirectory   = "."
	errorLoadIgnoreFormat   = "loading %s from %s: %w"
)

// LoadIgnoreFilePatterns reads one ignore file and returns its patterns. Blank lines and
// lines starting with # are skipped. A missing file yields no patterns.
func LoadIgnoreFilePatterns(fileSystem afero.Fs, ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := fileSystem.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, ignoreFileCommentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates the patterns of every
// utils.IgnoreFileName. Patterns from a nested directory are prefixed with that directory's
// path relative to rootDirectoryPath, so they match the relative paths the tree filter sees.
// The utils.GitDirectoryName directory is never descended into. exclusionPatterns are
// appended after the file patterns.
func LoadRecursiveIgnorePatterns(fileSystem afero.Fs, rootDirectoryPath string, exclusionPatterns []string) ([]string, error) {
	var aggregatedPatterns []string

	walkFunction := func(currentDirectoryPath string, info os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)
		prefix := ""
		if relativeDirectory != relativeRootDirectory {
			prefix = relativeDirectory + "/"
		}

		ignoreFilePath := filepath.Join(currentDirectoryPath, utils.IgnoreFileName)
		ignorePatterns, loadError := LoadIgnoreFilePatterns(fileSystem, ignoreFilePath)
		if loadError != nil {
			return fmt.Errorf(errorLoadIgnoreFormat, utils.IgnoreFileName, currentDirectoryPath, loadError)
		}
		for _, pattern := range ignorePatterns {
			aggregatedPatterns = append(aggregatedPatterns, prefix+pattern)
		}
		return nil
	}

	if walkError := afero.Walk(fileSystem, rootDirectoryPath, walkFunction); walkError != nil {
		return nil, walkError
	}

	return utils.DeduplicatePatterns(append(aggregatedPatterns, exclusionPatterns...)), nil
}
