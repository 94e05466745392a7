package filter_test

import (
	"testing"

	"github.com/temirov/mdtree/internal/filter"
	"github.com/temirov/mdtree/internal/tree"
)

func fileEntry(relativePath string, name string) tree.Entry {
	return tree.Entry{Path: relativePath, RelativePath: relativePath, Name: name}
}

func directoryEntry(relativePath string, name string) tree.Entry {
	entry := fileEntry(relativePath, name)
	entry.IsDirectory = true
	return entry
}

func TestPredicates(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		actual   bool
		expected bool
	}{
		{name: "hidden with dot", actual: filter.IsHidden(".git", "."), expected: true},
		{name: "visible name", actual: filter.IsHidden("include", "."), expected: false},
		{name: "empty prefix hides nothing", actual: filter.IsHidden(".git", ""), expected: false},
		{name: "exact name", actual: filter.IsExcludedByName("common", []string{"common", "c"}), expected: true},
		{name: "name prefix is not a match", actual: filter.IsExcludedByName("commons", []string{"common"}), expected: false},
		{name: "suffix match", actual: filter.IsExcludedBySuffix("CMakeLists.txt", []string{".cache", ".txt"}), expected: true},
		{name: "suffix miss", actual: filter.IsExcludedBySuffix("sort.hpp", []string{".cache", ".txt"}), expected: false},
		{name: "empty suffix ignored", actual: filter.IsExcludedBySuffix("sort.hpp", []string{""}), expected: false},
		{name: "pattern match", actual: filter.IsExcludedByPattern("wndx/algo/main.cc", []string{"*main.cc"}), expected: true},
		{name: "no patterns", actual: filter.IsExcludedByPattern("wndx/algo/main.cc", nil), expected: false},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			if testCase.actual != testCase.expected {
				testingHandle.Fatalf("expected %t, got %t", testCase.expected, testCase.actual)
			}
		})
	}
}

func TestFilterInclude(testingHandle *testing.T) {
	configured := filter.Filter{
		HiddenPrefix:       filter.DefaultHiddenPrefix,
		ExcludedNames:      []string{"common"},
		ExcludedSuffixes:   []string{".txt"},
		ExcludedPatterns:   []string{"build/"},
		AllowedDirectories: []string{"wndx", "sort"},
	}
	testCases := []struct {
		name     string
		filter   filter.Filter
		entry    tree.Entry
		expected bool
	}{
		{name: "zero value includes hidden", filter: filter.Filter{}, entry: fileEntry(".clang-format", ".clang-format"), expected: true},
		{name: "default hides dot entries", filter: filter.Default(), entry: directoryEntry(".git", ".git"), expected: false},
		{name: "sane drops pycache", filter: filter.Sane(), entry: directoryEntry("scripts/__pycache__", "__pycache__"), expected: false},
		{name: "sane drops text files", filter: filter.Sane(), entry: fileEntry("CMakeLists.txt", "CMakeLists.txt"), expected: false},
		{name: "sane keeps sources", filter: filter.Sane(), entry: fileEntry("src/sort.hpp", "sort.hpp"), expected: true},
		{name: "excluded name", filter: configured, entry: directoryEntry("wndx/common", "common"), expected: false},
		{name: "excluded pattern", filter: configured, entry: fileEntry("build/x.h", "x.h"), expected: false},
		{name: "allowed directory", filter: configured, entry: directoryEntry("wndx/sort", "sort"), expected: true},
		{name: "directory outside allow list", filter: configured, entry: directoryEntry("wndx/search", "search"), expected: false},
		{name: "files ignore allow list", filter: configured, entry: fileEntry("wndx/sort/bubble_sort.hpp", "bubble_sort.hpp"), expected: true},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			if actual := testCase.filter.Include(testCase.entry); actual != testCase.expected {
				testingHandle.Fatalf("expected %t for %s, got %t", testCase.expected, testCase.entry.RelativePath, actual)
			}
		})
	}
}
