package tree_test

import (
	"strings"
	"testing"

	"github.com/temirov/mdtree/internal/tree"
)

// TestRenderProducesConventionalTree verifies byte-exact glyphs and continuation columns.
func TestRenderProducesConventionalTree(testingHandle *testing.T) {
	nodes, collectError := tree.Collect(newFixtureFileSystem(testingHandle), fixtureRootName, skipHidden)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}

	expected := strings.Join([]string{
		"project/",
		"├── a.txt",
		"├── B.txt",
		"├── dir/",
		"│   ├── sub/",
		"│   │   └── y.h",
		"│   └── x.h",
		"└── zeta/",
		"    └── z.h",
	}, "\n")
	actual := strings.Join(tree.Renderer{}.RenderAll(nodes), "\n")
	if actual != expected {
		testingHandle.Fatalf("unexpected tree:\n%s\nexpected:\n%s", actual, expected)
	}
}

// TestRenderUsesAncestorLastFlags verifies that each continuation segment follows its own ancestor.
func TestRenderUsesAncestorLastFlags(testingHandle *testing.T) {
	root := &tree.Node{Entry: tree.Entry{Name: "root", IsDirectory: true}}
	middleDirectory := &tree.Node{Entry: tree.Entry{Name: "middle", IsDirectory: true}, Parent: root, Depth: 1, IsLastSibling: false}
	lastDirectory := &tree.Node{Entry: tree.Entry{Name: "last", IsDirectory: true}, Parent: root, Depth: 1, IsLastSibling: true}

	testCases := []struct {
		name     string
		node     *tree.Node
		expected string
	}{
		{name: "root is bare", node: root, expected: "root/"},
		{name: "middle sibling", node: middleDirectory, expected: "├── middle/"},
		{name: "last sibling", node: lastDirectory, expected: "└── last/"},
		{
			name:     "leaf under non-last ancestor",
			node:     &tree.Node{Entry: tree.Entry{Name: "leaf.h"}, Parent: middleDirectory, Depth: 2, IsLastSibling: true},
			expected: "│   └── leaf.h",
		},
		{
			name:     "leaf under last ancestor",
			node:     &tree.Node{Entry: tree.Entry{Name: "leaf.h"}, Parent: lastDirectory, Depth: 2, IsLastSibling: false},
			expected: "    ├── leaf.h",
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			actual := tree.Renderer{}.Render(testCase.node)
			if actual != testCase.expected {
				testingHandle.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}

// TestRenderReplacesSpaces verifies the markdown space substitution covers glyph padding and names.
func TestRenderReplacesSpaces(testingHandle *testing.T) {
	root := &tree.Node{Entry: tree.Entry{Name: "root", IsDirectory: true}}
	child := &tree.Node{Entry: tree.Entry{Name: "binary search", IsDirectory: true}, Parent: root, Depth: 1, IsLastSibling: true}
	renderer := tree.Renderer{SpaceReplacement: tree.EnSpace}

	actual := renderer.Render(child)
	expected := "└──" + tree.EnSpace + "binary" + tree.EnSpace + "search/"
	if actual != expected {
		testingHandle.Fatalf("expected %q, got %q", expected, actual)
	}
	if strings.Contains(actual, " ") {
		testingHandle.Fatalf("ASCII space left in %q", actual)
	}
}
