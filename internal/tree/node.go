// Package tree walks a directory into a pre-ordered stream of nodes and renders each
// node as one line of a conventional ASCII directory tree.
package tree

import (
	"os"
	"path/filepath"
)

// DirectorySuffix is appended to directory names when they are displayed.
const DirectorySuffix = "/"

// Entry is a filesystem path observed during traversal.
type Entry struct {
	// Path is the path as reached from the traversal root, in OS form.
	Path string
	// RelativePath is Path relative to the traversal root, slash separated.
	RelativePath string
	Name         string
	IsDirectory  bool
}

// DisplayName returns the entry name with DirectorySuffix for directories.
func (entry Entry) DisplayName() string {
	if entry.IsDirectory {
		return entry.Name + DirectorySuffix
	}
	return entry.Name
}

func newEntry(path string, relativePath string, info os.FileInfo) Entry {
	return Entry{
		Path:         path,
		RelativePath: relativePath,
		Name:         filepath.Base(filepath.Clean(path)),
		IsDirectory:  info.IsDir(),
	}
}

// Node is one element of a traversal. Parent is a back-reference used for rendering
// only; nodes are never mutated after they are emitted.
type Node struct {
	Entry         Entry
	Parent        *Node
	Depth         int
	IsLastSibling bool
}

func newNode(entry Entry, parent *Node, isLastSibling bool) *Node {
	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}
	return &Node{
		Entry:         entry,
		Parent:        parent,
		Depth:         depth,
		IsLastSibling: isLastSibling,
	}
}

// IsRoot reports whether the node is the traversal root.
func (node *Node) IsRoot() bool {
	return node.Parent == nil
}
