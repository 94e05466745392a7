package tree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/mdtree/internal/utils"
)

const (
	errorStatRootFormat      = "stat tree root %s: %w"
	errorReadDirectoryFormat = "%w %s: %w"
)

var (
	// ErrReadDirectory reports a directory that could not be listed during traversal.
	ErrReadDirectory = errors.New("reading directory")
	// ErrNilVisitor reports a Walk call without a visit callback.
	ErrNilVisitor = errors.New("tree visitor is nil")
)

// Includer decides whether a child entry takes part in the traversal.
type Includer interface {
	Include(entry Entry) bool
}

// IncludeFunc adapts a function to the Includer interface.
type IncludeFunc func(entry Entry) bool

// Include calls the function.
func (includeFunc IncludeFunc) Include(entry Entry) bool {
	return includeFunc(entry)
}

type walker struct {
	fileSystem afero.Fs
	rootPath   string
	includer   Includer
	visit      func(*Node) error
}

// listedEntry pairs an entry with the file information it was built from.
type listedEntry struct {
	entry Entry
	info  os.FileInfo
}

// Walk traverses rootPath depth-first in pre-order and calls visit once per node.
// The root is always emitted. Children of a directory are filtered with includer,
// sorted case-insensitively by their full path, and the last of the retained children is
// flagged as the last sibling. Symbolic links are followed; a linked directory that is one
// of its own ancestors is emitted without descending into it. A directory that cannot be
// listed aborts the walk with an error wrapping ErrReadDirectory; an error returned by
// visit aborts the walk as well. Every call re-reads the filesystem.
func Walk(fileSystem afero.Fs, rootPath string, includer Includer, visit func(*Node) error) error {
	if visit == nil {
		return ErrNilVisitor
	}
	if includer == nil {
		includer = IncludeFunc(func(Entry) bool { return true })
	}
	rootInfo, statError := fileSystem.Stat(rootPath)
	if statError != nil {
		return fmt.Errorf(errorStatRootFormat, rootPath, statError)
	}
	treeWalker := walker{
		fileSystem: fileSystem,
		rootPath:   rootPath,
		includer:   includer,
		visit:      visit,
	}
	return treeWalker.walk(listedEntry{entry: newEntry(rootPath, ".", rootInfo), info: rootInfo}, nil, false, nil)
}

// Collect walks rootPath and returns every node in traversal order.
func Collect(fileSystem afero.Fs, rootPath string, includer Includer) ([]*Node, error) {
	var nodes []*Node
	walkError := Walk(fileSystem, rootPath, includer, func(node *Node) error {
		nodes = append(nodes, node)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return nodes, nil
}

func (treeWalker walker) walk(listed listedEntry, parent *Node, isLastSibling bool, ancestors []os.FileInfo) error {
	node := newNode(listed.entry, parent, isLastSibling)
	if visitError := treeWalker.visit(node); visitError != nil {
		return visitError
	}
	if !listed.entry.IsDirectory || isAncestor(listed.info, ancestors) {
		return nil
	}

	children, listError := treeWalker.listChildren(listed.entry.Path)
	if listError != nil {
		return listError
	}
	descendantAncestors := append(ancestors[:len(ancestors):len(ancestors)], listed.info)
	for childIndex, child := range children {
		childIsLast := childIndex == len(children)-1
		if !child.entry.IsDirectory {
			if visitError := treeWalker.visit(newNode(child.entry, node, childIsLast)); visitError != nil {
				return visitError
			}
			continue
		}
		if walkError := treeWalker.walk(child, node, childIsLast, descendantAncestors); walkError != nil {
			return walkError
		}
	}
	return nil
}

// isAncestor reports whether info describes one of the directories being descended.
func isAncestor(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, ancestor := range ancestors {
		if os.SameFile(info, ancestor) {
			return true
		}
	}
	return false
}

// listChildren returns the included children of directoryPath in display order.
// Directory listings describe symbolic links themselves, so links are resolved with Stat.
func (treeWalker walker) listChildren(directoryPath string) ([]listedEntry, error) {
	directoryInfos, readError := afero.ReadDir(treeWalker.fileSystem, directoryPath)
	if readError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, ErrReadDirectory, directoryPath, readError)
	}

	children := make([]listedEntry, 0, len(directoryInfos))
	for _, directoryInfo := range directoryInfos {
		childPath := filepath.Join(directoryPath, directoryInfo.Name())
		if directoryInfo.Mode()&os.ModeSymlink != 0 {
			if targetInfo, statError := treeWalker.fileSystem.Stat(childPath); statError == nil {
				directoryInfo = targetInfo
			}
		}
		child := newEntry(childPath, utils.RelativePathOrSelf(childPath, treeWalker.rootPath), directoryInfo)
		if !treeWalker.includer.Include(child) {
			continue
		}
		children = append(children, listedEntry{entry: child, info: directoryInfo})
	}

	sort.SliceStable(children, func(leftIndex, rightIndex int) bool {
		leftKey := strings.ToLower(children[leftIndex].entry.Path)
		rightKey := strings.ToLower(children[rightIndex].entry.Path)
		if leftKey != rightKey {
			return leftKey < rightKey
		}
		return children[leftIndex].entry.Path < children[rightIndex].entry.Path
	})
	return children, nil
}
