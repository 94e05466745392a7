// Package commands wires the tree, annotation and document packages into the operations
// exposed by the command line.
package commands

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/temirov/mdtree/internal/filter"
	"github.com/temirov/mdtree/internal/tree"
)

const (
	// DefaultTreeRoot is rendered when no path is given.
	DefaultTreeRoot = "."

	errorRenderTreeFormat = "render tree of %s: %w"
)

// TreeOptions configures the standalone tree renderer.
type TreeOptions struct {
	FileSystem afero.Fs
	Root       string
	// Includer defaults to filter.Sane.
	Includer tree.Includer
	// SpaceReplacement is applied to every rendered line; empty keeps ASCII spaces.
	SpaceReplacement string
}

// StreamTree renders the tree below options.Root and hands each line to emit as soon as
// it is produced.
func StreamTree(options TreeOptions, emit func(line string) error) error {
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	rootPath := options.Root
	if rootPath == "" {
		rootPath = DefaultTreeRoot
	}
	includer := options.Includer
	if includer == nil {
		includer = filter.Sane()
	}
	renderer := tree.Renderer{SpaceReplacement: options.SpaceReplacement}

	walkError := tree.Walk(fileSystem, rootPath, includer, func(node *tree.Node) error {
		return emit(renderer.Render(node))
	})
	if walkError != nil {
		return fmt.Errorf(errorRenderTreeFormat, rootPath, walkError)
	}
	return nil
}

// RenderTree returns every line of the standalone tree.
func RenderTree(options TreeOptions) ([]string, error) {
	var lines []string
	streamError := StreamTree(options, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	if streamError != nil {
		return nil, streamError
	}
	return lines, nil
}
