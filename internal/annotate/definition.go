// Package annotate turns file lines of a rendered tree into markdown reference links,
// with links to companion files, and collects the matching link definitions.
package annotate

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultLabelWidth pads definition labels so the targets line up.
	DefaultLabelWidth = 28

	definitionFormat     = "[%-*s]: ./%s"
	tokenFormat          = "[%s]"
	encodedSpace         = "%20"
	relativeTargetPrefix = "./"
)

// Definition binds a reference label to a relative target path.
type Definition struct {
	Label  string
	Target string
}

// Token returns the reference used in the tree line.
func (definition Definition) Token() string {
	return fmt.Sprintf(tokenFormat, definition.Label)
}

// Format returns the definition line with the label padded to width. Spaces in the
// target are percent-encoded so the definition stays a single markdown destination.
func (definition Definition) Format(width int) string {
	target := strings.TrimPrefix(definition.Target, relativeTargetPrefix)
	target = strings.ReplaceAll(target, " ", encodedSpace)
	return fmt.Sprintf(definitionFormat, width, definition.Label, target)
}

// DefinitionSet accumulates unique definition lines.
type DefinitionSet struct {
	Width int
	lines map[string]struct{}
}

// NewDefinitionSet returns an empty set formatting labels to width.
func NewDefinitionSet(width int) *DefinitionSet {
	return &DefinitionSet{Width: width, lines: map[string]struct{}{}}
}

// Add inserts definitions; duplicates by full text are kept once.
func (set *DefinitionSet) Add(definitions ...Definition) {
	if set.lines == nil {
		set.lines = map[string]struct{}{}
	}
	for _, definition := range definitions {
		set.lines[definition.Format(set.Width)] = struct{}{}
	}
}

// Len returns the number of unique definition lines.
func (set *DefinitionSet) Len() int {
	return len(set.lines)
}

// Lines returns the definition lines sorted lexicographically.
func (set *DefinitionSet) Lines() []string {
	lines := make([]string, 0, len(set.lines))
	for line := range set.lines {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}
