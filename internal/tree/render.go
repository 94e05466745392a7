package tree

import "strings"

// Tree drawing glyphs. The rendered text is embedded verbatim into documents and
// compared across runs, so these must stay byte-exact.
const (
	BranchConnector = "├── "
	LastConnector   = "└── "
	BranchPadding   = "│   "
	LastPadding     = "    "

	asciiSpace = " "
)

// EnSpace is the default replacement for spaces in markdown output; unlike an ASCII
// space it is not collapsed by markdown renderers, so indentation survives.
const EnSpace = "\u2002"

// Renderer converts nodes into tree lines.
type Renderer struct {
	// SpaceReplacement, when not empty, replaces every ASCII space of a rendered line.
	SpaceReplacement string
}

// Prefix returns the drawing prefix of node: one continuation segment per ancestor
// below the root, oldest first, followed by the node's own connector. The root has an
// empty prefix.
func (renderer Renderer) Prefix(node *Node) string {
	if node == nil || node.IsRoot() {
		return ""
	}
	segments := make([]string, 0, node.Depth)
	if node.IsLastSibling {
		segments = append(segments, LastConnector)
	} else {
		segments = append(segments, BranchConnector)
	}
	for ancestor := node.Parent; ancestor != nil && !ancestor.IsRoot(); ancestor = ancestor.Parent {
		if ancestor.IsLastSibling {
			segments = append(segments, LastPadding)
		} else {
			segments = append(segments, BranchPadding)
		}
	}

	var builder strings.Builder
	for segmentIndex := len(segments) - 1; segmentIndex >= 0; segmentIndex-- {
		builder.WriteString(segments[segmentIndex])
	}
	return renderer.ReplaceSpaces(builder.String())
}

// Render returns the complete line for node.
func (renderer Renderer) Render(node *Node) string {
	if node == nil {
		return ""
	}
	return renderer.Prefix(node) + renderer.ReplaceSpaces(node.Entry.DisplayName())
}

// ReplaceSpaces applies SpaceReplacement to text.
func (renderer Renderer) ReplaceSpaces(text string) string {
	if renderer.SpaceReplacement == "" || renderer.SpaceReplacement == asciiSpace {
		return text
	}
	return strings.ReplaceAll(text, asciiSpace, renderer.SpaceReplacement)
}

// RenderAll renders nodes in order.
func (renderer Renderer) RenderAll(nodes []*Node) []string {
	lines := make([]string, 0, len(nodes))
	for _, node := range nodes {
		lines = append(lines, renderer.Render(node))
	}
	return lines
}
