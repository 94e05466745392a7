package annotate

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/companion"
	"github.com/temirov/mdtree/internal/tree"
	"github.com/temirov/mdtree/internal/utils"
)

const (
	companionListOpen      = "( *"
	companionListSeparator = "* | *"
	companionListClose     = "* )"

	errorCompanionLookupFormat = "find companions of %s: %w"
)

// Annotation is the linked form of one file line.
type Annotation struct {
	Line        string
	Definitions []Definition
}

// Annotator links file nodes and their companions.
type Annotator struct {
	// Finder looks up companions; nil disables companion links.
	Finder companion.Finder
	// Renderer supplies the space substitution applied to visible labels.
	Renderer tree.Renderer
	// BaseDirectory is the directory link targets are relative to; empty keeps paths as given.
	BaseDirectory string
	// Labels names link targets; nil disambiguates within each annotated line only.
	Labels *LabelSet
	Logger *zap.Logger
}

// Annotate returns the line for a file node: prefix followed by the file's reference
// token and, when companions exist, a sorted list of companion tokens.
func (annotator Annotator) Annotate(ctx context.Context, node *tree.Node, prefix string) (Annotation, error) {
	var companionPaths []string
	if annotator.Finder != nil {
		foundPaths, findError := annotator.Finder.Find(ctx, node.Entry.Path)
		if findError != nil {
			return Annotation{}, fmt.Errorf(errorCompanionLookupFormat, node.Entry.Path, findError)
		}
		companionPaths = foundPaths
	}

	labels := annotator.Labels
	if labels == nil {
		targets := []string{annotator.LinkTarget(node.Entry.Path)}
		for _, companionPath := range companionPaths {
			targets = append(targets, annotator.LinkTarget(companionPath))
		}
		labels = NewLabelSet(targets...)
	}

	own := annotator.definitionFor(node.Entry.Path, labels)
	annotation := Annotation{Definitions: []Definition{own}}
	if len(companionPaths) == 0 {
		annotation.Line = prefix + own.Token()
		return annotation, nil
	}

	tokenSet := map[string]struct{}{}
	for _, companionPath := range companionPaths {
		companionDefinition := annotator.definitionFor(companionPath, labels)
		annotation.Definitions = append(annotation.Definitions, companionDefinition)
		tokenSet[companionDefinition.Token()] = struct{}{}
	}
	tokens := make([]string, 0, len(tokenSet))
	for token := range tokenSet {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	annotation.Line = prefix + own.Token() + " " + FormatCompanionList(tokens)
	utils.LoggerOrNop(annotator.Logger).Debug("annotated",
		zap.String("file", node.Entry.RelativePath),
		zap.Int("companions", len(tokens)),
	)
	return annotation, nil
}

// FormatCompanionList renders tokens as "( *[a]* | *[b]* )".
func FormatCompanionList(tokens []string) string {
	return companionListOpen + strings.Join(tokens, companionListSeparator) + companionListClose
}

func (annotator Annotator) definitionFor(path string, labels *LabelSet) Definition {
	target := annotator.LinkTarget(path)
	return Definition{
		Label:  annotator.Renderer.ReplaceSpaces(labels.Label(target)),
		Target: target,
	}
}

// LinkTarget returns the slash-separated target of path relative to BaseDirectory.
func (annotator Annotator) LinkTarget(path string) string {
	if annotator.BaseDirectory == "" {
		return filepath.ToSlash(filepath.Clean(path))
	}
	absoluteBase, baseError := filepath.Abs(annotator.BaseDirectory)
	absolutePath, pathError := filepath.Abs(path)
	if baseError != nil || pathError != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return utils.RelativePathOrSelf(absolutePath, absoluteBase)
}
