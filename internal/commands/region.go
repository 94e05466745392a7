package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/annotate"
	"github.com/temirov/mdtree/internal/companion"
	"github.com/temirov/mdtree/internal/config"
	"github.com/temirov/mdtree/internal/filter"
	"github.com/temirov/mdtree/internal/tree"
	"github.com/temirov/mdtree/internal/utils"
)

const (
	regionLineSeparator = "\n"

	errorBuildFilterFormat    = "build filter for %s: %w"
	errorGenerateRegionFormat = "generate region from %s: %w"
	errorDetectToolFormat     = "detect companion search tool: %w"
	errorFindCompanionsFormat = "find companions of %s: %w"
)

// SyncOptions carries everything a region generation or synchronization run needs.
type SyncOptions struct {
	FileSystem    afero.Fs
	Configuration config.ApplicationConfiguration
	// Finder looks up companion files; nil disables companion links.
	Finder companion.Finder
	// WorkingDirectory is the directory link targets are relative to.
	WorkingDirectory string
	Logger           *zap.Logger
}

func (options SyncOptions) fileSystem() afero.Fs {
	if options.FileSystem == nil {
		return afero.NewOsFs()
	}
	return options.FileSystem
}

// BuildSourceFilter turns the source configuration into a filter, adding the patterns of
// the ignore files found below the source root when enabled.
func BuildSourceFilter(fileSystem afero.Fs, source config.SourceConfiguration) (filter.Filter, error) {
	excludedPatterns := source.ExcludePatterns
	if source.UseIgnoreFile {
		loadedPatterns, loadError := config.LoadRecursiveIgnorePatterns(fileSystem, source.Root, source.ExcludePatterns)
		if loadError != nil {
			return filter.Filter{}, fmt.Errorf(errorBuildFilterFormat, source.Root, loadError)
		}
		excludedPatterns = loadedPatterns
	}
	return filter.Filter{
		HiddenPrefix:       source.HiddenPrefix,
		ExcludedNames:      source.ExcludeNames,
		ExcludedSuffixes:   source.ExcludeSuffixes,
		ExcludedPatterns:   excludedPatterns,
		AllowedDirectories: source.AllowDirectories,
	}, nil
}

// NewCompanionFinder builds the external search based finder described by the companion
// configuration. It returns nil when companions are disabled and an error wrapping
// companion.ErrSearchToolNotFound when no configured tool is installed.
func NewCompanionFinder(companions config.CompanionConfiguration, lookPath companion.LookPathFunc, logger *zap.Logger) (companion.Finder, error) {
	if !companions.Enabled {
		return nil, nil
	}
	searchTool, detectError := companion.DetectSearchTool(companions.Tools, lookPath)
	if detectError != nil {
		return nil, fmt.Errorf(errorDetectToolFormat, detectError)
	}
	utils.LoggerOrNop(logger).Debug("companion search tool", zap.String("tool", searchTool.Name), zap.String("path", searchTool.Executable))
	return &companion.ToolFinder{
		Tool:             searchTool,
		Root:             companions.Root,
		PatternTemplate:  companions.Pattern,
		ExcludedPatterns: companions.Exclude,
		Runner:           companion.ExecRunner{},
		Logger:           logger,
	}, nil
}

// GenerateRegion renders and annotates the source tree and returns the text of the
// managed region: every tree line followed by the configured line break, except the last
// which is followed by a blank line, then the sorted link definitions. A traversal or
// lookup failure aborts the generation. Companions are looked up once per file before
// rendering so that labels shared by several targets can be told apart.
func GenerateRegion(ctx context.Context, options SyncOptions) (string, error) {
	fileSystem := options.fileSystem()
	configuration := options.Configuration
	logger := utils.LoggerOrNop(options.Logger)

	sourceFilter, filterError := BuildSourceFilter(fileSystem, configuration.Source)
	if filterError != nil {
		return "", filterError
	}

	var nodes []*tree.Node
	walkError := tree.Walk(fileSystem, configuration.Source.Root, sourceFilter, func(node *tree.Node) error {
		if contextError := ctx.Err(); contextError != nil {
			return contextError
		}
		nodes = append(nodes, node)
		return nil
	})
	if walkError != nil {
		return "", fmt.Errorf(errorGenerateRegionFormat, configuration.Source.Root, walkError)
	}

	renderer := tree.Renderer{SpaceReplacement: configuration.Links.SpaceReplacement}
	annotator := annotate.Annotator{
		Renderer:      renderer,
		BaseDirectory: options.WorkingDirectory,
		Logger:        options.Logger,
	}
	companions, lookupError := lookUpCompanions(ctx, options.Finder, nodes)
	if lookupError != nil {
		return "", fmt.Errorf(errorGenerateRegionFormat, configuration.Source.Root, lookupError)
	}
	if options.Finder != nil {
		annotator.Finder = companions
	}
	annotator.Labels = annotate.NewLabelSet(companions.linkTargets(annotator, nodes)...)

	definitions := annotate.NewDefinitionSet(configuration.Links.LabelWidth)
	treeLines := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node.Entry.IsDirectory {
			treeLines = append(treeLines, renderer.Render(node))
			continue
		}
		annotation, annotateError := annotator.Annotate(ctx, node, renderer.Prefix(node))
		if annotateError != nil {
			return "", fmt.Errorf(errorGenerateRegionFormat, configuration.Source.Root, annotateError)
		}
		treeLines = append(treeLines, annotation.Line)
		definitions.Add(annotation.Definitions...)
	}

	logger.Debug("region generated",
		zap.String("root", filepath.ToSlash(configuration.Source.Root)),
		zap.Int("lines", len(treeLines)),
		zap.Int("definitions", definitions.Len()),
	)
	return AssembleRegion(treeLines, configuration.Links.LineBreak, definitions.Lines()), nil
}

// companionLookups holds the companions found for each file path and serves them as a
// companion.Finder.
type companionLookups map[string][]string

func (lookups companionLookups) Find(_ context.Context, sourcePath string) ([]string, error) {
	return lookups[sourcePath], nil
}

func lookUpCompanions(ctx context.Context, finder companion.Finder, nodes []*tree.Node) (companionLookups, error) {
	lookups := companionLookups{}
	if finder == nil {
		return lookups, nil
	}
	for _, node := range nodes {
		if node.Entry.IsDirectory {
			continue
		}
		if contextError := ctx.Err(); contextError != nil {
			return nil, contextError
		}
		companionPaths, findError := finder.Find(ctx, node.Entry.Path)
		if findError != nil {
			return nil, fmt.Errorf(errorFindCompanionsFormat, node.Entry.Path, findError)
		}
		lookups[node.Entry.Path] = companionPaths
	}
	return lookups, nil
}

// linkTargets lists every file and companion target the region links to.
func (lookups companionLookups) linkTargets(annotator annotate.Annotator, nodes []*tree.Node) []string {
	var targets []string
	for _, node := range nodes {
		if node.Entry.IsDirectory {
			continue
		}
		targets = append(targets, annotator.LinkTarget(node.Entry.Path))
		for _, companionPath := range lookups[node.Entry.Path] {
			targets = append(targets, annotator.LinkTarget(companionPath))
		}
	}
	return targets
}

// AssembleRegion joins tree lines and definition lines into region text ending with a
// newline.
func AssembleRegion(treeLines []string, lineBreak string, definitionLines []string) string {
	var builder strings.Builder
	for lineIndex, line := range treeLines {
		builder.WriteString(line)
		if lineIndex < len(treeLines)-1 {
			builder.WriteString(lineBreak)
		}
		builder.WriteString(regionLineSeparator)
	}
	builder.WriteString(regionLineSeparator)
	for _, definitionLine := range definitionLines {
		builder.WriteString(definitionLine)
		builder.WriteString(regionLineSeparator)
	}
	return builder.String()
}
