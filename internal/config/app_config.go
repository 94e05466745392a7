package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/mdtree/internal/utils"
)

// Configuration keys. Nested keys use viper's dotted form; environment variables replace
// dots with underscores, e.g. MDTREE_DOCUMENT_PATH.
const (
	SourceRootKey             = "source.root"
	SourceHiddenPrefixKey     = "source.hidden_prefix"
	SourceExcludeNamesKey     = "source.exclude_names"
	SourceExcludeSuffixesKey  = "source.exclude_suffixes"
	SourceExcludePatternsKey  = "source.exclude_patterns"
	SourceAllowDirectoriesKey = "source.allow_directories"
	SourceUseIgnoreFileKey    = "source.use_ignore"

	CompanionsEnabledKey = "companions.enabled"
	CompanionsRootKey    = "companions.root"
	CompanionsPatternKey = "companions.pattern"
	CompanionsExcludeKey = "companions.exclude"
	CompanionsToolsKey   = "companions.tools"

	DocumentPathKey            = "document.path"
	DocumentBackupDirectoryKey = "document.backup_directory"
	DocumentStartAnchorKey     = "document.start_anchor"
	DocumentEndAnchorKey       = "document.end_anchor"

	LinksLabelWidthKey       = "links.label_width"
	LinksSpaceReplacementKey = "links.space_replacement"
	LinksLineBreakKey        = "links.line_break"

	WatchDebounceKey = "watch.debounce"
)

// Default values mirror the layout of a header-only C++ algorithms repository.
const (
	DefaultSourceRoot          = "include"
	DefaultCompanionRoot       = "tests"
	DefaultCompanionPattern    = "#include .*{name}"
	DefaultDocumentPath        = "README.md"
	DefaultBackupDirectory     = "scripts/.cache/md_backup"
	DefaultStartAnchor         = "## Tree of Implemented DSA"
	DefaultEndAnchor           = "## Hall of Fame"
	DefaultLabelWidth          = 28
	DefaultSpaceReplacement    = "\u2002"
	DefaultLineBreak           = `\`
	DefaultHiddenPrefix        = "."
	DefaultWatchDebounce       = 300 * time.Millisecond
	environmentKeySeparator    = "_"
	configurationKeySeparator  = "."
	errorWorkingDirectory      = "determine working directory: %w"
	errorResolveConfiguration  = "resolve configuration path %s: %w"
	errorStatConfiguration     = "stat configuration %s: %w"
	errorConfigurationIsFolder = "configuration path %s is a directory"
	errorReadConfiguration     = "read configuration from %s: %w"
	errorDecodeConfiguration   = "decode configuration: %w"
	errorMissingSetting        = "%w: %s must not be empty"
)

// ErrInvalidConfiguration reports a setting that cannot be used.
var ErrInvalidConfiguration = errors.New("invalid configuration")

var (
	defaultExcludedNames    = []string{"common", "__pycache__", "c"}
	defaultExcludedSuffixes = []string{".cache", ".txt"}
	defaultCompanionExclude = []string{"*.txt", "*main.cc"}
	defaultSearchTools      = []string{"rg", "grep"}
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds every setting of a synchronization run.
type ApplicationConfiguration struct {
	Source     SourceConfiguration    `mapstructure:"source"`
	Companions CompanionConfiguration `mapstructure:"companions"`
	Document   DocumentConfiguration  `mapstructure:"document"`
	Links      LinkConfiguration      `mapstructure:"links"`
	Watch      WatchConfiguration     `mapstructure:"watch"`
}

// SourceConfiguration selects the tree embedded into the document.
type SourceConfiguration struct {
	Root             string   `mapstructure:"root"`
	HiddenPrefix     string   `mapstructure:"hidden_prefix"`
	ExcludeNames     []string `mapstructure:"exclude_names"`
	ExcludeSuffixes  []string `mapstructure:"exclude_suffixes"`
	ExcludePatterns  []string `mapstructure:"exclude_patterns"`
	AllowDirectories []string `mapstructure:"allow_directories"`
	UseIgnoreFile    bool     `mapstructure:"use_ignore"`
}

// CompanionConfiguration controls the lookup of files referencing a source file.
type CompanionConfiguration struct {
	Enabled bool     `mapstructure:"enabled"`
	Root    string   `mapstructure:"root"`
	Pattern string   `mapstructure:"pattern"`
	Exclude []string `mapstructure:"exclude"`
	Tools   []string `mapstructure:"tools"`
}

// DocumentConfiguration locates the managed region.
type DocumentConfiguration struct {
	Path            string `mapstructure:"path"`
	BackupDirectory string `mapstructure:"backup_directory"`
	StartAnchor     string `mapstructure:"start_anchor"`
	EndAnchor       string `mapstructure:"end_anchor"`
}

// LinkConfiguration shapes the generated markdown.
type LinkConfiguration struct {
	LabelWidth       int    `mapstructure:"label_width"`
	SpaceReplacement string `mapstructure:"space_replacement"`
	LineBreak        string `mapstructure:"line_break"`
}

// WatchConfiguration tunes the watch command.
type WatchConfiguration struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoadApplicationConfiguration merges defaults, the global file, the local (or explicit)
// file and MDTREE_ environment variables, in increasing order of precedence.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectory, err)
		}
		workingDirectory = currentDirectory
	}

	reader := newConfigurationReader(true)

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		if mergeErr := mergeConfigurationFromPath(reader, globalPath); mergeErr != nil {
			return ApplicationConfiguration{}, mergeErr
		}
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if mergeErr := mergeConfigurationFromPath(reader, localPath); mergeErr != nil {
		return ApplicationConfiguration{}, mergeErr
	}

	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfiguration, decodeErr)
	}
	configuration.Source.ExcludeNames = utils.DeduplicatePatterns(configuration.Source.ExcludeNames)
	configuration.Source.ExcludeSuffixes = utils.DeduplicatePatterns(configuration.Source.ExcludeSuffixes)
	configuration.Source.ExcludePatterns = utils.DeduplicatePatterns(configuration.Source.ExcludePatterns)
	configuration.Companions.Exclude = utils.DeduplicatePatterns(configuration.Companions.Exclude)
	if validationErr := configuration.validate(); validationErr != nil {
		return ApplicationConfiguration{}, validationErr
	}
	return configuration, nil
}

// validate rejects settings a synchronization run cannot work with.
func (configuration ApplicationConfiguration) validate() error {
	requiredSettings := []struct {
		key   string
		value string
	}{
		{key: SourceRootKey, value: configuration.Source.Root},
		{key: DocumentPathKey, value: configuration.Document.Path},
		{key: DocumentBackupDirectoryKey, value: configuration.Document.BackupDirectory},
	}
	for _, setting := range requiredSettings {
		if strings.TrimSpace(setting.value) == "" {
			return fmt.Errorf(errorMissingSetting, ErrInvalidConfiguration, setting.key)
		}
	}
	return nil
}

// Default returns the configuration used when no file or environment override exists.
func Default() ApplicationConfiguration {
	var configuration ApplicationConfiguration
	// Defaults always decode.
	_ = newConfigurationReader(false).Unmarshal(&configuration)
	return configuration
}

func newConfigurationReader(withEnvironment bool) *viper.Viper {
	reader := viper.New()
	reader.SetConfigType("yaml")

	reader.SetDefault(SourceRootKey, DefaultSourceRoot)
	reader.SetDefault(SourceHiddenPrefixKey, DefaultHiddenPrefix)
	reader.SetDefault(SourceExcludeNamesKey, defaultExcludedNames)
	reader.SetDefault(SourceExcludeSuffixesKey, defaultExcludedSuffixes)
	reader.SetDefault(SourceExcludePatternsKey, []string{})
	reader.SetDefault(SourceAllowDirectoriesKey, []string{})
	reader.SetDefault(SourceUseIgnoreFileKey, true)

	reader.SetDefault(CompanionsEnabledKey, true)
	reader.SetDefault(CompanionsRootKey, DefaultCompanionRoot)
	reader.SetDefault(CompanionsPatternKey, DefaultCompanionPattern)
	reader.SetDefault(CompanionsExcludeKey, defaultCompanionExclude)
	reader.SetDefault(CompanionsToolsKey, defaultSearchTools)

	reader.SetDefault(DocumentPathKey, DefaultDocumentPath)
	reader.SetDefault(DocumentBackupDirectoryKey, DefaultBackupDirectory)
	reader.SetDefault(DocumentStartAnchorKey, DefaultStartAnchor)
	reader.SetDefault(DocumentEndAnchorKey, DefaultEndAnchor)

	reader.SetDefault(LinksLabelWidthKey, DefaultLabelWidth)
	reader.SetDefault(LinksSpaceReplacementKey, DefaultSpaceReplacement)
	reader.SetDefault(LinksLineBreakKey, DefaultLineBreak)

	reader.SetDefault(WatchDebounceKey, DefaultWatchDebounce)

	if withEnvironment {
		reader.SetEnvPrefix(utils.EnvironmentPrefix)
		reader.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparator, environmentKeySeparator))
		reader.AutomaticEnv()
	}
	return reader
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(errorResolveConfiguration, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

// mergeConfigurationFromPath overlays the file at path onto reader. A missing file is
// not an error.
func mergeConfigurationFromPath(reader *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil
		}
		return fmt.Errorf(errorStatConfiguration, path, statErr)
	}
	if info.IsDir() {
		return fmt.Errorf(errorConfigurationIsFolder, path)
	}

	reader.SetConfigFile(path)
	if readErr := reader.MergeInConfig(); readErr != nil {
		return fmt.Errorf(errorReadConfiguration, path, readErr)
	}
	return nil
}
