// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/commands"
	"github.com/temirov/mdtree/internal/companion"
	"github.com/temirov/mdtree/internal/config"
	"github.com/temirov/mdtree/internal/document"
	"github.com/temirov/mdtree/internal/services/clipboard"
	"github.com/temirov/mdtree/internal/utils"
)

const (
	configFlagName      = "config"
	verboseFlagName     = "verbose"
	versionFlagName     = "version"
	copyFlagName        = "copy"
	printFlagName       = "print"
	printFlagShorthand  = "p"
	forceFlagName       = "force"
	globalFlagName      = "global"
	versionTemplate     = "mdtree version: %s\n"
	initCompletedFormat = "configuration written to %s\n"

	rootLongDescription = `mdtree renders a directory as a tree and keeps a linked copy of that tree
inside a README, between two anchor lines.
Configuration is read from .mdtree.yaml in the working directory (see mdtree init)
and from MDTREE_ environment variables.`

	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "print a directory tree (" + treeAlias + ")"
	treeLongDescription  = `Print the directory tree of path, or of the current directory.
Hidden entries, .git, __pycache__ and names ending in .cache or .txt are left out.`
	treeUsageExample = `  # Print the tree of the current directory
  mdtree tree

  # Copy the tree of ./include to the clipboard
  mdtree tree --copy include`

	syncUse              = "sync"
	syncAlias            = "s"
	syncShortDescription = "embed the linked tree into the document (" + syncAlias + ")"
	syncLongDescription  = `Render the configured source tree with links to every file and to the test
files that include it, and replace the region between the anchors of the document.
The document is backed up first and restored when the written region does not verify.`
	syncUsageExample = `  # Update README.md and show the generated region
  mdtree sync -p`

	watchUse              = "watch"
	watchAlias            = "w"
	watchShortDescription = "synchronize on every change (" + watchAlias + ")"
	watchLongDescription  = `Synchronize once, then again whenever a file below the source or companion
directories changes, until interrupted.`

	initUse              = "init"
	initShortDescription = "write the default configuration file"
	initLongDescription  = `Write the default .mdtree.yaml into the working directory, or into the
per-user configuration directory with --global.`

	configFlagDescription  = "path to the configuration file"
	verboseFlagDescription = "log debug messages"
	versionFlagDescription = "display application version"
	copyFlagDescription    = "copy the tree to the clipboard"
	printFlagDescription   = "print the generated region"
	forceFlagDescription   = "overwrite an existing configuration file"
	globalFlagDescription  = "write the per-user configuration"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loggerErrorFormat           = "initialize logger: %w"
	copyErrorFormat             = "copy tree: %w"
)

// Process exit codes.
const (
	ExitCodeSuccess  = 0
	ExitCodeFailure  = 1
	ExitCodeRestored = 3
)

var errVersionRequested = errors.New("version requested")

// environment holds the process facilities the commands use.
type environment struct {
	stdout           io.Writer
	stderr           io.Writer
	fileSystem       afero.Fs
	copier           clipboard.Copier
	lookPath         companion.LookPathFunc
	workingDirectory func() (string, error)
	newLogger        func(verbose bool) (*zap.Logger, error)
}

func defaultEnvironment() environment {
	return environment{
		stdout:           os.Stdout,
		stderr:           os.Stderr,
		fileSystem:       afero.NewOsFs(),
		copier:           clipboard.NewService(),
		lookPath:         exec.LookPath,
		workingDirectory: os.Getwd,
		newLogger:        utils.NewApplicationLogger,
	}
}

// applicationState is shared by the commands of one invocation.
type applicationState struct {
	environment       environment
	configurationPath string
	verbose           bool
	showVersion       bool
	logger            *zap.Logger
}

// Execute runs the mdtree application with the process arguments.
func Execute(ctx context.Context) error {
	return execute(ctx, defaultEnvironment(), os.Args[1:])
}

// ExitCode maps an Execute error to the process exit status. A run whose document was
// restored from the backup exits with ExitCodeRestored.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, document.ErrDocumentRestored):
		return ExitCodeRestored
	default:
		return ExitCodeFailure
	}
}

func execute(ctx context.Context, runtimeEnvironment environment, arguments []string) error {
	state := &applicationState{environment: runtimeEnvironment}
	rootCommand := createRootCommand(state)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	rootCommand.SetOut(runtimeEnvironment.stdout)
	rootCommand.SetErr(runtimeEnvironment.stderr)
	executionError := rootCommand.ExecuteContext(ctx)
	if state.logger != nil {
		_ = state.logger.Sync()
	}
	if errors.Is(executionError, errVersionRequested) {
		return nil
	}
	return executionError
}

// createRootCommand builds the root Cobra command.
func createRootCommand(state *applicationState) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           utils.ApplicationName,
		Short:         "embed linked directory trees into markdown documents",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if state.showVersion {
				fmt.Fprintf(state.environment.stdout, versionTemplate, utils.GetApplicationVersion())
				return errVersionRequested
			}
			logger, loggerError := state.environment.newLogger(state.verbose)
			if loggerError != nil {
				return fmt.Errorf(loggerErrorFormat, loggerError)
			}
			state.logger = logger
			return nil
		},
	}
	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&state.configurationPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(persistentFlags, &state.verbose, verboseFlagName, "", false, verboseFlagDescription)
	registerBooleanFlag(persistentFlags, &state.showVersion, versionFlagName, "", false, versionFlagDescription)

	rootCommand.AddCommand(
		createTreeCommand(state),
		createSyncCommand(state),
		createWatchCommand(state),
		createInitCommand(state),
	)
	return rootCommand
}

// loadConfiguration reads the configuration and resolves its relative paths against the
// working directory.
func (state *applicationState) loadConfiguration() (config.ApplicationConfiguration, string, error) {
	workingDirectory, workingDirectoryError := state.environment.workingDirectory()
	if workingDirectoryError != nil {
		return config.ApplicationConfiguration{}, "", fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: state.configurationPath,
	})
	if loadError != nil {
		return config.ApplicationConfiguration{}, "", loadError
	}
	configuration.Source.Root = resolveAgainst(workingDirectory, configuration.Source.Root)
	configuration.Companions.Root = resolveAgainst(workingDirectory, configuration.Companions.Root)
	configuration.Document.Path = resolveAgainst(workingDirectory, configuration.Document.Path)
	configuration.Document.BackupDirectory = resolveAgainst(workingDirectory, configuration.Document.BackupDirectory)
	state.logger.Debug("configuration loaded",
		zap.String("source", configuration.Source.Root),
		zap.String("document", configuration.Document.Path),
	)
	return configuration, workingDirectory, nil
}

func (state *applicationState) syncOptions() (commands.SyncOptions, error) {
	configuration, workingDirectory, loadError := state.loadConfiguration()
	if loadError != nil {
		return commands.SyncOptions{}, loadError
	}
	finder, finderError := commands.NewCompanionFinder(configuration.Companions, state.environment.lookPath, state.logger)
	if finderError != nil {
		return commands.SyncOptions{}, finderError
	}
	return commands.SyncOptions{
		FileSystem:       state.environment.fileSystem,
		Configuration:    configuration,
		Finder:           finder,
		WorkingDirectory: workingDirectory,
		Logger:           state.logger,
	}, nil
}

func resolveAgainst(workingDirectory string, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workingDirectory, path)
}

// displayPath shortens path relative to the working directory for messages.
func displayPath(workingDirectory string, path string) string {
	if relativePath, relativeError := filepath.Rel(workingDirectory, path); relativeError == nil {
		return filepath.ToSlash(relativePath)
	}
	return path
}
