package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/commands"
	"github.com/temirov/mdtree/internal/document"
	"github.com/temirov/mdtree/internal/output"
)

// createSyncCommand returns the sync subcommand.
func createSyncCommand(state *applicationState) *cobra.Command {
	var printRegion bool

	syncCommand := &cobra.Command{
		Use:     syncUse,
		Aliases: []string{syncAlias},
		Short:   syncShortDescription,
		Long:    syncLongDescription,
		Example: syncUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			options, optionsError := state.syncOptions()
			if optionsError != nil {
				return optionsError
			}
			printer := output.NewStatusPrinter(state.environment.stdout)

			result, syncError := commands.Synchronize(command.Context(), options)
			if printRegion && result.Region != "" {
				if printError := printer.Region(result.Region); printError != nil {
					return printError
				}
			}
			return reportSynchronization(state, printer, options, result, syncError)
		},
	}
	registerBooleanFlag(syncCommand.Flags(), &printRegion, printFlagName, printFlagShorthand, false, printFlagDescription)
	return syncCommand
}

// reportSynchronization prints the outcome of one run. Failures that rolled the document
// back are announced before the error is returned.
func reportSynchronization(state *applicationState, printer output.StatusPrinter, options commands.SyncOptions, result commands.SyncResult, syncError error) error {
	documentPath := displayPath(options.WorkingDirectory, options.Configuration.Document.Path)
	if syncError != nil {
		if errors.Is(syncError, document.ErrDocumentRestored) {
			if printError := printer.Outcome(document.OutcomeFailed, documentPath); printError != nil {
				state.logger.Warn("cannot print status", zap.Error(printError))
			}
		}
		return syncError
	}
	return printer.Outcome(result.Outcome, documentPath)
}
