package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/commands"
	"github.com/temirov/mdtree/internal/output"
)

// createWatchCommand returns the watch subcommand.
func createWatchCommand(state *applicationState) *cobra.Command {
	return &cobra.Command{
		Use:     watchUse,
		Aliases: []string{watchAlias},
		Short:   watchShortDescription,
		Long:    watchLongDescription,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			options, optionsError := state.syncOptions()
			if optionsError != nil {
				return optionsError
			}
			printer := output.NewStatusPrinter(state.environment.stdout)
			watchOptions := commands.WatchOptions{
				SyncOptions: options,
				Debounce:    options.Configuration.Watch.Debounce,
			}
			return commands.Watch(command.Context(), watchOptions, func(result commands.SyncResult, err error) {
				if reportError := reportSynchronization(state, printer, options, result, err); reportError != nil {
					state.logger.Error("synchronization failed", zap.Error(reportError))
				}
			})
		},
	}
}
