package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/mdtree/internal/config"
)

// createInitCommand returns the init subcommand.
func createInitCommand(state *applicationState) *cobra.Command {
	var force bool
	var global bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := state.environment.workingDirectory()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(state.environment.stdout, initCompletedFormat, destinationPath)
			return printError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, "", false, forceFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, "", false, globalFlagDescription)
	return initCommand
}
