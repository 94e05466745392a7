package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/mdtree/internal/commands"
	"github.com/temirov/mdtree/internal/output"
)

// createTreeCommand returns the tree subcommand.
func createTreeCommand(state *applicationState) *cobra.Command {
	var copyEnabled bool

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := commands.DefaultTreeRoot
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			options := commands.TreeOptions{FileSystem: state.environment.fileSystem, Root: rootPath}
			lineWriter := output.NewLineWriter(state.environment.stdout)

			if !copyEnabled {
				if streamError := commands.StreamTree(options, lineWriter.WriteLine); streamError != nil {
					return streamError
				}
				return lineWriter.Flush()
			}

			lines, renderError := commands.RenderTree(options)
			if renderError != nil {
				return renderError
			}
			for _, line := range lines {
				if writeError := lineWriter.WriteLine(line); writeError != nil {
					return writeError
				}
			}
			if flushError := lineWriter.Flush(); flushError != nil {
				return flushError
			}
			if copyError := state.environment.copier.Copy(output.JoinLines(lines)); copyError != nil {
				return fmt.Errorf(copyErrorFormat, copyError)
			}
			return nil
		},
	}
	registerBooleanFlag(treeCommand.Flags(), &copyEnabled, copyFlagName, "", false, copyFlagDescription)
	return treeCommand
}
