package main

import (
	"github.com/spf13/cobra"

	"github.com/open-sspm/oauth-risk/internal/logging"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oauth-risk",
		Short:         "oauth-risk scores third-party OAuth apps and flags suspicious behavior.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandExecutionContext{
				CommandPath:       cmd.CommandPath(),
				UsesStructuredLog: commandUsesStructuredLogging(cmd),
			}
			setCommandExecutionContext(ctx)
			if !ctx.UsesStructuredLog {
				return nil
			}
			if _, err := logging.BootstrapFromEnv(logging.BootstrapOptions{
				Command: ctx.CommandPath,
				Writer:  cmd.ErrOrStderr(),
			}); err != nil {
				return invalidInput(err)
			}
			return nil
		},
	}
	root.AddCommand(newAssessCmd(), newBatchCmd(), newScopesCmd(), newMigrateCmd())
	return root
}

func Execute() error {
	return rootCmd.Execute()
}
