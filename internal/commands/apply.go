package commands

import (
	"fmt"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
	"github.com/ryanmoran/gitferry/internal/migrate"
	"github.com/spf13/cobra"
)

func newApplyCommand(configPath *string) *cobra.Command {
	var initMissing bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Replay the latest archive onto destination repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := internal.LoadConfig(*configPath)
			if err != nil {
				return err
			}

			git, err := gitcmd.NewCLI()
			if err != nil {
				return err
			}

			cleanup := internal.NewCleanupManager()
			defer cleanup.Execute()

			applier := migrate.Applier{
				Git:     git,
				Config:  config,
				Writer:  internal.NewStandardWriter(),
				Cleanup: cleanup,
				Init:    initMissing,
			}

			if _, err := applier.Run(cmd.Context()); err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&initMissing, "init", false, "clone missing destination repositories from their bundles")

	return cmd
}
