package commands

import (
	"fmt"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
	"github.com/ryanmoran/gitferry/internal/migrate"
	"github.com/spf13/cobra"
)

func newCollectCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Bundle repository history and package it for transfer",
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

			collector := migrate.Collector{
				Git:     git,
				Config:  config,
				Writer:  internal.NewStandardWriter(),
				Cleanup: cleanup,
			}

			if _, err := collector.Run(cmd.Context()); err != nil {
				return fmt.Errorf("collect failed: %w", err)
			}
			return nil
		},
	}
}
