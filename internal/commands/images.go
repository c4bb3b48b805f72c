package commands

import (
	"fmt"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/images"
	"github.com/ryanmoran/gitferry/internal/migrate"
	"github.com/spf13/cobra"
)

func newImagesCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Ferry container images across the air gap",
	}

	cmd.AddCommand(
		newImagesCollectCommand(configPath),
		newImagesApplyCommand(configPath),
	)

	return cmd
}

func newImagesCollectCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Save manifest images to tarballs beside the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, cleanup, err := newImageRun(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := run.Collect(cmd.Context()); err != nil {
				return fmt.Errorf("images collect failed: %w", err)
			}
			return nil
		},
	}
}

func newImagesApplyCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Load saved images and push them to the destination registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, cleanup, err := newImageRun(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := run.Apply(cmd.Context()); err != nil {
				return fmt.Errorf("images apply failed: %w", err)
			}
			return nil
		},
	}
}

func newImageRun(configPath string) (migrate.ImageRun, func(), error) {
	config, err := internal.LoadConfig(configPath)
	if err != nil {
		return migrate.ImageRun{}, nil, err
	}

	writer := internal.NewStandardWriter()

	ferry, err := images.NewDefaultFerry(writer)
	if err != nil {
		return migrate.ImageRun{}, nil, err
	}

	run := migrate.ImageRun{
		Ferry:  ferry,
		Config: config,
		Writer: writer,
	}

	return run, ferry.Close, nil
}
