package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs the gitferry command tree with the given context. The
// context is cancelled on SIGINT/SIGTERM so in-flight git invocations
// are interrupted and registered cleanups still run.
func Execute(ctx context.Context) error {
	return NewRoot().ExecuteContext(ctx)
}

// NewRoot builds the root command and its subcommands.
func NewRoot() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "gitferry",
		Short: "Move git history and container images across an air gap",
		Long: `gitferry packages incremental git history (bundles plus large objects)
and container images into transportable archives on a connected network,
and replays them onto destination repositories and registries on a
disconnected one. The archive file is the only interface between the two
sides.`,
		SilenceUsage: true,
	}

	addConfigFlag(root.PersistentFlags(), &configPath)

	root.AddCommand(
		newCollectCommand(&configPath),
		newApplyCommand(&configPath),
		newImagesCommand(&configPath),
		newVersionCommand(),
	)

	return root
}

func addConfigFlag(flags *pflag.FlagSet, configPath *string) {
	flags.StringVar(configPath, "config", "", "path to the env-file configuration (default \"gitferry.env\")")
}
