package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Helcaraxan/pinbump/internal/config"
	"github.com/Helcaraxan/pinbump/internal/driver"
)

func main() {
	opts := driver.NewCommonOpts()

	updateCmd := driver.Update(opts)

	rootCmd := &cobra.Command{
		Use: config.DriverName,
		Long: `Bump the version pins of development tools to their latest version.

Rewrites lines of the form TOOL="X.Y.Z" in the versions file for a fixed, ordered list of tools.
Running without any subcommand is the same as running 'update'.

Configuration is read from 'pinbump_conf.yaml' in the user and system configuration directories,
followed by '.pinbump.yaml' in the current working directory. Later files take precedence.

Logging verbosity can be raised for all or for specific domains with '--verbose' or
'--verbose=<domain>,...'. Known domains are: init, cli, update, lock, fs, gcs, git, github, https
and s3.
`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.Parse()
		},
		RunE: updateCmd.RunE,
	}

	registerRootFlags(rootCmd, opts)

	rootCmd.AddCommand(
		updateCmd,
		driver.Show(opts),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		cancel()
		os.Exit(1)
	}
}

func registerRootFlags(cmd *cobra.Command, opts *driver.CommonOpts) {
	cmd.PersistentFlags().StringSliceVarP(
		&opts.Verbose,
		"verbose",
		"v",
		nil,
		"Verbose output. See 'pinbump --help' for more information.",
	)
	cmd.Flag("verbose").NoOptDefVal = "all"
}
