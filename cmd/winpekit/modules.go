package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/modules"
)

func newAddModulesCommand(global *globalOptions) *cobra.Command {
	var force bool
	var exclude []string

	cmd := &cobra.Command{
		Use:   "add-modules <path> <module>...",
		Short: "Copy script modules into a mounted tree",
		Long: `Copy each <module> directory into the boot image mounted under the
build tree at <path>. Modules that are not directories or do not have a
module manifest are reported and skipped; the remaining modules are
still installed.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := buildtree.New(args[0])

			installed, err := modules.Install(tree, global.dismClient(), args[1:], modules.Options{
				Overwrite: force,
				Exclude:   exclude,
				DryRun:    global.dryRun,
			})
			for _, dest := range installed {
				fmt.Printf("installed %s\n", dest)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite modules that are already installed")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "glob patterns of module names to skip")
	return cmd
}
