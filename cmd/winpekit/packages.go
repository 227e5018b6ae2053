package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/packages"
)

func newAddPackagesCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-packages <path>",
		Short: "Install the base optional components into a mounted tree",
		Long: `Install the fixed set of base optional components, with their
localized companions, into the boot image mounted under the build tree
at <path>. The tree must be valid and mounted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := global.loadConfig()
			if err != nil {
				return err
			}

			tree := buildtree.New(args[0])
			err = packages.InstallBase(conf, tree, global.dismClient(), packages.Options{
				DryRun: global.dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Printf("installed %d package pairs into %s\n", len(packages.BasePairs), tree.MountDir())
			return nil
		},
	}
}
