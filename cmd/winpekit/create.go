package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/platform"
)

func newCreateCommand(global *globalOptions) *cobra.Command {
	var mount bool

	cmd := &cobra.Command{
		Use:   "create <arch> <dest>",
		Short: "Create a new build tree from the deployment kit's assets",
		Long: `Create a new build tree at <dest> for the given architecture
(amd64, x86, arm or arm64), copying the boot media, the boot image and
the firmware boot-sector files from the deployment kit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, err := platform.ParseArch(args[0])
			if err != nil {
				return err
			}

			conf, err := global.loadConfig()
			if err != nil {
				return err
			}

			tree, err := buildtree.Create(conf, arch, args[1], global.dismClient(), buildtree.CreateOptions{
				Mount:  mount,
				DryRun: global.dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Printf("created build tree at %s\n", tree.Root)
			if mount {
				fmt.Printf("boot image mounted at %s\n", tree.MountDir())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mount, "mount", false, "mount the boot image after creating the tree")
	return cmd
}
