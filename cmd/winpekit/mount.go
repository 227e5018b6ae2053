package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/winpekit/winpekit/internal/buildtree"
)

func newMountCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mount <path>",
		Short: "Mount a build tree's boot image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := buildtree.New(args[0])
			client := global.dismClient()

			if err := tree.RequireUnmounted(client); err != nil {
				return err
			}

			if global.dryRun {
				logrus.Infof("would mount %q at %q", tree.BootImage(), tree.MountDir())
				return nil
			}
			if err := client.Mount(tree.BootImage(), 1, tree.MountDir()); err != nil {
				return err
			}
			fmt.Printf("mounted %s at %s\n", tree.BootImage(), tree.MountDir())
			return nil
		},
	}
}

func newUnmountCommand(global *globalOptions) *cobra.Command {
	var discard bool

	cmd := &cobra.Command{
		Use:   "unmount <path>",
		Short: "Unmount a build tree's boot image, committing its changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := buildtree.New(args[0])
			client := global.dismClient()

			if err := tree.RequireMounted(client); err != nil {
				return err
			}

			if global.dryRun {
				logrus.Infof("would unmount %q (discard=%v)", tree.MountDir(), discard)
				return nil
			}
			if err := client.Unmount(tree.MountDir(), !discard); err != nil {
				return err
			}
			fmt.Printf("unmounted %s\n", tree.MountDir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&discard, "discard", false, "discard changes instead of committing them")
	return cmd
}
