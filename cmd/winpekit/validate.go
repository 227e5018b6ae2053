package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winpekit/winpekit/internal/buildtree"
)

func newValidateCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check a build tree's structure and mount state",
		Long: `Check that the directory at <path> has the required build-tree
skeleton and a recognizable boot image, and report whether the image is
currently mounted. The path may point at the tree root or its mount
subdirectory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := buildtree.New(args[0])

			status, err := tree.Validate(global.dismClient())
			if err != nil {
				return err
			}

			state := "not mounted"
			if status.Mounted {
				state = "mounted"
			}
			fmt.Printf("%s is a valid build tree, boot image %s\n", tree.Root, state)
			return nil
		},
	}
}
