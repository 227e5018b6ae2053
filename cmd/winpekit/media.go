package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/media"
	"github.com/winpekit/winpekit/internal/winexec"
)

func newWriteMediaCommand(global *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "write-media <path> <volume>",
		Short: "Write a build tree to removable media",
		Long: `Deploy the build tree at <path> onto the removable volume given by
its drive letter (e.g. "E:") or unique volume identifier
(\\?\Volume{...}\). The target disk is wiped, repartitioned and
formatted; the tree's boot image must be unmounted first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := global.loadConfig()
			if err != nil {
				return err
			}

			tree := buildtree.New(args[0])
			writer := &media.Writer{
				Volumes:  media.NewDiskpartManager(winexec.Exec{}),
				Runner:   winexec.Exec{},
				Bootsect: conf.BootsectExe(),
				Oscdimg:  conf.OscdimgExe(),
			}

			vol, err := writer.Write(tree, global.dismClient(), args[1], media.Options{
				Force:  force,
				DryRun: global.dryRun,
			})
			if err != nil {
				return err
			}
			if vol != nil {
				fmt.Printf("wrote %s to %s: (%s, disk %d)\n", tree.Root, vol.DriveLetter, vol.Label, vol.DiskNumber)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation before writing boot code")
	return cmd
}

func newWriteISOCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "write-iso <path> <output.iso>",
		Short: "Master a build tree into a bootable ISO image",
		Long: `Master the build tree at <path> into a bootable ISO at <output.iso>
using the imaging tools. The tree's boot image must be unmounted first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := global.loadConfig()
			if err != nil {
				return err
			}

			tree := buildtree.New(args[0])
			writer := &media.Writer{
				Runner:  winexec.Exec{},
				Oscdimg: conf.OscdimgExe(),
			}

			if err := writer.WriteISO(tree, global.dismClient(), args[1], media.Options{DryRun: global.dryRun}); err != nil {
				return err
			}
			if !global.dryRun {
				fmt.Printf("wrote %s\n", args[1])
			}
			return nil
		},
	}
}
