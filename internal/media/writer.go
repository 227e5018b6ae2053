package media

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/fsutil"
	"github.com/winpekit/winpekit/internal/winexec"
)

// volume label stamped onto freshly written media
const bootVolumeLabel = "WinPE"

// Writer sequences the deployment of a build tree onto its final medium.
type Writer struct {
	Volumes  Manager
	Runner   winexec.Runner
	Bootsect string
	Oscdimg  string
	// Confirm asks the user before the boot-code step; nil prompts on
	// the terminal.
	Confirm func(prompt string) bool
}

// Options control media writing.
type Options struct {
	// Force skips the interactive confirmation before writing boot code.
	Force bool
	// DryRun validates and reports every step without mutating the disk.
	DryRun bool
}

// Write deploys the tree onto the removable volume identified by target:
// clean the disk, create the boot partition, copy the media subtree, and
// stamp legacy boot code. Steps are sequential and not resumable; a
// failure aborts the rest and leaves the medium as-is. The returned
// volume is nil in dry-run mode.
func (w *Writer) Write(tree *buildtree.Tree, probe buildtree.Prober, target string, opts Options) (*Volume, error) {
	vol, err := w.Volumes.Lookup(target)
	if err != nil {
		return nil, err
	}
	if !vol.Removable {
		return nil, fmt.Errorf("volume %q (disk %d) is not removable media, refusing to overwrite it", target, vol.DiskNumber)
	}

	if err := tree.RequireUnmounted(probe); err != nil {
		return nil, err
	}

	logrus.Infof("step [1/4]: cleaning disk %d", vol.DiskNumber)
	if opts.DryRun {
		logrus.Infof("would remove all partitions and data from disk %d", vol.DiskNumber)
	} else if err := w.Volumes.CleanDisk(vol.DiskNumber); err != nil {
		return nil, err
	}

	logrus.Infof("step [2/4]: creating the %s boot partition on disk %d", bootVolumeLabel, vol.DiskNumber)
	if opts.DryRun {
		logrus.Infof("would create a full-size active FAT32 partition labeled %q", bootVolumeLabel)
	} else {
		vol, err = w.Volumes.CreateBootVolume(vol.DiskNumber, bootVolumeLabel)
		if err != nil {
			return nil, err
		}
	}

	logrus.Infof("step [3/4]: copying boot media from %q", tree.MediaDir())
	if opts.DryRun {
		logrus.Infof("would copy %q to %q", tree.MediaDir(), vol.Path)
	} else if err := fsutil.CopyTree(tree.MediaDir(), vol.Path); err != nil {
		return nil, err
	}

	logrus.Infof("step [4/4]: writing boot code to %s:", vol.DriveLetter)
	if opts.DryRun {
		logrus.Infof("would run %s /nt60 %s: /force /mbr", w.Bootsect, vol.DriveLetter)
		return nil, nil
	}
	if !opts.Force {
		prompt := fmt.Sprintf("About to write boot code to %s:. Continue? [y/N] ", vol.DriveLetter)
		if !w.confirm(prompt) {
			return nil, fmt.Errorf("aborted by user")
		}
	}
	args := []string{"/nt60", vol.DriveLetter + ":", "/force", "/mbr"}
	if _, err := w.Runner.Run(w.Bootsect, args, ""); err != nil {
		return nil, fmt.Errorf("cannot write boot code to %s:: %v", vol.DriveLetter, err)
	}

	return vol, nil
}

func (w *Writer) confirm(prompt string) bool {
	if w.Confirm != nil {
		return w.Confirm(prompt)
	}
	fmt.Print(prompt)
	reply, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	reply = strings.ToLower(strings.TrimSpace(reply))
	return reply == "y" || reply == "yes"
}
