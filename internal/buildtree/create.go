package buildtree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/winpekit/winpekit/internal/config"
	"github.com/winpekit/winpekit/internal/fsutil"
	"github.com/winpekit/winpekit/internal/platform"
)

// Mounter mounts a boot image onto a directory. *dism.Client implements
// it.
type Mounter interface {
	Mount(imagePath string, index int, mountDir string) error
}

// CreateOptions control build-tree creation.
type CreateOptions struct {
	// Mount the fresh tree's boot image after copying.
	Mount bool
	// DryRun checks all preconditions and reports what would happen
	// without touching the filesystem.
	DryRun bool
}

// Create builds a new tree at dest from the deployment kit's assets for
// arch. All preconditions fail fast with the offending path; a failure
// partway through copying leaves the partial tree on disk for the caller
// to clean up.
func Create(conf *config.Config, arch platform.Arch, dest string, mounter Mounter, opts CreateOptions) (*Tree, error) {
	if arch == platform.ArchUnknown {
		return nil, fmt.Errorf("cannot create a build tree for an unknown architecture")
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve destination path: %v", err)
	}
	if fsutil.Exists(dest) {
		return nil, fmt.Errorf("destination %q already exists", dest)
	}

	srcMedia := conf.MediaDir(arch)
	if !fsutil.IsDir(srcMedia) {
		return nil, fmt.Errorf("no boot-media assets for %s: %q does not exist", arch, srcMedia)
	}
	srcImage := conf.SourceImage(arch)
	if !fsutil.Exists(srcImage) {
		return nil, fmt.Errorf("no source boot image for %s: %q does not exist", arch, srcImage)
	}
	efisys := conf.EfisysBin()
	if !fsutil.Exists(efisys) {
		return nil, fmt.Errorf("no firmware boot-sector file: %q does not exist", efisys)
	}

	tree := &Tree{Root: dest}

	if opts.DryRun {
		logrus.Infof("would create build tree at %q from %q", dest, conf.ArchDir(arch))
		if opts.Mount {
			logrus.Infof("would mount %q at %q", tree.BootImage(), tree.MountDir())
		}
		return tree, nil
	}

	logrus.Infof("creating build tree at %q", dest)
	for _, dir := range []string{dest, tree.FwFilesDir(), tree.MediaDir(), tree.MountDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create %q: %v", dir, err)
		}
	}

	logrus.Infof("copying boot media from %q", srcMedia)
	if err := fsutil.CopyTree(srcMedia, tree.MediaDir()); err != nil {
		return nil, err
	}

	logrus.Infof("copying boot image from %q", srcImage)
	if err := os.MkdirAll(filepath.Dir(tree.BootImage()), 0755); err != nil {
		return nil, fmt.Errorf("cannot create %q: %v", filepath.Dir(tree.BootImage()), err)
	}
	if err := fsutil.CopyFile(srcImage, tree.BootImage()); err != nil {
		return nil, err
	}

	if err := fsutil.CopyFile(efisys, tree.EfisysBin()); err != nil {
		return nil, err
	}
	// legacy BIOS boot sector is not shipped for every architecture
	if etfsboot := conf.EtfsbootCom(); fsutil.Exists(etfsboot) {
		if err := fsutil.CopyFile(etfsboot, tree.EtfsbootCom()); err != nil {
			return nil, err
		}
	}

	if opts.Mount {
		logrus.Infof("mounting %q at %q", tree.BootImage(), tree.MountDir())
		if err := mounter.Mount(tree.BootImage(), 1, tree.MountDir()); err != nil {
			return nil, err
		}
	}

	return tree, nil
}
