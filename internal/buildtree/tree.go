// Package buildtree defines the working-directory skeleton used to
// customize boot images and its validation rules. A tree is created
// once, its mounted contents are owned by the image servicing tool, and
// its mounted state is always re-derived, never persisted.
package buildtree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/winpekit/winpekit/internal/dism"
	"github.com/winpekit/winpekit/internal/fsutil"
	"github.com/winpekit/winpekit/internal/platform"
)

const (
	fwFilesDirName = "fwfiles"
	mediaDirName   = "media"
	mountDirName   = "mount"
)

// requiredEntries is the fixed skeleton a valid build tree must have,
// relative to its root. Presence of these entries is necessary and
// sufficient for structural validity.
var requiredEntries = []string{
	fwFilesDirName,
	mediaDirName,
	mountDirName,
	filepath.Join(fwFilesDirName, "efisys.bin"),
	filepath.Join(mediaDirName, "bootmgr"),
	filepath.Join(mediaDirName, "bootmgr.efi"),
	filepath.Join(mediaDirName, "sources", "boot.wim"),
	filepath.Join(mediaDirName, "Boot", "BCD"),
}

// Prober answers questions about boot-image state by querying the image
// servicing tool. *dism.Client implements it.
type Prober interface {
	IsMounted(imagePath string) (bool, error)
	ImageInfo(imagePath string) ([]dism.ImageInfo, error)
}

// Tree is a build tree rooted at a directory conforming to the skeleton.
type Tree struct {
	Root string
}

// New returns the Tree for path. A path pointing at the mount
// subdirectory is normalized up to the tree root first; a root
// directory that merely happens to be named "mount" is recognized by
// its media subdirectory and kept as-is.
func New(path string) *Tree {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.Clean(abs)
	if strings.EqualFold(filepath.Base(abs), mountDirName) && !fsutil.IsDir(filepath.Join(abs, mediaDirName)) {
		abs = filepath.Dir(abs)
	}
	return &Tree{Root: abs}
}

func (t *Tree) FwFilesDir() string {
	return filepath.Join(t.Root, fwFilesDirName)
}

func (t *Tree) MediaDir() string {
	return filepath.Join(t.Root, mediaDirName)
}

func (t *Tree) MountDir() string {
	return filepath.Join(t.Root, mountDirName)
}

// BootImage returns the tree's boot image file.
func (t *Tree) BootImage() string {
	return filepath.Join(t.MediaDir(), "sources", "boot.wim")
}

// EtfsbootCom returns the legacy BIOS boot-sector file. It is optional;
// trees built for architectures without legacy boot do not have it.
func (t *Tree) EtfsbootCom() string {
	return filepath.Join(t.FwFilesDir(), "etfsboot.com")
}

func (t *Tree) EfisysBin() string {
	return filepath.Join(t.FwFilesDir(), "efisys.bin")
}

// MissingEntries returns the skeleton entries absent from the tree, in
// skeleton order. An empty result means the tree is structurally valid.
func (t *Tree) MissingEntries() []string {
	if !fsutil.IsDir(t.Root) {
		return append([]string{}, requiredEntries...)
	}
	var missing []string
	for _, entry := range requiredEntries {
		if !fsutil.Exists(filepath.Join(t.Root, entry)) {
			missing = append(missing, entry)
		}
	}
	return missing
}

// Status is the result of tree validation.
type Status struct {
	Valid   bool
	Mounted bool
}

// Status validates the tree: structural validity per the skeleton, a boot
// image the servicing tool recognizes, and the derived mounted state.
// It never mutates anything. An unrecognizable boot image makes the tree
// invalid rather than failing; only probe transport errors are returned.
func (t *Tree) Status(probe Prober) (Status, error) {
	if len(t.MissingEntries()) > 0 {
		return Status{}, nil
	}

	if _, err := probe.ImageInfo(t.BootImage()); err != nil {
		if errors.Is(err, dism.ErrUnrecognizedImage) {
			return Status{}, nil
		}
		return Status{}, err
	}

	mounted, err := probe.IsMounted(t.BootImage())
	if err != nil {
		return Status{}, err
	}
	return Status{Valid: true, Mounted: mounted}, nil
}

// Validate is Status plus the descriptive error for an invalid tree,
// naming the missing skeleton entries or the unrecognizable boot image.
func (t *Tree) Validate(probe Prober) (Status, error) {
	status, err := t.Status(probe)
	if err != nil {
		return status, err
	}
	if !status.Valid {
		return status, t.invalidError()
	}
	return status, nil
}

// Arch derives the tree's architecture from its mounted boot image.
func (t *Tree) Arch(probe interface {
	ImageArch(imagePath string) (platform.Arch, error)
}) (platform.Arch, error) {
	arch, err := probe.ImageArch(t.BootImage())
	if err != nil {
		return platform.ArchUnknown, err
	}
	if arch == platform.ArchUnknown {
		return platform.ArchUnknown, fmt.Errorf("cannot determine the architecture of %q: unrecognized image name", t.BootImage())
	}
	return arch, nil
}

// RequireMounted fails unless the tree is valid and its boot image is
// mounted. The not-mounted error carries the exact command to run.
func (t *Tree) RequireMounted(probe Prober) error {
	status, err := t.Status(probe)
	if err != nil {
		return err
	}
	if !status.Valid {
		return t.invalidError()
	}
	if !status.Mounted {
		return &NotMountedError{Tree: t}
	}
	return nil
}

// RequireUnmounted fails unless the tree is valid and its boot image is
// not mounted.
func (t *Tree) RequireUnmounted(probe Prober) error {
	status, err := t.Status(probe)
	if err != nil {
		return err
	}
	if !status.Valid {
		return t.invalidError()
	}
	if status.Mounted {
		return &StillMountedError{Tree: t}
	}
	return nil
}

func (t *Tree) invalidError() error {
	if missing := t.MissingEntries(); len(missing) > 0 {
		return fmt.Errorf("%q is not a valid build tree: missing %s", t.Root, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%q is not a valid build tree: %q is not a recognizable boot image", t.Root, t.BootImage())
}

// NotMountedError reports an operation that needs the boot image mounted.
type NotMountedError struct {
	Tree *Tree
}

func (e *NotMountedError) Error() string {
	return fmt.Sprintf("the build tree %q is not mounted; mount it with: %s",
		e.Tree.Root, dism.MountCommand(e.Tree.BootImage(), e.Tree.MountDir()))
}

// StillMountedError reports an operation that needs the boot image
// unmounted first.
type StillMountedError struct {
	Tree *Tree
}

func (e *StillMountedError) Error() string {
	return fmt.Sprintf("the build tree %q is still mounted; unmount it with: %s",
		e.Tree.Root, dism.UnmountCommand(e.Tree.MountDir()))
}
