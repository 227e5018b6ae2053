// Package dism wraps the external image servicing tool: mounting and
// unmounting boot images, querying mounted-image state and installing
// packages into a mounted image.
package dism

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/winpekit/winpekit/internal/platform"
	"github.com/winpekit/winpekit/internal/winexec"
)

const defaultExe = "dism"

// ErrUnrecognizedImage reports a file the servicing tool does not accept
// as a boot image. Callers use it to tell a bad image apart from not
// being able to run the tool.
var ErrUnrecognizedImage = errors.New("not a recognizable boot image")

// Client invokes the image servicing tool through a Runner.
type Client struct {
	Exe    string
	Runner winexec.Runner
}

func NewClient(runner winexec.Runner) *Client {
	return &Client{Exe: defaultExe, Runner: runner}
}

// MountedImage describes one entry of the tool's mounted-image table.
type MountedImage struct {
	MountDir  string
	ImagePath string
	Index     int
	Status    string
}

// ImageInfo describes one image inside an image file.
type ImageInfo struct {
	Index       int
	Name        string
	Description string
}

// MountedImages returns all images the servicing tool currently has
// mounted, for any tree.
func (c *Client) MountedImages() ([]MountedImage, error) {
	output, err := c.Runner.Run(c.Exe, []string{"/English", "/Get-MountedImageInfo"}, "")
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate mounted images: %v", err)
	}
	return parseMountedImages(output), nil
}

// IsMounted reports whether the image file at imagePath is currently
// mounted, matching by absolute path.
func (c *Client) IsMounted(imagePath string) (bool, error) {
	mounted, err := c.MountedImages()
	if err != nil {
		return false, err
	}
	for _, m := range mounted {
		if samePath(m.ImagePath, imagePath) {
			return true, nil
		}
	}
	return false, nil
}

// ImageInfo lists the images contained in the image file at imagePath.
// A file the tool rejects or that yields no images fails with
// ErrUnrecognizedImage; a tool that cannot be run fails plainly.
func (c *Client) ImageInfo(imagePath string) ([]ImageInfo, error) {
	output, err := c.Runner.Run(c.Exe, []string{"/English", "/Get-ImageInfo", "/ImageFile:" + imagePath}, "")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%q is %w", imagePath, ErrUnrecognizedImage)
		}
		return nil, fmt.Errorf("cannot read image info from %q: %v", imagePath, err)
	}
	infos := parseImageInfo(output)
	if len(infos) == 0 {
		return nil, fmt.Errorf("%q is %w", imagePath, ErrUnrecognizedImage)
	}
	return infos, nil
}

// ImageArch derives the architecture of the boot image at imagePath from
// the name of its first image.
func (c *Client) ImageArch(imagePath string) (platform.Arch, error) {
	infos, err := c.ImageInfo(imagePath)
	if err != nil {
		return platform.ArchUnknown, err
	}
	for _, info := range infos {
		if info.Index == 1 {
			return platform.ArchFromImageName(info.Name), nil
		}
	}
	return platform.ArchUnknown, fmt.Errorf("%q has no image at index 1", imagePath)
}

// Mount exposes the image at imagePath, index, at mountDir.
func (c *Client) Mount(imagePath string, index int, mountDir string) error {
	args := []string{
		"/English",
		"/Mount-Image",
		"/ImageFile:" + imagePath,
		fmt.Sprintf("/Index:%d", index),
		"/MountDir:" + mountDir,
	}
	if _, err := c.Runner.Run(c.Exe, args, ""); err != nil {
		return fmt.Errorf("cannot mount %q at %q: %v", imagePath, mountDir, err)
	}
	return nil
}

// Unmount detaches the image mounted at mountDir, committing or
// discarding its changes.
func (c *Client) Unmount(mountDir string, commit bool) error {
	disposition := "/Discard"
	if commit {
		disposition = "/Commit"
	}
	args := []string{"/English", "/Unmount-Image", "/MountDir:" + mountDir, disposition}
	if _, err := c.Runner.Run(c.Exe, args, ""); err != nil {
		return fmt.Errorf("cannot unmount %q: %v", mountDir, err)
	}
	return nil
}

// AddPackage installs the package artifact at packagePath into the image
// mounted at mountDir.
func (c *Client) AddPackage(mountDir, packagePath string) error {
	args := []string{"/English", "/Image:" + mountDir, "/Add-Package", "/PackagePath:" + packagePath}
	if _, err := c.Runner.Run(c.Exe, args, ""); err != nil {
		return fmt.Errorf("cannot add package %q: %v", packagePath, err)
	}
	return nil
}

// MountCommand renders the servicing-tool command line that would mount
// the given image, for inclusion in actionable error messages.
func MountCommand(imagePath, mountDir string) string {
	return fmt.Sprintf(`dism /Mount-Image /ImageFile:"%s" /Index:1 /MountDir:"%s"`, imagePath, mountDir)
}

// UnmountCommand renders the command line that would commit-unmount the
// image mounted at mountDir.
func UnmountCommand(mountDir string) string {
	return fmt.Sprintf(`dism /Unmount-Image /MountDir:"%s" /Commit`, mountDir)
}

// samePath compares two paths the way the servicing tool reports them:
// cleaned and case-insensitively.
func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}
