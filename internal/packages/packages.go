// Package packages installs the base optional components into a mounted
// build tree.
package packages

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/config"
	"github.com/winpekit/winpekit/internal/fsutil"
	"github.com/winpekit/winpekit/internal/platform"
)

// language of the companion packages shipped with the deployment kit
const language = "en-us"

// Pair is one optional component: a base cabinet plus its localized
// companion.
type Pair struct {
	Name string
}

// Cab returns the base cabinet path relative to the package source dir.
func (p Pair) Cab() string {
	return p.Name + ".cab"
}

// LanguageCab returns the localized companion path relative to the
// package source dir.
func (p Pair) LanguageCab() string {
	return filepath.Join(language, p.Name+"_"+language+".cab")
}

// BasePairs is the fixed set of optional components installed into every
// tree, in install order. The order only affects progress reporting;
// each install is independent.
var BasePairs = []Pair{
	{Name: "WinPE-WMI"},
	{Name: "WinPE-NetFx"},
	{Name: "WinPE-Scripting"},
	{Name: "WinPE-PowerShell"},
	{Name: "WinPE-StorageWMI"},
	{Name: "WinPE-DismCmdlets"},
	{Name: "WinPE-EnhancedStorage"},
	{Name: "WinPE-WDS-Tools"},
}

// Client is the slice of the image servicing tool this package needs.
// *dism.Client implements it.
type Client interface {
	buildtree.Prober
	ImageArch(imagePath string) (platform.Arch, error)
	AddPackage(mountDir, packagePath string) error
}

// Options control base package installation.
type Options struct {
	DryRun bool
}

// InstallBase installs the fixed component pairs into the tree's mounted
// image, in order. The tree must be valid and mounted. A failing install
// aborts the remaining ones; there is no rollback.
func InstallBase(conf *config.Config, tree *buildtree.Tree, client Client, opts Options) error {
	if err := tree.RequireMounted(client); err != nil {
		return err
	}

	arch, err := tree.Arch(client)
	if err != nil {
		return err
	}

	sourceDir := conf.PackageDir(arch)
	if !fsutil.IsDir(sourceDir) {
		return fmt.Errorf("no package source for %s: %q does not exist", arch, sourceDir)
	}

	total := len(BasePairs)
	for n, pair := range BasePairs {
		logrus.Infof("installing package [%d/%d]: %s", n+1, total, pair.Name)
		for _, cab := range []string{pair.Cab(), pair.LanguageCab()} {
			packagePath := filepath.Join(sourceDir, cab)
			if opts.DryRun {
				logrus.Infof("would add package %q to %q", packagePath, tree.MountDir())
				continue
			}
			if err := client.AddPackage(tree.MountDir(), packagePath); err != nil {
				return err
			}
		}
	}
	return nil
}
