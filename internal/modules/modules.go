// Package modules copies installable script modules into a mounted build
// tree. Injection is per-item best-effort: a bad module is reported and
// skipped without aborting its siblings.
package modules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/fsutil"
)

// destination of injected modules, relative to the mount directory
var moduleDestDir = filepath.Join("Program Files", "WindowsPowerShell", "Modules")

// Options control module injection.
type Options struct {
	// Overwrite replaces an already-injected module of the same name.
	Overwrite bool
	// Exclude holds glob patterns matched against module names; matching
	// modules are skipped silently.
	Exclude []string
	// DryRun reports what would be copied without copying.
	DryRun bool
}

// Install copies each module directory in paths into the tree's mounted
// image. It returns the destination directories created plus the joined
// per-item errors; an item error never stops the remaining items. Only
// the mounted-tree precondition aborts the whole batch.
func Install(tree *buildtree.Tree, probe buildtree.Prober, paths []string, opts Options) ([]string, error) {
	if err := tree.RequireMounted(probe); err != nil {
		return nil, err
	}

	excludes, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var installed []string
	var itemErrs []error
	for _, path := range paths {
		dest, err := installOne(tree, path, excludes, opts)
		if err != nil {
			logrus.Errorf("skipping module %q: %v", path, err)
			itemErrs = append(itemErrs, err)
			continue
		}
		if dest != "" {
			installed = append(installed, dest)
		}
	}
	return installed, errors.Join(itemErrs...)
}

// installOne validates and copies a single module. An empty destination
// with a nil error means the module was excluded.
func installOne(tree *buildtree.Tree, path string, excludes []glob.Glob, opts Options) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %q: %v", path, err)
	}

	if !fsutil.IsDir(abs) {
		return "", fmt.Errorf("%q is not a directory", abs)
	}

	name := filepath.Base(abs)
	for _, exclude := range excludes {
		if exclude.Match(name) {
			logrus.Debugf("module %q matches an exclude pattern, skipping", name)
			return "", nil
		}
	}

	if !looksLikeModule(abs) {
		return "", fmt.Errorf("%q does not look like an installable module: no %s.psd1 or %s.psm1 manifest", abs, name, name)
	}

	dest := filepath.Join(tree.MountDir(), moduleDestDir, name)
	if fsutil.Exists(dest) {
		if !opts.Overwrite {
			return "", fmt.Errorf("module %q is already installed at %q, use overwrite to replace it", name, dest)
		}
		if !opts.DryRun {
			if err := os.RemoveAll(dest); err != nil {
				return "", fmt.Errorf("cannot replace %q: %v", dest, err)
			}
		}
	}

	if opts.DryRun {
		logrus.Infof("would install module %q to %q", name, dest)
		return dest, nil
	}

	logrus.Infof("installing module %q to %q", name, dest)
	if err := fsutil.CopyTree(abs, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// looksLikeModule checks the directory for a manifest or script file
// named after it, the shape every installable module has.
func looksLikeModule(dir string) bool {
	name := filepath.Base(dir)
	return fsutil.Exists(filepath.Join(dir, name+".psd1")) ||
		fsutil.Exists(filepath.Join(dir, name+".psm1"))
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	var excludes []glob.Glob
	for _, pattern := range patterns {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %v", pattern, err)
		}
		excludes = append(excludes, compiled)
	}
	return excludes, nil
}
