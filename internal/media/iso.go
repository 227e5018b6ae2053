package media

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/fsutil"
)

// WriteISO masters the tree's media subtree into a bootable ISO at
// outPath. When the tree carries the legacy BIOS boot sector, the image
// gets a dual BIOS/UEFI boot catalog; otherwise UEFI only.
func (w *Writer) WriteISO(tree *buildtree.Tree, probe buildtree.Prober, outPath string, opts Options) error {
	if err := tree.RequireUnmounted(probe); err != nil {
		return err
	}

	bootdata := fmt.Sprintf("-bootdata:1#pEF,e,b%s", tree.EfisysBin())
	if fsutil.Exists(tree.EtfsbootCom()) {
		bootdata = fmt.Sprintf("-bootdata:2#p0,e,b%s#pEF,e,b%s", tree.EtfsbootCom(), tree.EfisysBin())
	}

	args := []string{"-m", "-o", "-u2", "-udfver102", bootdata, tree.MediaDir(), outPath}

	if opts.DryRun {
		logrus.Infof("would run %s with %v", w.Oscdimg, args)
		return nil
	}

	logrus.Infof("mastering %q into %q", tree.MediaDir(), outPath)
	if _, err := w.Runner.Run(w.Oscdimg, args, ""); err != nil {
		return fmt.Errorf("cannot master the ISO image: %v", err)
	}
	return nil
}
