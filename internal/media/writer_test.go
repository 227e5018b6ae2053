package media

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winpekit/winpekit/internal/buildtree"
	"github.com/winpekit/winpekit/internal/dism"
	"github.com/winpekit/winpekit/internal/fsutil"
	"github.com/winpekit/winpekit/internal/testutil"
	"github.com/winpekit/winpekit/internal/winexec"
)

type fakeProbe struct {
	mounted bool
}

func (f *fakeProbe) IsMounted(string) (bool, error) {
	return f.mounted, nil
}

func (f *fakeProbe) ImageInfo(string) ([]dism.ImageInfo, error) {
	return []dism.ImageInfo{{Index: 1}}, nil
}

// fakeManager records the mutating calls and serves volumes from a map.
type fakeManager struct {
	volumes map[string]*Volume
	newRoot string // Path assigned to the volume CreateBootVolume returns
	log     []string
}

func (f *fakeManager) Lookup(target string) (*Volume, error) {
	vol, ok := f.volumes[target]
	if !ok {
		return nil, fmt.Errorf("no volume %q", target)
	}
	return vol, nil
}

func (f *fakeManager) CleanDisk(diskNumber int) error {
	f.log = append(f.log, fmt.Sprintf("clean %d", diskNumber))
	return nil
}

func (f *fakeManager) CreateBootVolume(diskNumber int, label string) (*Volume, error) {
	f.log = append(f.log, fmt.Sprintf("create %d %s", diskNumber, label))
	return &Volume{
		DriveLetter: "E",
		Path:        f.newRoot,
		Label:       label,
		DiskNumber:  diskNumber,
		Removable:   true,
	}, nil
}

func makeWriter(t *testing.T) (*Writer, *fakeManager, *winexec.Fake) {
	t.Helper()
	manager := &fakeManager{
		volumes: map[string]*Volume{
			"E:": {DriveLetter: "E", DiskNumber: 2, Removable: true},
			"D:": {DriveLetter: "D", DiskNumber: 0, Removable: false},
		},
		newRoot: t.TempDir(),
	}
	runner := &winexec.Fake{}
	writer := &Writer{
		Volumes:  manager,
		Runner:   runner,
		Bootsect: "bootsect.exe",
		Oscdimg:  "oscdimg.exe",
		Confirm:  func(string) bool { return true },
	}
	return writer, manager, runner
}

func TestWrite(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, manager, runner := makeWriter(t)

	vol, err := writer.Write(tree, &fakeProbe{}, "E:", Options{Force: true})
	require.NoError(t, err)
	require.NotNil(t, vol)
	assert.Equal(t, "WinPE", vol.Label)

	// clean then create, in that order
	assert.Equal(t, []string{"clean 2", "create 2 WinPE"}, manager.log)

	// the media subtree landed on the new volume
	assert.True(t, fsutil.Exists(filepath.Join(vol.Path, "sources", "boot.wim")))
	assert.True(t, fsutil.Exists(filepath.Join(vol.Path, "bootmgr")))

	// and boot code was stamped last
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "bootsect.exe", runner.Calls[0].Name)
	assert.Equal(t, []string{"/nt60", "E:", "/force", "/mbr"}, runner.Calls[0].Args)
}

func TestWriteNonRemovable(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, manager, runner := makeWriter(t)

	_, err := writer.Write(tree, &fakeProbe{}, "D:", Options{Force: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not removable")

	// the check fires before anything touches the disk
	assert.Empty(t, manager.log)
	assert.Empty(t, runner.Calls)
}

func TestWriteStillMounted(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, manager, _ := makeWriter(t)

	_, err := writer.Write(tree, &fakeProbe{mounted: true}, "E:", Options{Force: true})
	require.Error(t, err)

	var stillMounted *buildtree.StillMountedError
	assert.ErrorAs(t, err, &stillMounted)
	assert.Empty(t, manager.log)
}

func TestWriteConfirmationDeclined(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, _, runner := makeWriter(t)
	writer.Confirm = func(string) bool { return false }

	_, err := writer.Write(tree, &fakeProbe{}, "E:", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted")
	assert.Empty(t, runner.Calls, "declining the prompt must skip the boot-code writer")
}

func TestWriteForceSkipsConfirmation(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, _, runner := makeWriter(t)
	writer.Confirm = func(string) bool {
		t.Fatal("force must not prompt")
		return false
	}

	_, err := writer.Write(tree, &fakeProbe{}, "E:", Options{Force: true})
	require.NoError(t, err)
	assert.Len(t, runner.Calls, 1)
}

func TestWriteDryRun(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, manager, runner := makeWriter(t)

	vol, err := writer.Write(tree, &fakeProbe{}, "E:", Options{DryRun: true})
	require.NoError(t, err)
	assert.Nil(t, vol, "dry run returns no volume")
	assert.Empty(t, manager.log)
	assert.Empty(t, runner.Calls)
}

func TestWriteBootCodeFailureIsFatal(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, _, runner := makeWriter(t)
	runner.Handler = func(winexec.Call) ([]byte, error) {
		return winexec.Failure("bootsect.exe")
	}

	_, err := writer.Write(tree, &fakeProbe{}, "E:", Options{Force: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boot code")
}

func TestWriteISO(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, _, runner := makeWriter(t)
	out := filepath.Join(t.TempDir(), "winpe.iso")

	require.NoError(t, writer.WriteISO(tree, &fakeProbe{}, out, Options{}))
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "oscdimg.exe", runner.Calls[0].Name)

	// no etfsboot.com in the fixture tree, so the image is UEFI-only
	assert.Contains(t, runner.Calls[0].Args, "-bootdata:1#pEF,e,b"+tree.EfisysBin())
	assert.Equal(t, tree.MediaDir(), runner.Calls[0].Args[len(runner.Calls[0].Args)-2])
	assert.Equal(t, out, runner.Calls[0].Args[len(runner.Calls[0].Args)-1])
}

func TestWriteISODualBoot(t *testing.T) {
	tree := testutil.BuildTree(t)
	require.NoError(t, fsutil.CopyFile(tree.EfisysBin(), tree.EtfsbootCom()))
	writer, _, runner := makeWriter(t)

	require.NoError(t, writer.WriteISO(tree, &fakeProbe{}, filepath.Join(t.TempDir(), "winpe.iso"), Options{}))
	require.Len(t, runner.Calls, 1)
	assert.Contains(t, runner.Calls[0].Args,
		fmt.Sprintf("-bootdata:2#p0,e,b%s#pEF,e,b%s", tree.EtfsbootCom(), tree.EfisysBin()))
}

func TestWriteISOStillMounted(t *testing.T) {
	tree := testutil.BuildTree(t)
	writer, _, runner := makeWriter(t)

	err := writer.WriteISO(tree, &fakeProbe{mounted: true}, filepath.Join(t.TempDir(), "winpe.iso"), Options{})
	require.Error(t, err)
	assert.Empty(t, runner.Calls)
}
