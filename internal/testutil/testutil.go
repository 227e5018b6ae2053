// Package testutil builds the fixtures shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/winpekit/winpekit/internal/buildtree"
)

// BuildTree lays out a structurally valid build tree under a temp dir
// and returns it.
func BuildTree(t *testing.T) *buildtree.Tree {
	t.Helper()
	root := filepath.Join(t.TempDir(), "winpe")
	for _, dir := range []string{"fwfiles", "mount", filepath.Join("media", "sources"), filepath.Join("media", "Boot")} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	for _, file := range []string{
		filepath.Join("fwfiles", "efisys.bin"),
		filepath.Join("media", "bootmgr"),
		filepath.Join("media", "bootmgr.efi"),
		filepath.Join("media", "sources", "boot.wim"),
		filepath.Join("media", "Boot", "BCD"),
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, file), []byte("x"), 0644))
	}
	return buildtree.New(root)
}
