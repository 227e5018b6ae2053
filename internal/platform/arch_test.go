package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArch(t *testing.T) {
	cases := map[string]Arch{
		"amd64": ArchAmd64,
		"x86":   ArchX86,
		"arm":   ArchArm,
		"arm64": ArchArm64,
	}
	for name, want := range cases {
		arch, err := ParseArch(name)
		require.NoError(t, err)
		assert.Equal(t, want, arch)
		assert.Equal(t, name, arch.String())
	}

	for _, bad := range []string{"", "AMD64", "x86_64", "aarch64", "unknown"} {
		_, err := ParseArch(bad)
		assert.Error(t, err, "ParseArch(%q)", bad)
	}
}

func TestArchFromImageName(t *testing.T) {
	assert.Equal(t, ArchAmd64, ArchFromImageName("Microsoft Windows PE (amd64)"))
	assert.Equal(t, ArchX86, ArchFromImageName("Microsoft Windows PE (x86)"))

	// names not stamped by the deployment kit are unknown, including
	// near misses
	assert.Equal(t, ArchUnknown, ArchFromImageName("Microsoft Windows PE (arm64)"))
	assert.Equal(t, ArchUnknown, ArchFromImageName("microsoft windows pe (amd64)"))
	assert.Equal(t, ArchUnknown, ArchFromImageName(""))
}
