package platform

import (
	"fmt"
)

// Arch is a WinPE target architecture. It selects which source asset
// subtree and optional component set a build tree is assembled from.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchAmd64
	ArchX86
	ArchArm
	ArchArm64
)

func archNames() []string {
	return []string{"unknown", "amd64", "x86", "arm", "arm64"}
}

func (a Arch) String() string {
	names := archNames()
	if int(a) < 0 || int(a) >= len(names) {
		return "unknown"
	}
	return names[a]
}

// ParseArch converts the user-facing architecture name into an Arch.
func ParseArch(s string) (Arch, error) {
	for n, name := range archNames() {
		if n == 0 {
			continue
		}
		if name == s {
			return Arch(n), nil
		}
	}
	return ArchUnknown, fmt.Errorf("unsupported architecture %q, use one of: amd64, x86, arm, arm64", s)
}

// imageNameArchMap maps the human-readable name embedded in a boot image
// to its architecture. Only the two names stamped by the deployment kit
// are recognized; everything else is ArchUnknown.
var imageNameArchMap = map[string]Arch{
	"Microsoft Windows PE (amd64)": ArchAmd64,
	"Microsoft Windows PE (x86)":   ArchX86,
}

// ArchFromImageName derives the architecture from a boot image's name.
func ArchFromImageName(name string) Arch {
	if arch, ok := imageNameArchMap[name]; ok {
		return arch
	}
	return ArchUnknown
}
