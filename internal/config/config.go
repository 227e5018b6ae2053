package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/winpekit/winpekit/internal/platform"
)

// Environment variables set by the deployment tools environment script.
// They are the fallback when no config file provides the roots.
const (
	envDeploymentKitRoot = "WinPERoot"
	envOscdimgRoot       = "OSCDImgRoot"
)

// Config holds the two tool roots every entry point depends on. They are
// resolved once at process start and passed down explicitly; nothing else
// reads the environment.
type Config struct {
	// DeploymentKitRoot is the WinPE add-on root of the deployment kit,
	// containing per-architecture source assets and optional components.
	DeploymentKitRoot string `toml:"deployment_kit_root"`
	// OscdimgRoot is the imaging-tool directory holding oscdimg,
	// bootsect and the firmware boot-sector files.
	OscdimgRoot string `toml:"oscdimg_root"`
}

// Load reads the config file at path, if given, and fills any unset root
// from the environment. Both roots must end up set; entry points that
// need a root fail immediately otherwise.
func Load(path string) (*Config, error) {
	var conf Config
	if path != "" {
		meta, err := toml.DecodeFile(path, &conf)
		if err != nil {
			return nil, fmt.Errorf("cannot load config file %q: %v", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q in config file %q", undecoded[0].String(), path)
		}
	}

	if conf.DeploymentKitRoot == "" {
		conf.DeploymentKitRoot = os.Getenv(envDeploymentKitRoot)
	}
	if conf.OscdimgRoot == "" {
		conf.OscdimgRoot = os.Getenv(envOscdimgRoot)
	}

	if conf.DeploymentKitRoot == "" {
		return nil, fmt.Errorf("deployment kit root is not set: set deployment_kit_root in the config file or the %s environment variable", envDeploymentKitRoot)
	}
	if conf.OscdimgRoot == "" {
		return nil, fmt.Errorf("imaging tool root is not set: set oscdimg_root in the config file or the %s environment variable", envOscdimgRoot)
	}

	return &conf, nil
}

// ArchDir returns the deployment kit's asset subtree for an architecture.
func (c *Config) ArchDir(arch platform.Arch) string {
	return filepath.Join(c.DeploymentKitRoot, arch.String())
}

// MediaDir returns the boot-media asset tree copied into new build trees.
func (c *Config) MediaDir(arch platform.Arch) string {
	return filepath.Join(c.ArchDir(arch), "Media")
}

// SourceImage returns the pristine boot image for an architecture.
func (c *Config) SourceImage(arch platform.Arch) string {
	return filepath.Join(c.ArchDir(arch), "en-us", "winpe.wim")
}

// PackageDir returns the optional-component directory for an architecture.
func (c *Config) PackageDir(arch platform.Arch) string {
	return filepath.Join(c.ArchDir(arch), "WinPE_OCs")
}

// EfisysBin returns the UEFI firmware boot-sector file.
func (c *Config) EfisysBin() string {
	return filepath.Join(c.OscdimgRoot, "efisys.bin")
}

// EtfsbootCom returns the legacy BIOS boot-sector file. It does not exist
// on all architectures; callers probe for it.
func (c *Config) EtfsbootCom() string {
	return filepath.Join(c.OscdimgRoot, "etfsboot.com")
}

// OscdimgExe returns the ISO mastering tool.
func (c *Config) OscdimgExe() string {
	return filepath.Join(c.OscdimgRoot, "oscdimg.exe")
}

// BootsectExe returns the boot-code writer.
func (c *Config) BootsectExe() string {
	return filepath.Join(c.OscdimgRoot, "bootsect.exe")
}
