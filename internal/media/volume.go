// Package media deploys a finished build tree to removable media or an
// ISO image. All partitioning, formatting and boot-code work is delegated
// to the platform's disk tools.
package media

// Volume describes one volume as reported by the disk-management
// facility.
type Volume struct {
	// DriveLetter without the colon, e.g. "E".
	DriveLetter string `json:"driveLetter"`
	// Path is the filesystem root of the volume.
	Path       string `json:"path"`
	Label      string `json:"label"`
	SizeBytes  uint64 `json:"size"`
	DiskNumber int    `json:"diskNumber"`
	Removable  bool   `json:"removable"`
}

// Manager is the disk-management facility: volume lookup and the
// destructive disk preparation steps. diskpartManager implements it
// against the real tools; tests substitute a fake.
type Manager interface {
	// Lookup resolves a drive letter or volume identifier to a Volume.
	Lookup(target string) (*Volume, error)
	// CleanDisk removes all partitions, data and metadata from a disk.
	CleanDisk(diskNumber int) error
	// CreateBootVolume creates a single active FAT32 partition spanning
	// the disk, formats and assigns it, and returns the new volume.
	CreateBootVolume(diskNumber int, label string) (*Volume, error)
}
