package media

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/winpekit/winpekit/internal/winexec"
)

// diskpartManager implements Manager over the platform disk tools:
// volume queries through powershell, destructive steps through diskpart
// scripts fed on stdin.
type diskpartManager struct {
	runner winexec.Runner
}

// NewDiskpartManager returns the Manager backed by the real disk tools.
func NewDiskpartManager(runner winexec.Runner) Manager {
	return &diskpartManager{runner: runner}
}

// volumeIDPrefix starts the unique identifier form volumes are also
// addressable by, e.g. `\\?\Volume{2eca078d-5cbc-43d3-aff8-7e8975f74a66}\`.
const volumeIDPrefix = `\\?\Volume{`

func (m *diskpartManager) Lookup(target string) (*Volume, error) {
	if strings.HasPrefix(target, volumeIDPrefix) {
		// the unique id always carries a trailing separator
		id := target
		if !strings.HasSuffix(id, `\`) {
			id += `\`
		}
		return m.queryVolume(fmt.Sprintf("Get-Partition -Volume (Get-Volume -UniqueId '%s')", id))
	}

	letter := strings.TrimSuffix(strings.ToUpper(target), ":")
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return nil, fmt.Errorf("%q is neither a drive letter nor a volume identifier", target)
	}
	return m.queryVolume(fmt.Sprintf("Get-Partition -DriveLetter '%s'", letter))
}

func (m *diskpartManager) CleanDisk(diskNumber int) error {
	script := fmt.Sprintf("select disk %d\nclean\nexit\n", diskNumber)
	if _, err := m.runner.Run("diskpart", nil, script); err != nil {
		return fmt.Errorf("cannot clean disk %d: %v", diskNumber, err)
	}
	return nil
}

func (m *diskpartManager) CreateBootVolume(diskNumber int, label string) (*Volume, error) {
	script := fmt.Sprintf("select disk %d\n"+
		"create partition primary\n"+
		"active\n"+
		"format fs=fat32 quick label=\"%s\"\n"+
		"assign\n"+
		"exit\n", diskNumber, label)
	if _, err := m.runner.Run("diskpart", nil, script); err != nil {
		return nil, fmt.Errorf("cannot create the boot partition on disk %d: %v", diskNumber, err)
	}

	// re-query to learn the drive letter the new volume was assigned
	selector := fmt.Sprintf("Get-Partition -DiskNumber %d | Where-Object DriveLetter | Select-Object -First 1", diskNumber)
	return m.queryVolume(selector)
}

// queryVolume runs a powershell pipeline that resolves a partition
// selector into the Volume JSON this package consumes.
func (m *diskpartManager) queryVolume(partitionSelector string) (*Volume, error) {
	script := fmt.Sprintf(`$p = %s; `+
		`$d = Get-Disk -Number $p.DiskNumber; `+
		`$v = Get-Volume -Partition $p; `+
		`[pscustomobject]@{`+
		`driveLetter = [string]$v.DriveLetter; `+
		`path = [string]$v.DriveLetter + ':\'; `+
		`label = $v.FileSystemLabel; `+
		`size = $v.Size; `+
		`diskNumber = $p.DiskNumber; `+
		`removable = ($d.BusType -eq 'USB')`+
		`} | ConvertTo-Json -Compress`, partitionSelector)

	output, err := m.runner.Run("powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, "")
	if err != nil {
		return nil, fmt.Errorf("cannot query the target volume: %v", err)
	}

	var vol Volume
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(output))), &vol); err != nil {
		return nil, fmt.Errorf("cannot parse volume info: %v\nthe raw output:\n%s", err, output)
	}
	return &vol, nil
}
