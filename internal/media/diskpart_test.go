package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winpekit/winpekit/internal/winexec"
)

const volumeJSON = `{"driveLetter":"E","path":"E:\\","label":"WinPE","size":31914983424,"diskNumber":2,"removable":true}`

func TestLookup(t *testing.T) {
	fake := &winexec.Fake{
		Handler: func(winexec.Call) ([]byte, error) {
			return []byte(volumeJSON + "\n"), nil
		},
	}
	manager := NewDiskpartManager(fake)

	vol, err := manager.Lookup("e:")
	require.NoError(t, err)
	assert.Equal(t, &Volume{
		DriveLetter: "E",
		Path:        `E:\`,
		Label:       "WinPE",
		SizeBytes:   31914983424,
		DiskNumber:  2,
		Removable:   true,
	}, vol)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "powershell", fake.Calls[0].Name)
	script := fake.Calls[0].Args[len(fake.Calls[0].Args)-1]
	assert.Contains(t, script, "Get-Partition -DriveLetter 'E'")
	assert.Contains(t, script, "ConvertTo-Json")
}

func TestLookupByVolumeID(t *testing.T) {
	fake := &winexec.Fake{
		Handler: func(winexec.Call) ([]byte, error) {
			return []byte(volumeJSON), nil
		},
	}
	manager := NewDiskpartManager(fake)

	id := `\\?\Volume{2eca078d-5cbc-43d3-aff8-7e8975f74a66}\`
	vol, err := manager.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, "E", vol.DriveLetter)

	require.Len(t, fake.Calls, 1)
	script := fake.Calls[0].Args[len(fake.Calls[0].Args)-1]
	assert.Contains(t, script, "Get-Volume -UniqueId '"+id+"'")

	// the trailing separator the unique id form requires is added when
	// the caller leaves it off
	_, err = manager.Lookup(strings.TrimSuffix(id, `\`))
	require.NoError(t, err)
	script = fake.Calls[1].Args[len(fake.Calls[1].Args)-1]
	assert.Contains(t, script, "Get-Volume -UniqueId '"+id+"'")
}

func TestLookupRejectsMalformedTargets(t *testing.T) {
	manager := NewDiskpartManager(&winexec.Fake{})
	for _, bad := range []string{"", "EF:", "2", `Volume{b75e2c83}`} {
		_, err := manager.Lookup(bad)
		assert.Error(t, err, "Lookup(%q)", bad)
	}
}

func TestCleanDiskScript(t *testing.T) {
	fake := &winexec.Fake{}
	manager := NewDiskpartManager(fake)

	require.NoError(t, manager.CleanDisk(2))
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "diskpart", fake.Calls[0].Name)
	assert.Equal(t, "select disk 2\nclean\nexit\n", fake.Calls[0].Stdin)
}

func TestCreateBootVolumeScript(t *testing.T) {
	fake := &winexec.Fake{
		Handler: func(call winexec.Call) ([]byte, error) {
			if call.Name == "powershell" {
				return []byte(volumeJSON), nil
			}
			return nil, nil
		},
	}
	manager := NewDiskpartManager(fake)

	vol, err := manager.CreateBootVolume(2, "WinPE")
	require.NoError(t, err)
	assert.Equal(t, "E", vol.DriveLetter)

	require.Len(t, fake.Calls, 2)
	script := fake.Calls[0].Stdin
	for _, line := range []string{
		"select disk 2",
		"create partition primary",
		"active",
		`format fs=fat32 quick label="WinPE"`,
		"assign",
	} {
		assert.Contains(t, script, line+"\n")
	}
	// the partition list order matters to diskpart
	assert.Less(t, strings.Index(script, "create partition"), strings.Index(script, "active"))
	assert.Less(t, strings.Index(script, "active"), strings.Index(script, "format"))

	// the follow-up query resolves the fresh volume by disk number
	assert.Contains(t, fake.Calls[1].Args[len(fake.Calls[1].Args)-1], "Get-Partition -DiskNumber 2")
}

func TestLookupBadJSON(t *testing.T) {
	fake := &winexec.Fake{
		Handler: func(winexec.Call) ([]byte, error) {
			return []byte("Get-Partition : No MSFT_Partition objects found"), nil
		},
	}
	manager := NewDiskpartManager(fake)

	_, err := manager.Lookup("E:")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse volume info")
}
