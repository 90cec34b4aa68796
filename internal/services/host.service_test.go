package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hostsnap/internal/models"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name     string
	readings []models.RawSensor
	err      error
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Sensors(context.Context) ([]models.RawSensor, error) {
	return s.readings, s.err
}

func newStubHostSource(providers ...SensorProvider) *HostSource {
	h := NewHostSource(providers...)
	h.platformInfo = func(context.Context) (string, string, string, error) {
		return "ubuntu", "debian", "24.04", nil
	}
	h.osName = func() (string, error) { return "", nil }
	h.kernelVersion = func(context.Context) (string, error) { return "6.8.0-45-generic", nil }
	h.hostname = func() (string, error) { return "box", nil }
	h.virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 16_000_000_000, Available: 6_000_000_000, Used: 7_000_000_000}, nil
	}
	h.swapMemory = func(context.Context) (*mem.SwapMemoryStat, error) {
		return &mem.SwapMemoryStat{Total: 2_000_000_000, Used: 500_000_000}, nil
	}
	h.partitions = func(context.Context, bool) ([]disk.PartitionStat, error) {
		return []disk.PartitionStat{
			{Device: "/dev/nvme0n1p2", Mountpoint: "/"},
			{Device: "/dev/nvme0n1p1", Mountpoint: "/boot/efi"},
		}, nil
	}
	h.usage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Path: path, Total: 100_000_000_000, Free: 40_000_000_000}, nil
	}
	return h
}

func TestHostSourceIdentity(t *testing.T) {
	h := newStubHostSource()

	id, err := h.Identity(context.Background())
	require.NoError(t, err)

	require.NotNil(t, id.Name)
	assert.Equal(t, "ubuntu", *id.Name)
	assert.Equal(t, "24.04", *id.OSVersion)
	assert.Equal(t, "6.8.0-45-generic", *id.KernelVersion)
	assert.Equal(t, "box", *id.HostName)
}

func TestHostSourceIdentityPartial(t *testing.T) {
	h := newStubHostSource()
	h.platformInfo = func(context.Context) (string, string, string, error) {
		return "", "", "", errors.New("os-release missing")
	}

	id, err := h.Identity(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
	assert.Nil(t, id.Name)
	assert.Nil(t, id.OSVersion)
	assert.Equal(t, "box", *id.HostName)
}

func TestHostSourceIdentityPrefersOSReleaseName(t *testing.T) {
	h := newStubHostSource()
	h.osName = func() (string, error) { return "Ubuntu", nil }

	id, err := h.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ubuntu", *id.Name)
	assert.Equal(t, "24.04", *id.OSVersion)
}

func TestHostSourceIdentityOSReleaseUnreadable(t *testing.T) {
	h := newStubHostSource()
	h.osName = func() (string, error) { return "", errors.New("failed to read /etc/os-release: permission denied") }

	id, err := h.Identity(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, "ubuntu", *id.Name, "falls back to the platform id")
}

func TestReadOSReleaseName(t *testing.T) {
	dir := t.TempDir()
	etc := filepath.Join(dir, "etc-os-release")
	lib := filepath.Join(dir, "lib-os-release")
	require.NoError(t, os.WriteFile(lib, []byte("NAME=\"Fedora Linux\"\nID=fedora\nVERSION_ID=40\n"), 0o644))

	name, err := readOSReleaseName(etc, lib)
	require.NoError(t, err)
	assert.Equal(t, "Fedora Linux", name, "missing first file falls through to the next")

	require.NoError(t, os.WriteFile(etc, []byte("PRETTY_NAME=\"Ubuntu 24.04.1 LTS\"\nNAME=\"Ubuntu\"\nID=ubuntu\n"), 0o644))
	name, err = readOSReleaseName(etc, lib)
	require.NoError(t, err)
	assert.Equal(t, "Ubuntu", name)

	name, err = readOSReleaseName(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestHostSourceMemoryUsesAvailable(t *testing.T) {
	h := newStubHostSource()

	m, err := h.Memory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RawMemory{
		TotalRAM:  16_000_000_000,
		UsedRAM:   10_000_000_000,
		TotalSwap: 2_000_000_000,
		UsedSwap:  500_000_000,
	}, m)
}

func TestHostSourceMemoryFallsBackToUsed(t *testing.T) {
	h := newStubHostSource()
	h.virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 8_000_000_000, Used: 3_000_000_000}, nil
	}

	m, err := h.Memory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000_000), m.UsedRAM)
}

func TestHostSourceMemoryUnavailableIsFatal(t *testing.T) {
	h := newStubHostSource()
	h.virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return nil, errors.New("open /proc/meminfo: no such file or directory")
	}

	_, err := h.Memory(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "meminfo")
}

func TestHostSourceSwapFailureDegrades(t *testing.T) {
	h := newStubHostSource()
	h.swapMemory = func(context.Context) (*mem.SwapMemoryStat, error) {
		return nil, errors.New("permission denied")
	}

	m, err := h.Memory(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, uint64(16_000_000_000), m.TotalRAM)
	assert.Zero(t, m.TotalSwap)
}

func TestHostSourceDisksKeepOrderAndSkipFailures(t *testing.T) {
	h := newStubHostSource()
	h.partitions = func(context.Context, bool) ([]disk.PartitionStat, error) {
		return []disk.PartitionStat{
			{Device: "/dev/sdb1", Mountpoint: "/data"},
			{Device: "/dev/sdc1", Mountpoint: "/hung"},
			{Device: "/dev/sda1", Mountpoint: "/"},
		}, nil
	}
	h.usage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		if path == "/hung" {
			return nil, errors.New("stale file handle")
		}
		return &disk.UsageStat{Total: 500_000_000_000, Free: 250_000_000_000}, nil
	}

	disks, err := h.Disks(context.Background())
	require.NoError(t, err)
	require.Len(t, disks, 2)
	assert.Equal(t, models.RawDisk{Name: "/dev/sdb1", MountPoint: "/data", AvailableBytes: 250_000_000_000, TotalBytes: 500_000_000_000}, disks[0])
	assert.Equal(t, "/", disks[1].MountPoint)
}

func TestHostSourceDisksListFailure(t *testing.T) {
	h := newStubHostSource()
	h.partitions = func(context.Context, bool) ([]disk.PartitionStat, error) {
		return nil, errors.New("no mounts")
	}

	disks, err := h.Disks(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
	assert.Empty(t, disks)
}

func TestHostSourceSensorsConcatenatesProviders(t *testing.T) {
	h := newStubHostSource(
		stubProvider{name: "hwmon", readings: []models.RawSensor{{Label: "Tctl"}, {Label: "Composite"}}},
		stubProvider{name: "nvidia", err: errors.New("driver gone")},
		stubProvider{name: "extra", readings: []models.RawSensor{{Label: "edge"}}},
	)

	readings, err := h.Sensors(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nvidia: driver gone")

	var labels []string
	for _, r := range readings {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"Tctl", "Composite", "edge"}, labels)
}

func TestHostSourceWithoutProviders(t *testing.T) {
	readings, err := newStubHostSource().Sensors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestHostSourceFeedsSnapshot(t *testing.T) {
	h := newStubHostSource(stubProvider{name: "hwmon", readings: []models.RawSensor{{Label: "Tctl"}}})

	snap, err := NewSnapshotService(h).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ubuntu", snap.System.Name)
	assert.Equal(t, 62.5, snap.Memory.RAMPercent)
	assert.Equal(t, 25.0, snap.Memory.SwapPercent)
	assert.Len(t, snap.Disks, 2)
	assert.Equal(t, "CPU (Tctl)", snap.Components[0].Label)
}
