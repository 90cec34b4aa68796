package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hostsnap/internal/logger"
	"hostsnap/internal/models"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/viper"
)

var osReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// HostSource reads the local machine through gopsutil. Thermal readings come
// from the configured sensor providers, in order.
type HostSource struct {
	providers []SensorProvider

	// gopsutil entry points, swapped out in tests
	platformInfo  func(ctx context.Context) (string, string, string, error)
	osName        func() (string, error)
	kernelVersion func(ctx context.Context) (string, error)
	hostname      func() (string, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swapMemory    func(ctx context.Context) (*mem.SwapMemoryStat, error)
	partitions    func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage         func(ctx context.Context, path string) (*disk.UsageStat, error)
}

var _ Source = (*HostSource)(nil)

func NewHostSource(providers ...SensorProvider) *HostSource {
	return &HostSource{
		providers:     providers,
		platformInfo:  host.PlatformInformationWithContext,
		osName:        func() (string, error) { return readOSReleaseName(osReleasePaths...) },
		kernelVersion: host.KernelVersionWithContext,
		hostname:      os.Hostname,
		virtualMemory: mem.VirtualMemoryWithContext,
		swapMemory:    mem.SwapMemoryWithContext,
		partitions:    disk.PartitionsWithContext,
		usage:         disk.UsageWithContext,
	}
}

// Identity returns OS name and version, kernel version and host name.
// The name is os-release NAME ("Ubuntu") when present, else gopsutil's
// platform id ("ubuntu").
func (h *HostSource) Identity(ctx context.Context) (models.RawIdentity, error) {
	var identity models.RawIdentity
	var errs []error

	platform, _, version, err := h.platformInfo(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to get platform information: %w", err))
	}
	name, err := h.osName()
	if err != nil {
		errs = append(errs, err)
	}
	if name == "" {
		name = platform
	}
	identity.Name = nonEmpty(name)
	identity.OSVersion = nonEmpty(version)

	kernel, err := h.kernelVersion(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to get kernel version: %w", err))
	}
	identity.KernelVersion = nonEmpty(kernel)

	hostname, err := h.hostname()
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to get host name: %w", err))
	}
	identity.HostName = nonEmpty(hostname)

	return identity, errors.Join(errs...)
}

// Memory returns RAM and swap byte counters. Used RAM is total minus
// available whenever the platform reports availability.
func (h *HostSource) Memory(ctx context.Context) (models.RawMemory, error) {
	vm, err := h.virtualMemory(ctx)
	if err != nil {
		return models.RawMemory{}, fmt.Errorf("%w: failed to get virtual memory: %w", ErrSourceUnavailable, err)
	}

	raw := models.RawMemory{
		TotalRAM: vm.Total,
		UsedRAM:  vm.Used,
	}
	if vm.Available > 0 && vm.Available <= vm.Total {
		raw.UsedRAM = vm.Total - vm.Available
	}

	swap, err := h.swapMemory(ctx)
	if err != nil {
		return raw, fmt.Errorf("failed to get swap memory: %w", err)
	}
	raw.TotalSwap = swap.Total
	raw.UsedSwap = swap.Used

	return raw, nil
}

// Disks returns capacity of every physical partition in enumeration order
func (h *HostSource) Disks(ctx context.Context) ([]models.RawDisk, error) {
	partitions, err := h.partitions(ctx, false)
	if err != nil && len(partitions) == 0 {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("partition list is incomplete")
	}

	disks := make([]models.RawDisk, 0, len(partitions))
	for _, partition := range partitions {
		usage, err := h.usage(ctx, partition.Mountpoint)
		if err != nil {
			logger.Warn().Err(err).Str("mount_point", partition.Mountpoint).Msg("could not get disk usage")
			continue
		}

		disks = append(disks, models.RawDisk{
			Name:           partition.Device,
			MountPoint:     partition.Mountpoint,
			AvailableBytes: usage.Free,
			TotalBytes:     usage.Total,
		})
	}

	return disks, nil
}

// Sensors concatenates readings of all providers. A failing provider does not
// hide the readings of the others.
func (h *HostSource) Sensors(ctx context.Context) ([]models.RawSensor, error) {
	var readings []models.RawSensor
	var errs []error

	for _, provider := range h.providers {
		r, err := provider.Sensors(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
		}
		readings = append(readings, r...)
	}

	return readings, errors.Join(errs...)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// readOSReleaseName returns NAME from the first os-release file that exists,
// or "" when none does
func readOSReleaseName(paths ...string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return v.GetString("name"), nil
	}
	return "", nil
}
