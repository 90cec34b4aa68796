package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"hostsnap/internal/logger"
	"hostsnap/internal/models"
)

const (
	bytesPerGB = 1_000_000_000
	bytesPerMB = 1_000_000
)

// SnapshotService turns raw source readings into a normalized snapshot
type SnapshotService struct {
	source Source
}

func NewSnapshotService(source Source) *SnapshotService {
	return &SnapshotService{source: source}
}

// Collect queries every facet of the source and returns a fully populated
// snapshot. Only ErrSourceUnavailable fails the call; other facet errors are
// logged and the facet is reported empty or partial.
func (s *SnapshotService) Collect(ctx context.Context) (*models.Snapshot, error) {
	if s == nil || s.source == nil {
		return nil, fmt.Errorf("no source configured: %w", ErrSourceUnavailable)
	}

	rawIdentity, err := s.source.Identity(ctx)
	if err := checkFacet("identity", err); err != nil {
		return nil, err
	}

	rawMemory, err := s.source.Memory(ctx)
	if err := checkFacet("memory", err); err != nil {
		return nil, err
	}

	rawDisks, err := s.source.Disks(ctx)
	if err := checkFacet("disks", err); err != nil {
		return nil, err
	}

	rawSensors, err := s.source.Sensors(ctx)
	if err := checkFacet("sensors", err); err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		System:     buildIdentity(rawIdentity),
		Memory:     buildMemory(rawMemory),
		Disks:      buildDisks(rawDisks),
		Components: buildSensors(rawSensors),
	}

	logger.Debug().
		Int("disks", len(snapshot.Disks)).
		Int("components", len(snapshot.Components)).
		Float64("ram_percent", snapshot.Memory.RAMPercent).
		Msg("snapshot collected")

	return snapshot, nil
}

// checkFacet returns err only when it is fatal, logging degraded facets
func checkFacet(facet string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSourceUnavailable) {
		return fmt.Errorf("failed to read %s: %w", facet, err)
	}
	logger.Warn().Err(err).Str("facet", facet).Msg("telemetry facet degraded")
	return nil
}

func buildIdentity(raw models.RawIdentity) models.Identity {
	return models.Identity{
		Name:          valueOrEmpty(raw.Name),
		KernelVersion: valueOrEmpty(raw.KernelVersion),
		OSVersion:     valueOrEmpty(raw.OSVersion),
		HostName:      valueOrEmpty(raw.HostName),
	}
}

func buildMemory(raw models.RawMemory) models.MemoryUsage {
	return models.MemoryUsage{
		TotalRAMGB:  ToGB(raw.TotalRAM),
		TotalRAMMB:  ToMB(raw.TotalRAM),
		UsedRAMGB:   ToGB(raw.UsedRAM),
		UsedRAMMB:   ToMB(raw.UsedRAM),
		RAMPercent:  Percent(raw.UsedRAM, raw.TotalRAM),
		TotalSwapGB: ToGB(raw.TotalSwap),
		TotalSwapMB: ToMB(raw.TotalSwap),
		UsedSwapGB:  ToGB(raw.UsedSwap),
		UsedSwapMB:  ToMB(raw.UsedSwap),
		SwapPercent: Percent(raw.UsedSwap, raw.TotalSwap),
	}
}

func buildDisks(raw []models.RawDisk) []models.DiskUsage {
	disks := make([]models.DiskUsage, 0, len(raw))
	for _, d := range raw {
		disks = append(disks, models.DiskUsage{
			Name:             DisplayPath(d.Name),
			MountPoint:       DisplayPath(d.MountPoint),
			AvailableSpaceGB: ToGB(d.AvailableBytes),
			AvailableSpaceMB: ToMB(d.AvailableBytes),
			TotalSpaceGB:     ToGB(d.TotalBytes),
			TotalSpaceMB:     ToMB(d.TotalBytes),
		})
	}
	return disks
}

func buildSensors(raw []models.RawSensor) []models.SensorReading {
	sensors := make([]models.SensorReading, 0, len(raw))
	for _, r := range raw {
		sensors = append(sensors, models.SensorReading{
			Label:       FriendlyLabel(r.Label),
			Temperature: r.Temperature,
		})
	}
	return sensors
}

// ToGB converts bytes to decimal gigabytes
func ToGB(b uint64) float64 {
	return float64(b) / bytesPerGB
}

// ToMB converts bytes to decimal megabytes
func ToMB(b uint64) float64 {
	return float64(b) / bytesPerMB
}

// Percent returns used/total*100, or 0 when total is 0
func Percent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// DisplayPath keeps valid UTF-8 as is and escapes each invalid byte as \xNN.
// No byte is dropped, but the escape is not reversible: a name that already
// contains the text \xff renders the same as one holding the raw 0xff byte.
func DisplayPath(p string) string {
	if utf8.ValidString(p) {
		return p
	}

	out := make([]byte, 0, len(p)+8)
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRuneInString(p[i:])
		if r == utf8.RuneError && size == 1 {
			out = fmt.Appendf(out, `\x%02x`, p[i])
			i++
			continue
		}
		out = append(out, p[i:i+size]...)
		i += size
	}
	return string(out)
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
