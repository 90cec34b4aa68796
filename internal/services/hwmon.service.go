package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hostsnap/internal/models"
)

const millidegreesPerDegree = 1000

var (
	tempFilePattern  = regexp.MustCompile(`^temp(\d+)_(input|label)$`)
	trailingDigitsRe = regexp.MustCompile(`(\d+)$`)
)

// HwmonSensors reads temperature channels from the Linux hwmon sysfs tree.
//
// Each chip directory holds a name file and temp<N>_input (millidegrees) and
// optional temp<N>_label files. A channel whose input is missing or unreadable
// is still reported, with no temperature.
type HwmonSensors struct {
	root string
}

func NewHwmonSensors(root string) *HwmonSensors {
	return &HwmonSensors{root: root}
}

func (h *HwmonSensors) Name() string { return "hwmon" }

// Sensors returns channels chip by chip in hwmon index order. A host without
// an hwmon tree has no sensors, which is not an error.
func (h *HwmonSensors) Sensors(_ context.Context) ([]models.RawSensor, error) {
	entries, err := os.ReadDir(h.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hwmon root %s: %w", h.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.SliceStable(names, func(i, j int) bool {
		return naturalIndex(names[i]) < naturalIndex(names[j])
	})

	var readings []models.RawSensor
	for _, name := range names {
		chipDir := filepath.Join(h.root, name)
		chip := readChip(chipDir)
		if len(chip) == 0 {
			// older drivers keep the attributes under device/
			chip = readChip(filepath.Join(chipDir, "device"))
		}
		readings = append(readings, chip...)
	}

	return readings, nil
}

func readChip(dir string) []models.RawSensor {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	seen := make(map[int]bool)
	var channels []int
	for _, f := range files {
		m := tempFilePattern.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || seen[idx] {
			continue
		}
		seen[idx] = true
		channels = append(channels, idx)
	}
	sort.Ints(channels)

	chipName := readTrimmed(filepath.Join(dir, "name"))
	if chipName == "" {
		chipName = readTrimmed(filepath.Join(filepath.Dir(dir), "name"))
	}

	readings := make([]models.RawSensor, 0, len(channels))
	for _, idx := range channels {
		readings = append(readings, models.RawSensor{
			Label:       channelLabel(dir, chipName, idx),
			Temperature: readCelsius(filepath.Join(dir, fmt.Sprintf("temp%d_input", idx))),
		})
	}
	return readings
}

func channelLabel(dir, chipName string, idx int) string {
	if label := readTrimmed(filepath.Join(dir, fmt.Sprintf("temp%d_label", idx))); label != "" {
		return label
	}
	if chipName != "" {
		return fmt.Sprintf("%s temp%d", chipName, idx)
	}
	return fmt.Sprintf("temp%d", idx)
}

func readCelsius(path string) *float32 {
	raw := readTrimmed(path)
	if raw == "" {
		return nil
	}
	milli, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	celsius := float32(float64(milli) / millidegreesPerDegree)
	return &celsius
}

// readTrimmed returns the trimmed file content, or "" on any error
func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// naturalIndex orders hwmon2 before hwmon10; names without digits sort last
func naturalIndex(name string) int {
	m := trailingDigitsRe.FindStringSubmatch(name)
	if m == nil {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
