package services

import (
	"context"
	"math"
	"runtime"

	"hostsnap/internal/models"

	"github.com/shirou/gopsutil/v3/host"
)

// DefaultSensorProviders picks the thermal backend for the current platform:
// sysfs hwmon on Linux, gopsutil elsewhere.
func DefaultSensorProviders(hwmonPath string) []SensorProvider {
	if runtime.GOOS == "linux" {
		return []SensorProvider{NewHwmonSensors(hwmonPath)}
	}
	return []SensorProvider{NewPsutilSensors()}
}

// PsutilSensors reads temperatures through gopsutil, labelled by sensor key
type PsutilSensors struct {
	temperatures func(ctx context.Context) ([]host.TemperatureStat, error)
}

func NewPsutilSensors() *PsutilSensors {
	return &PsutilSensors{temperatures: host.SensorsTemperaturesWithContext}
}

func (p *PsutilSensors) Name() string { return "psutil" }

// Sensors keeps partial results; gopsutil reports unreadable sensors as
// warnings next to the ones it could read.
func (p *PsutilSensors) Sensors(ctx context.Context) ([]models.RawSensor, error) {
	temps, err := p.temperatures(ctx)

	readings := make([]models.RawSensor, 0, len(temps))
	for _, t := range temps {
		reading := models.RawSensor{Label: t.SensorKey}
		if !math.IsNaN(t.Temperature) {
			celsius := float32(t.Temperature)
			reading.Temperature = &celsius
		}
		readings = append(readings, reading)
	}

	return readings, err
}
