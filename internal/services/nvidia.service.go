package services

import (
	"context"
	"fmt"

	"hostsnap/internal/logger"
	"hostsnap/internal/models"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// gpuDevice is the subset of nvml.Device used for thermal readings
type gpuDevice interface {
	GetName() (string, nvml.Return)
	GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return)
}

type gpu struct {
	index  int
	device gpuDevice
}

// NvidiaSensors reports the core temperature of every NVIDIA GPU via NVML
type NvidiaSensors struct {
	gpus     []gpu
	shutdown func() nvml.Return
}

// NewNvidiaSensors initializes NVML and enumerates devices. Callers treat an
// error as "no NVIDIA sensors on this host" and continue without them.
func NewNvidiaSensors() (*NvidiaSensors, error) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, fmt.Errorf("failed to initialize NVML: %s", nvml.ErrorString(ret))
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS || count == 0 {
		nvml.Shutdown()
		return nil, fmt.Errorf("no NVIDIA devices found")
	}

	gpus := make([]gpu, 0, count)
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			logger.Warn().Int("index", i).Str("nvml", nvml.ErrorString(ret)).Msg("skipping GPU")
			continue
		}
		gpus = append(gpus, gpu{index: i, device: device})
	}

	logger.Info().Int("gpus", len(gpus)).Msg("NVIDIA sensors enabled")

	return &NvidiaSensors{gpus: gpus, shutdown: nvml.Shutdown}, nil
}

func (n *NvidiaSensors) Name() string { return "nvidia" }

func (n *NvidiaSensors) Sensors(_ context.Context) ([]models.RawSensor, error) {
	readings := make([]models.RawSensor, 0, len(n.gpus))
	for _, g := range n.gpus {
		label, ret := g.device.GetName()
		if ret != nvml.SUCCESS || label == "" {
			label = fmt.Sprintf("GPU %d", g.index)
		}

		reading := models.RawSensor{Label: label}
		if temp, ret := g.device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
			celsius := float32(temp)
			reading.Temperature = &celsius
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// Close releases NVML
func (n *NvidiaSensors) Close() error {
	if n.shutdown == nil {
		return nil
	}
	if ret := n.shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("failed to shut down NVML: %s", nvml.ErrorString(ret))
	}
	n.shutdown = nil
	return nil
}
