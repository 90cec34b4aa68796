package services

import (
	"context"
	"errors"

	"hostsnap/internal/models"
)

// ErrSourceUnavailable marks a source that cannot reach the OS telemetry
// interfaces at all. It is the only error that fails a whole snapshot.
var ErrSourceUnavailable = errors.New("telemetry source unavailable")

// Source supplies raw readings. Every call queries the host again; nothing
// is cached between calls. Errors not wrapping ErrSourceUnavailable mean the
// facet is degraded, and any values returned with them are still usable.
type Source interface {
	Identity(ctx context.Context) (models.RawIdentity, error)
	Memory(ctx context.Context) (models.RawMemory, error)
	Disks(ctx context.Context) ([]models.RawDisk, error)
	Sensors(ctx context.Context) ([]models.RawSensor, error)
}

// SensorProvider is one backend contributing thermal readings
type SensorProvider interface {
	Name() string
	Sensors(ctx context.Context) ([]models.RawSensor, error)
}
