package models

// Raw readings as reported by a telemetry source, before normalization.
// Pointer fields are absent when the source could not supply them.

type RawIdentity struct {
	Name          *string
	KernelVersion *string
	OSVersion     *string
	HostName      *string
}

type RawMemory struct {
	TotalRAM  uint64
	UsedRAM   uint64
	TotalSwap uint64
	UsedSwap  uint64
}

type RawDisk struct {
	Name           string
	MountPoint     string
	AvailableBytes uint64
	TotalBytes     uint64
}

// RawSensor temperature is in degrees Celsius
type RawSensor struct {
	Label       string
	Temperature *float32
}
