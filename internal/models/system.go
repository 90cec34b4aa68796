package models

// Snapshot is one point-in-time capture of host telemetry
type Snapshot struct {
	System     Identity        `json:"system"`
	Memory     MemoryUsage     `json:"memory"`
	Disks      []DiskUsage     `json:"disks"`
	Components []SensorReading `json:"components"`
}

// Identity holds OS and host identity strings, empty when unknown
type Identity struct {
	Name          string `json:"name"`
	KernelVersion string `json:"kernel_version"`
	OSVersion     string `json:"os_version"`
	HostName      string `json:"host_name"`
}
