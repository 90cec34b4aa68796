package models

// DiskUsage represents capacity of a single mounted volume
type DiskUsage struct {
	Name             string  `json:"name"`
	MountPoint       string  `json:"mount_point"`
	AvailableSpaceGB float64 `json:"available_space_gb"`
	AvailableSpaceMB float64 `json:"available_space_mb"`
	TotalSpaceGB     float64 `json:"total_space_gb"`
	TotalSpaceMB     float64 `json:"total_space_mb"`
}
