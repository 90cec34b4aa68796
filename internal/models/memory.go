package models

// MemoryUsage represents RAM and swap utilization in decimal units
type MemoryUsage struct {
	TotalRAMGB  float64 `json:"total_ram_gb"`
	TotalRAMMB  float64 `json:"total_ram_mb"`
	UsedRAMGB   float64 `json:"used_ram_gb"`
	UsedRAMMB   float64 `json:"used_ram_mb"`
	RAMPercent  float64 `json:"ram_percent"`
	TotalSwapGB float64 `json:"total_swap_gb"`
	TotalSwapMB float64 `json:"total_swap_mb"`
	UsedSwapGB  float64 `json:"used_swap_gb"`
	UsedSwapMB  float64 `json:"used_swap_mb"`
	SwapPercent float64 `json:"swap_percent"`
}
