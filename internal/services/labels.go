package services

import "strings"

// friendlyLabels maps lower-cased vendor sensor labels to display names
var friendlyLabels = map[string]string{
	"iwlwifi_1 temp1": "Wi-Fi Module",
	"sensor 1":        "Sensor 1",
	"sensor 2":        "Sensor 2",
	"composite":       "Chipset",
	"edge":            "GPU (Edge)",
	"tctl":            "CPU (Tctl)",
}

// FriendlyLabel returns the display name for a raw sensor label, or the raw
// label unchanged when it has no mapping.
func FriendlyLabel(raw string) string {
	if friendly, ok := friendlyLabels[strings.ToLower(raw)]; ok {
		return friendly
	}
	return raw
}
