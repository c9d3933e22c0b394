package app

import (
	"strings"
	"time"
)

// DefaultSlot names the layout slot used when none is configured.
const DefaultSlot = "current"

// SlotInfo describes one persisted layout slot.
type SlotInfo struct {
	Name    string
	Size    int
	Version int
	SavedAt time.Time
	SavedBy string
}

// NormalizeSlot trims and validates a slot name. Slot names double as file stems.
func NormalizeSlot(raw string) (string, error) {
	slot := strings.TrimSpace(raw)
	if slot == "" {
		return DefaultSlot, nil
	}
	if strings.ContainsAny(slot, `/\:`) || slot == "." || slot == ".." || strings.HasPrefix(slot, ".") {
		return "", ErrInvalidSlot
	}
	return slot, nil
}
