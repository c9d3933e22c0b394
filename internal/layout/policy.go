package layout

import (
	"fmt"
	"strings"
)

// MigrationPolicy selects where panels of a removed column go.
type MigrationPolicy string

// MigrateLeft and related constants define supported migration policies.
const (
	// MigrateLeft moves panels to the left neighbor, or to the new first column when column 0 is removed.
	MigrateLeft  MigrationPolicy = "left"
	MigrateFirst MigrationPolicy = "first"
)

// TieBreak selects the insertion index when the pointer sits exactly on a panel midpoint.
type TieBreak string

// TieLater and related constants define supported tie-break rules.
const (
	TieLater   TieBreak = "later"
	TieEarlier TieBreak = "earlier"
)

// ParseMigrationPolicy parses input into a normalized form.
func ParseMigrationPolicy(raw string) (MigrationPolicy, error) {
	switch MigrationPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MigrateLeft:
		return MigrateLeft, nil
	case MigrateFirst:
		return MigrateFirst, nil
	default:
		return "", fmt.Errorf("unknown migration policy %q", raw)
	}
}

// ParseTieBreak parses input into a normalized form.
func ParseTieBreak(raw string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TieLater:
		return TieLater, nil
	case TieEarlier:
		return TieEarlier, nil
	default:
		return "", fmt.Errorf("unknown drop tie-break %q", raw)
	}
}
