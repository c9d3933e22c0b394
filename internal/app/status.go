package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/dockyard/internal/domain"
)

// Level grades a status report.
type Level string

// LevelOK and related constants define status levels.
const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Status is the outcome of one host-facing operation.
type Status struct {
	Op       string
	Level    Level
	Message  string
	Err      error
	Warnings []string
}

// OK reports whether the operation succeeded, possibly with warnings.
func (s Status) OK() bool {
	return s.Level != LevelError
}

// String renders a one-line status summary.
func (s Status) String() string {
	var b strings.Builder
	b.WriteString(s.Message)
	if len(s.Warnings) > 0 {
		fmt.Fprintf(&b, " (%d warning", len(s.Warnings))
		if len(s.Warnings) > 1 {
			b.WriteString("s")
		}
		b.WriteString(")")
	}
	return b.String()
}

// ErrorCode maps an error to a stable machine-readable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrMaxColumnsReached):
		return "max_columns_reached"
	case errors.Is(err, domain.ErrMinColumnsReached):
		return "min_columns_reached"
	case errors.Is(err, domain.ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, domain.ErrUnknownPanel):
		return "unknown_panel"
	case errors.Is(err, domain.ErrDuplicatePanel):
		return "duplicate_panel"
	case errors.Is(err, domain.ErrCorruptLayout):
		return "corrupt_layout"
	case errors.Is(err, domain.ErrInvalidID), errors.Is(err, domain.ErrInvalidSize), errors.Is(err, ErrInvalidSlot):
		return "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "internal"
	}
}

// statusMessage returns the user-facing sentence for a failed operation.
func statusMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMaxColumnsReached):
		return fmt.Sprintf("cannot add column: maximum of %d reached", domain.MaxColumns)
	case errors.Is(err, domain.ErrMinColumnsReached):
		return "cannot remove column: at least one column is required"
	case errors.Is(err, domain.ErrInvalidTarget):
		return "invalid target position"
	case errors.Is(err, domain.ErrUnknownPanel):
		return "unknown panel"
	case errors.Is(err, domain.ErrDuplicatePanel):
		return "panel already registered"
	case errors.Is(err, domain.ErrCorruptLayout):
		return "layout document is corrupt"
	case errors.Is(err, ErrNotFound):
		return "no saved layout"
	default:
		return err.Error()
	}
}
