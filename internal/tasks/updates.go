package tasks

import (
	"fmt"

	"github.com/desertthunder/soundshelf/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveUsers Phase = iota
	WriteReport
	Aggregate
)

func (p Phase) String() string {
	switch p {
	case ResolveUsers:
		return "resolve_users"
	case WriteReport:
		return "write_report"
	case Aggregate:
		return "aggregate"
	default:
		return ""
	}
}

func resolveStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveUsers,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving user types for %d users...", total),
	}
}

func resolveCompletedUpdate(step, total int, res models.Resolution) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s; %s)", step, total, res.UserID, res.PlanTier, res.Roles),
		Data:    res,
	}
}

func resolveFailedUpdate(step, total int, res models.Resolution) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.UserID, res.Error),
		Data:    res,
	}
}

func writeReportUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing report to %s...", dir),
	}
}

func aggregateUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aggregate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}
