package scoring

import (
	"errors"
	"fmt"
)

// ValidationError marks structurally invalid snapshot input. Incomplete
// input is not a validation failure; missing optional fields fall back to
// their documented defaults instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateProject rejects snapshots that are internally inconsistent rather
// than merely incomplete.
func ValidateProject(p ProjectSnapshot) error {
	if p.TeamMemberCount < 0 {
		return &ValidationError{Field: "team_member_count", Reason: fmt.Sprintf("is negative (%d)", p.TeamMemberCount)}
	}
	if p.Deadline != nil && !p.CreatedAt.IsZero() && p.Deadline.Before(p.CreatedAt) {
		return &ValidationError{Field: "deadline", Reason: "predates created_at"}
	}
	return nil
}

// ValidateDeveloper rejects snapshots with impossible counts.
func ValidateDeveloper(d DeveloperSnapshot) error {
	switch {
	case d.Tasks.Total < 0:
		return &ValidationError{Field: "tasks.total", Reason: fmt.Sprintf("is negative (%d)", d.Tasks.Total)}
	case d.Tasks.Completed < 0:
		return &ValidationError{Field: "tasks.completed", Reason: fmt.Sprintf("is negative (%d)", d.Tasks.Completed)}
	case d.Tasks.Overdue < 0:
		return &ValidationError{Field: "tasks.overdue", Reason: fmt.Sprintf("is negative (%d)", d.Tasks.Overdue)}
	case d.Commits.Weekly < 0 || d.Commits.Monthly < 0 || d.Commits.Total < 0:
		return &ValidationError{Field: "commits", Reason: "contains a negative count"}
	case d.ReopenedCount < 0:
		return &ValidationError{Field: "reopened_count", Reason: fmt.Sprintf("is negative (%d)", d.ReopenedCount)}
	}
	return nil
}
