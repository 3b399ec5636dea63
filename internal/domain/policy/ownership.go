// Package policy holds authorization decisions over domain resources.
package policy

import "github.com/oksasatya/tradesync/internal/domain/entity"

// Decision is the outcome of an ownership check.
type Decision int

const (
	Allowed Decision = iota
	NotFound
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// BelongsTo decides whether callerID may act on note. Existence is checked
// before ownership, so a missing note is always NotFound.
func BelongsTo(note *entity.Note, callerID string) Decision {
	if note == nil {
		return NotFound
	}
	if callerID == "" || note.UserID != callerID {
		return Forbidden
	}
	return Allowed
}
