package repository

import (
	"context"

	"github.com/oksasatya/tradesync/internal/domain/entity"
)

// NoteRepository persists trade-log entries.
type NoteRepository interface {
	Create(ctx context.Context, n *entity.Note) error
	GetByID(ctx context.Context, id string) (*entity.Note, error)
	// ListByUser returns the user's notes, newest first.
	ListByUser(ctx context.Context, userID string) ([]entity.Note, error)
	// ListByIDs returns the user's notes among ids, newest first.
	ListByIDs(ctx context.Context, userID string, ids []string) ([]entity.Note, error)
	// Search matches q case-insensitively against ticker and body.
	Search(ctx context.Context, userID, q string, limit int) ([]entity.Note, error)
	// Patch writes only the non-nil fields of p and returns the stored note.
	Patch(ctx context.Context, id string, p entity.NotePatch) (*entity.Note, error)
	SetChartURL(ctx context.Context, id, url string) (*entity.Note, error)
	Delete(ctx context.Context, id string) error
}
