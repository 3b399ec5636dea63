package application

import (
	"context"
	"errors"
	"expvar"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tradesync/internal/domain/entity"
	"github.com/oksasatya/tradesync/internal/domain/policy"
	repo "github.com/oksasatya/tradesync/internal/domain/repository"
	"github.com/oksasatya/tradesync/pkg/helpers"
)

var (
	ErrNoteNotFound            = errors.New("note not found")
	ErrNotAuthorized           = errors.New("not authorized")
	ErrChartStorageUnavailable = errors.New("chart storage unavailable")
)

// FieldError rejects a note field that is empty or unknown once normalized.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Reason }

const (
	reasonRequired = "is required"
	reasonPosition = "must be one of: Long, Short"
)

// DefaultSearchLimit caps search results.
const DefaultSearchLimit = 50

var (
	notesCreated = expvar.NewInt("notes_created")
	notesDeleted = expvar.NewInt("notes_deleted")
	accessDenied = expvar.NewInt("notes_access_denied")
)

// NoteIndex is a full-text index over notes. Results are note ids.
type NoteIndex interface {
	Index(ctx context.Context, n *entity.Note) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, userID, q string, limit int) ([]string, error)
}

// ChartStore keeps uploaded chart images and returns their public URL.
type ChartStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// CreateNoteInput is a new trade-log entry. An empty PositionType means Long.
type CreateNoteInput struct {
	Ticker       string
	EntryPrice   decimal.Decimal
	PositionType entity.PositionType
	Body         string
}

// ChartUpload is an image attached to a note.
type ChartUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type NoteService struct {
	Repo repo.NoteRepository
	// Index and Charts are optional.
	Index  NoteIndex
	Charts ChartStore
	Logger *logrus.Logger
}

func NewNoteService(r repo.NoteRepository, index NoteIndex, charts ChartStore, logger *logrus.Logger) *NoteService {
	return &NoteService{Repo: r, Index: index, Charts: charts, Logger: logger}
}

// List returns the caller's notes, newest first.
func (s *NoteService) List(ctx context.Context, userID string) ([]entity.Note, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *NoteService) Create(ctx context.Context, userID string, in CreateNoteInput) (*entity.Note, error) {
	pos := in.PositionType
	if pos == "" {
		pos = entity.Long
	}
	n := &entity.Note{
		UserID:       userID,
		Ticker:       entity.NormalizeTicker(in.Ticker),
		EntryPrice:   in.EntryPrice,
		PositionType: pos,
		Body:         in.Body,
	}
	switch {
	case n.Ticker == "":
		return nil, &FieldError{Field: "ticker", Reason: reasonRequired}
	case n.Body == "":
		return nil, &FieldError{Field: "note", Reason: reasonRequired}
	case !pos.Valid():
		return nil, &FieldError{Field: "positionType", Reason: reasonPosition}
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return nil, err
	}
	notesCreated.Add(1)
	s.index(ctx, n)
	return n, nil
}

// Update applies the non-nil fields of patch to the caller's note. Ownership
// is checked before the fields are validated.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, patch entity.NotePatch) (*entity.Note, error) {
	current, err := s.authorize(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if patch.Ticker != nil {
		t := entity.NormalizeTicker(*patch.Ticker)
		if t == "" {
			return nil, &FieldError{Field: "ticker", Reason: reasonRequired}
		}
		patch.Ticker = &t
	}
	if patch.Body != nil && *patch.Body == "" {
		return nil, &FieldError{Field: "note", Reason: reasonRequired}
	}
	if patch.PositionType != nil && !patch.PositionType.Valid() {
		return nil, &FieldError{Field: "positionType", Reason: reasonPosition}
	}
	if patch.Empty() {
		return current, nil
	}
	n, err := s.Repo.Patch(ctx, current.ID, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	s.index(ctx, n)
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	note, err := s.authorize(ctx, userID, noteID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, note.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	notesDeleted.Add(1)
	if s.Index != nil {
		if err := s.Index.Remove(ctx, note.ID); err != nil {
			helpers.LogWarn(s.Logger, "unindex note", err, logrus.Fields{"note_id": note.ID})
		}
	}
	return nil
}

// Search finds the caller's notes whose ticker or body match q. The index is
// tried first; any index failure falls back to the database.
func (s *NoteService) Search(ctx context.Context, userID, q string, limit int) ([]entity.Note, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(ctx, userID)
	}
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, userID, q, limit)
		if err == nil {
			return s.Repo.ListByIDs(ctx, userID, ids)
		}
		helpers.LogWarn(s.Logger, "note index search", err, logrus.Fields{"user_id": userID})
	}
	return s.Repo.Search(ctx, userID, q, limit)
}

// AttachChart stores a chart image for the caller's note and records its URL.
func (s *NoteService) AttachChart(ctx context.Context, userID, noteID string, up ChartUpload) (*entity.Note, error) {
	if s.Charts == nil {
		return nil, ErrChartStorageUnavailable
	}
	note, err := s.authorize(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	object := helpers.ChartObjectPath(userID, note.ID, uuid.NewString(), up.Filename)
	url, err := s.Charts.Upload(ctx, object, up.ContentType, up.Content)
	if err != nil {
		return nil, err
	}
	n, err := s.Repo.SetChartURL(ctx, note.ID, url)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	s.index(ctx, n)
	return n, nil
}

// authorize loads the note and runs the ownership policy on it. Ids that are
// not UUIDs are unknown notes; the rest are looked up in canonical form.
func (s *NoteService) authorize(ctx context.Context, userID, noteID string) (*entity.Note, error) {
	var note *entity.Note
	if id, err := uuid.Parse(noteID); err == nil {
		n, err := s.Repo.GetByID(ctx, id.String())
		switch {
		case err == nil:
			note = n
		case !errors.Is(err, repo.ErrNotFound):
			return nil, err
		}
	}

	switch policy.BelongsTo(note, userID) {
	case policy.NotFound:
		return nil, ErrNoteNotFound
	case policy.Forbidden:
		accessDenied.Add(1)
		helpers.LogWarn(s.Logger, "note access denied", nil, logrus.Fields{"user_id": userID, "note_id": noteID})
		return nil, ErrNotAuthorized
	}
	return note, nil
}

func (s *NoteService) index(ctx context.Context, n *entity.Note) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, n); err != nil {
		helpers.LogWarn(s.Logger, "index note", err, logrus.Fields{"note_id": n.ID})
	}
}
