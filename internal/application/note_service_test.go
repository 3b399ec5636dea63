package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tradesync/internal/application/apptest"
	"github.com/oksasatya/tradesync/internal/domain/entity"
)

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Index(ctx context.Context, n *entity.Note) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockIndex) Search(ctx context.Context, userID, q string, limit int) ([]string, error) {
	args := m.Called(ctx, userID, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type fakeCharts struct {
	paths []string
	body  string
}

func (f *fakeCharts) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	f.body = string(b)
	return "https://storage.example/" + objectPath, nil
}

func strPtr(s string) *string { return &s }

func newNoteService() (*NoteService, *apptest.Notes) {
	notes := apptest.NewNotes()
	return NewNoteService(notes, nil, nil, quietLogger()), notes
}

func mustCreate(t *testing.T, svc *NoteService, userID, ticker string) *entity.Note {
	t.Helper()
	n, err := svc.Create(context.Background(), userID, CreateNoteInput{
		Ticker:     ticker,
		EntryPrice: decimal.RequireFromString("64000"),
		Body:       "breakout",
	})
	require.NoError(t, err)
	return n
}

func TestCreate_NormalizesTickerAndDefaultsLong(t *testing.T) {
	svc, _ := newNoteService()
	n := mustCreate(t, svc, "u1", " btc ")

	assert.Equal(t, "BTC", n.Ticker)
	assert.Equal(t, entity.Long, n.PositionType)
	assert.Equal(t, "u1", n.UserID)
	assert.NotEmpty(t, n.ID)
}

func TestList_NewestFirstAndScopedToOwner(t *testing.T) {
	svc, _ := newNoteService()
	first := mustCreate(t, svc, "u1", "BTC")
	second := mustCreate(t, svc, "u1", "ETH")
	mustCreate(t, svc, "u2", "SOL")

	got, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestUpdate_PartialChangesOnlySuppliedFields(t *testing.T) {
	svc, _ := newNoteService()
	n := mustCreate(t, svc, "u1", "BTC")

	updated, err := svc.Update(context.Background(), "u1", n.ID, entity.NotePatch{Body: strPtr("closed early")})
	require.NoError(t, err)

	assert.Equal(t, "closed early", updated.Body)
	assert.Equal(t, "BTC", updated.Ticker)
	assert.True(t, n.EntryPrice.Equal(updated.EntryPrice))
	assert.Equal(t, entity.Long, updated.PositionType)
}

func TestUpdate_NormalizesTicker(t *testing.T) {
	svc, _ := newNoteService()
	n := mustCreate(t, svc, "u1", "BTC")

	updated, err := svc.Update(context.Background(), "u1", n.ID, entity.NotePatch{Ticker: strPtr("eth")})
	require.NoError(t, err)
	assert.Equal(t, "ETH", updated.Ticker)
}

func TestUpdate_EmptyPatchReturnsCurrent(t *testing.T) {
	svc, _ := newNoteService()
	n := mustCreate(t, svc, "u1", "BTC")

	got, err := svc.Update(context.Background(), "u1", n.ID, entity.NotePatch{})
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.Body, got.Body)

	_, err = svc.Update(context.Background(), "u2", n.ID, entity.NotePatch{})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, field, fe.Field)
}

func TestCreate_ValidatesNormalizedFields(t *testing.T) {
	svc, notes := newNoteService()
	ctx := context.Background()
	price := decimal.RequireFromString("1")

	_, err := svc.Create(ctx, "u1", CreateNoteInput{Ticker: "   ", EntryPrice: price, Body: "x"})
	requireFieldError(t, err, "ticker")

	_, err = svc.Create(ctx, "u1", CreateNoteInput{Ticker: "BTC", EntryPrice: price})
	requireFieldError(t, err, "note")

	_, err = svc.Create(ctx, "u1", CreateNoteInput{Ticker: "BTC", EntryPrice: price, Body: "x", PositionType: entity.PositionType("Sideways")})
	requireFieldError(t, err, "positionType")

	all, err := notes.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdate_ValidatesAfterOwnership(t *testing.T) {
	svc, _ := newNoteService()
	ctx := context.Background()
	n := mustCreate(t, svc, "u1", "BTC")
	bad := entity.PositionType("Sideways")

	_, err := svc.Update(ctx, "u1", n.ID, entity.NotePatch{PositionType: &bad})
	requireFieldError(t, err, "positionType")
	_, err = svc.Update(ctx, "u1", n.ID, entity.NotePatch{Ticker: strPtr("  ")})
	requireFieldError(t, err, "ticker")
	_, err = svc.Update(ctx, "u1", n.ID, entity.NotePatch{Body: strPtr("")})
	requireFieldError(t, err, "note")

	_, err = svc.Update(ctx, "u2", n.ID, entity.NotePatch{PositionType: &bad})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = svc.Update(ctx, "u1", uuid.NewString(), entity.NotePatch{Body: strPtr("")})
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestMutations_AcceptAnyUUIDSpelling(t *testing.T) {
	svc, _ := newNoteService()
	ctx := context.Background()
	n := mustCreate(t, svc, "u1", "BTC")

	got, err := svc.Update(ctx, "u1", "urn:uuid:"+n.ID, entity.NotePatch{Body: strPtr("urn")})
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	got, err = svc.Update(ctx, "u1", strings.ToUpper(n.ID), entity.NotePatch{Body: strPtr("upper")})
	require.NoError(t, err)
	assert.Equal(t, "upper", got.Body)

	require.NoError(t, svc.Delete(ctx, "u1", "{"+n.ID+"}"))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", n.ID), ErrNoteNotFound)
}

func TestMutations_CrossUserIsolation(t *testing.T) {
	svc, notes := newNoteService()
	ctx := context.Background()
	n := mustCreate(t, svc, "owner", "BTC")

	_, err := svc.Update(ctx, "intruder", n.ID, entity.NotePatch{Body: strPtr("hacked")})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = svc.Delete(ctx, "intruder", n.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	stored, err := notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "breakout", stored.Body)
}

func TestMutations_MissingNote(t *testing.T) {
	svc, _ := newNoteService()
	ctx := context.Background()

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := svc.Update(ctx, "u1", id, entity.NotePatch{Body: strPtr("x")})
		assert.ErrorIs(t, err, ErrNoteNotFound, id)
		assert.ErrorIs(t, svc.Delete(ctx, "u1", id), ErrNoteNotFound, id)
	}
}

func TestDelete_TwiceIsNotFound(t *testing.T) {
	svc, _ := newNoteService()
	ctx := context.Background()
	n := mustCreate(t, svc, "u1", "BTC")

	require.NoError(t, svc.Delete(ctx, "u1", n.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", n.ID), ErrNoteNotFound)
}

func TestSearch_FallsBackToRepository(t *testing.T) {
	svc, _ := newNoteService()
	ctx := context.Background()
	mustCreate(t, svc, "u1", "BTC")
	mustCreate(t, svc, "u1", "ETH")
	mustCreate(t, svc, "u2", "BTC")

	got, err := svc.Search(ctx, "u1", "btc", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)
}

func TestSearch_UsesIndexAndOwnerScope(t *testing.T) {
	notes := apptest.NewNotes()
	idx := new(MockIndex)
	idx.On("Index", mock.Anything, mock.Anything).Return(nil)
	svc := NewNoteService(notes, idx, nil, quietLogger())
	ctx := context.Background()

	mine := mustCreate(t, svc, "u1", "BTC")
	theirs := mustCreate(t, svc, "u2", "BTC")

	// an index returning a foreign id must not leak it
	idx.On("Search", mock.Anything, "u1", "btc", DefaultSearchLimit).Return([]string{mine.ID, theirs.ID}, nil)

	got, err := svc.Search(ctx, "u1", "btc", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
	idx.AssertNumberOfCalls(t, "Index", 2)
}

func TestSearch_IndexFailureFallsBack(t *testing.T) {
	notes := apptest.NewNotes()
	idx := new(MockIndex)
	idx.On("Index", mock.Anything, mock.Anything).Return(errors.New("es down"))
	idx.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("es down"))
	svc := NewNoteService(notes, idx, nil, quietLogger())

	mustCreate(t, svc, "u1", "BTC")
	got, err := svc.Search(context.Background(), "u1", "BTC", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDelete_RemovesFromIndex(t *testing.T) {
	notes := apptest.NewNotes()
	idx := new(MockIndex)
	idx.On("Index", mock.Anything, mock.Anything).Return(nil)
	svc := NewNoteService(notes, idx, nil, quietLogger())
	n := mustCreate(t, svc, "u1", "BTC")
	idx.On("Remove", mock.Anything, n.ID).Return(nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "u1", n.ID))
	idx.AssertExpectations(t)
}

func TestAttachChart(t *testing.T) {
	notes := apptest.NewNotes()
	charts := &fakeCharts{}
	svc := NewNoteService(notes, nil, charts, quietLogger())
	ctx := context.Background()
	n := mustCreate(t, svc, "u1", "BTC")

	up := ChartUpload{Filename: "Setup.PNG", ContentType: "image/png", Content: strings.NewReader("png")}
	got, err := svc.AttachChart(ctx, "u1", n.ID, up)
	require.NoError(t, err)

	require.Len(t, charts.paths, 1)
	assert.True(t, strings.HasPrefix(charts.paths[0], "charts/u1/"+n.ID+"/"))
	assert.True(t, strings.HasSuffix(charts.paths[0], ".png"))
	assert.Equal(t, "png", charts.body)
	assert.Equal(t, "https://storage.example/"+charts.paths[0], got.ChartURL)

	_, err = svc.AttachChart(ctx, "u2", n.ID, up)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAttachChart_StorageUnavailable(t *testing.T) {
	svc, _ := newNoteService()
	n := mustCreate(t, svc, "u1", "BTC")

	_, err := svc.AttachChart(context.Background(), "u1", n.ID, ChartUpload{Filename: "a.png", Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrChartStorageUnavailable)
}
