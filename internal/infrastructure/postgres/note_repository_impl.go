package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/tradesync/internal/domain/entity"
	"github.com/oksasatya/tradesync/internal/domain/repository"
)

const noteColumns = `id::text, user_id::text, ticker, entry_price, position_type, note, chart_url, created_at`

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

func (r *NoteRepository) Create(ctx context.Context, n *entity.Note) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notes (user_id, ticker, entry_price, position_type, note, chart_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at
	`, n.UserID, n.Ticker, n.EntryPrice, string(n.PositionType), n.Body, n.ChartURL)

	if err := row.Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*entity.Note, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	return r.returning(row, "select note")
}

func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]entity.Note, error) {
	return r.list(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
}

func (r *NoteRepository) ListByIDs(ctx context.Context, userID string, ids []string) ([]entity.Note, error) {
	if len(ids) == 0 {
		return []entity.Note{}, nil
	}
	return r.list(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = $1 AND id::text = ANY($2)
		ORDER BY created_at DESC, id DESC
	`, userID, ids)
}

func (r *NoteRepository) Search(ctx context.Context, userID, q string, limit int) ([]entity.Note, error) {
	pattern := "%" + escapeLike(q) + "%"
	return r.list(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = $1 AND (ticker ILIKE $2 OR note ILIKE $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, userID, pattern, limit)
}

func (r *NoteRepository) Patch(ctx context.Context, id string, p entity.NotePatch) (*entity.Note, error) {
	var position *string
	if p.PositionType != nil {
		v := string(*p.PositionType)
		position = &v
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE notes
		SET ticker        = COALESCE($1, ticker),
		    entry_price   = COALESCE($2, entry_price),
		    position_type = COALESCE($3, position_type),
		    note          = COALESCE($4, note)
		WHERE id = $5
		RETURNING `+noteColumns, p.Ticker, p.EntryPrice, position, p.Body, id)
	return r.returning(row, "update note")
}

func (r *NoteRepository) SetChartURL(ctx context.Context, id, url string) (*entity.Note, error) {
	row := r.pool.QueryRow(ctx, `UPDATE notes SET chart_url = $1 WHERE id = $2 RETURNING `+noteColumns, url, id)
	return r.returning(row, "set chart url")
}

func (r *NoteRepository) returning(row pgx.Row, op string) (*entity.Note, error) {
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) list(ctx context.Context, query string, args ...any) ([]entity.Note, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

func scanNote(row pgx.Row) (*entity.Note, error) {
	n := &entity.Note{}
	var position string
	if err := row.Scan(&n.ID, &n.UserID, &n.Ticker, &n.EntryPrice, &position, &n.Body, &n.ChartURL, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.PositionType = entity.PositionType(position)
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ repository.NoteRepository = (*NoteRepository)(nil)
