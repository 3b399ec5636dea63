// Package apptest provides in-memory repositories for tests.
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/tradesync/internal/domain/entity"
	"github.com/oksasatya/tradesync/internal/domain/repository"
)

// clock hands out strictly increasing timestamps so ordering is deterministic.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.t.IsZero() {
		c.t = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type Users struct {
	mu    sync.Mutex
	clock clock
	byID  map[string]entity.User
}

func NewUsers() *Users {
	return &Users{byID: map[string]entity.User{}}
}

func (r *Users) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.clock.next()
	r.byID[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Count reports how many users are stored.
func (r *Users) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type Notes struct {
	mu    sync.Mutex
	clock clock
	byID  map[string]entity.Note
}

func NewNotes() *Notes {
	return &Notes{byID: map[string]entity.Note{}}
}

func (r *Notes) Create(_ context.Context, n *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = r.clock.next()
	r.byID[n.ID] = *n
	return nil
}

func (r *Notes) GetByID(_ context.Context, id string) (*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &n, nil
}

func (r *Notes) ListByUser(_ context.Context, userID string) ([]entity.Note, error) {
	return r.filter(func(n entity.Note) bool { return n.UserID == userID }), nil
}

func (r *Notes) ListByIDs(_ context.Context, userID string, ids []string) ([]entity.Note, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(n entity.Note) bool { return n.UserID == userID && want[n.ID] }), nil
}

func (r *Notes) Search(_ context.Context, userID, q string, limit int) ([]entity.Note, error) {
	q = strings.ToLower(q)
	out := r.filter(func(n entity.Note) bool {
		return n.UserID == userID &&
			(strings.Contains(strings.ToLower(n.Ticker), q) || strings.Contains(strings.ToLower(n.Body), q))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Notes) Patch(_ context.Context, id string, p entity.NotePatch) (*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Apply(&n)
	r.byID[id] = n
	return &n, nil
}

func (r *Notes) SetChartURL(_ context.Context, id, url string) (*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	n.ChartURL = url
	r.byID[id] = n
	return &n, nil
}

func (r *Notes) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// filter returns matching notes, newest first.
func (r *Notes) filter(keep func(entity.Note) bool) []entity.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Note, 0)
	for _, n := range r.byID {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var (
	_ repository.UserRepository = (*Users)(nil)
	_ repository.NoteRepository = (*Notes)(nil)
)
