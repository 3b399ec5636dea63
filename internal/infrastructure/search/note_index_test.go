package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tradesync/internal/domain/entity"
)

func TestSearchQuery_FiltersByOwner(t *testing.T) {
	owner := uuid.NewString()
	b, err := json.Marshal(searchQuery(owner, "btc", 10))
	require.NoError(t, err)

	var q struct {
		Query struct {
			Bool struct {
				Filter []map[string]map[string]string `json:"filter"`
			} `json:"bool"`
		} `json:"query"`
		Size int `json:"size"`
	}
	require.NoError(t, json.Unmarshal(b, &q))

	require.Len(t, q.Query.Bool.Filter, 1)
	assert.Equal(t, owner, q.Query.Bool.Filter[0]["term"]["user_id"])
	assert.Equal(t, 10, q.Size)
}

// fakeES is a single-index stand-in for Elasticsearch. Fields without an
// explicit keyword mapping are tokenized like the standard analyzer, so a
// term query only matches them token by token.
type fakeES struct {
	mu      sync.Mutex
	index   string
	created bool
	types   map[string]string
	docs    map[string]map[string]string
}

func newFakeES(t *testing.T, index string) (*elasticsearch.Client, *fakeES) {
	t.Helper()
	f := &fakeES{index: index, types: map[string]string{}, docs: map[string]map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, f
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if parts[0] != f.index {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if !f.created {
			w.WriteHeader(http.StatusNotFound)
		}
	case len(parts) == 1 && r.Method == http.MethodPut:
		f.createIndex(w, r)
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodPut:
		var doc map[string]string
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[parts[2]] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if _, ok := f.docs[parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		delete(f.docs, parts[2])
		_, _ = w.Write([]byte(`{"result":"deleted"}`))
	case len(parts) == 2 && parts[1] == "_search":
		f.search(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeES) createIndex(w http.ResponseWriter, r *http.Request) {
	if f.created {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"}}`))
		return
	}
	var body struct {
		Mappings struct {
			Properties map[string]struct {
				Type string `json:"type"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	for field, p := range body.Mappings.Properties {
		f.types[field] = p.Type
	}
	f.created = true
	_, _ = w.Write([]byte(`{"acknowledged":true}`))
}

func (f *fakeES) search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query struct {
			Bool struct {
				Must struct {
					MultiMatch struct {
						Query  string   `json:"query"`
						Fields []string `json:"fields"`
					} `json:"multi_match"`
				} `json:"must"`
				Filter []struct {
					Term map[string]string `json:"term"`
				} `json:"filter"`
			} `json:"bool"`
		} `json:"query"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	type hit struct {
		ID string `json:"_id"`
	}
	hits := []hit{}
	for id, doc := range f.docs {
		if f.matchesFilters(doc, body.Query.Bool.Filter) && f.matchesText(doc, body.Query.Bool.Must.MultiMatch.Query, body.Query.Bool.Must.MultiMatch.Fields) {
			hits = append(hits, hit{ID: id})
		}
	}
	out := map[string]any{"hits": map[string]any{"hits": hits}}
	_ = json.NewEncoder(w).Encode(out)
}

func (f *fakeES) matchesFilters(doc map[string]string, filters []struct {
	Term map[string]string `json:"term"`
}) bool {
	for _, flt := range filters {
		for field, want := range flt.Term {
			if f.types[field] == "keyword" {
				if doc[field] != want {
					return false
				}
				continue
			}
			found := false
			for _, tok := range tokens(doc[field]) {
				if tok == want {
					found = true
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func (f *fakeES) matchesText(doc map[string]string, q string, fields []string) bool {
	for _, field := range fields {
		field = strings.SplitN(field, "^", 2)[0]
		for _, dt := range tokens(doc[field]) {
			for _, qt := range tokens(q) {
				if dt == qt {
					return true
				}
			}
		}
	}
	return false
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func newNote(owner, ticker, body string) *entity.Note {
	return &entity.Note{
		ID:           uuid.NewString(),
		UserID:       owner,
		Ticker:       ticker,
		EntryPrice:   decimal.RequireFromString("64000"),
		PositionType: entity.Long,
		Body:         body,
		CreatedAt:    time.Now(),
	}
}

func TestNoteIndex_EnsureIndexMapsOwnerAsKeyword(t *testing.T) {
	es, f := newFakeES(t, "notes")
	idx := NewNoteIndex(es, "notes")

	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Equal(t, "keyword", f.types["user_id"])
	assert.Equal(t, "keyword", f.types["id"])
	assert.Equal(t, "text", f.types["note"])
}

func TestNoteIndex_SearchMatchesOwnerUUID(t *testing.T) {
	es, _ := newFakeES(t, "notes")
	idx := NewNoteIndex(es, "notes")
	ctx := context.Background()
	require.NoError(t, idx.EnsureIndex(ctx))

	owner, other := uuid.NewString(), uuid.NewString()
	mine := newNote(owner, "BTC", "range breakout")
	quiet := newNote(owner, "ETH", "trend")
	theirs := newNote(other, "BTC", "breakout")
	for _, n := range []*entity.Note{mine, quiet, theirs} {
		require.NoError(t, idx.Index(ctx, n))
	}

	ids, err := idx.Search(ctx, owner, "breakout", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, ids)

	ids, err = idx.Search(ctx, owner, "btc", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, ids)

	require.NoError(t, idx.Remove(ctx, mine.ID))
	require.NoError(t, idx.Remove(ctx, mine.ID))

	ids, err = idx.Search(ctx, owner, "breakout", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNoteIndex_DynamicMappingMissesOwner(t *testing.T) {
	es, _ := newFakeES(t, "notes")
	idx := NewNoteIndex(es, "notes")
	ctx := context.Background()

	owner := uuid.NewString()
	require.NoError(t, idx.Index(ctx, newNote(owner, "BTC", "breakout")))

	ids, err := idx.Search(ctx, owner, "breakout", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
