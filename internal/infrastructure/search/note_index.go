// Package search keeps notes in an Elasticsearch index for full-text lookup.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/tradesync/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// NoteIndex stores one document per note, keyed by note id.
type NoteIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewNoteIndex(es *elasticsearch.Client, index string) *NoteIndex {
	return &NoteIndex{es: es, index: index}
}

// notesMapping keeps ids as keywords so the owner filter matches whole UUIDs.
const notesMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "keyword"},
      "user_id":       {"type": "keyword"},
      "ticker":        {"type": "text"},
      "position_type": {"type": "keyword"},
      "entry_price":   {"type": "keyword"},
      "note":          {"type": "text"},
      "created_at":    {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *NoteIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("es exists: %s", res.Status())
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(c),
		x.es.Indices.Create.WithBody(strings.NewReader(notesMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		// another instance may have created it first
		b, _ := io.ReadAll(res.Body)
		if strings.Contains(string(b), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}

type noteDoc struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Ticker       string `json:"ticker"`
	PositionType string `json:"position_type"`
	EntryPrice   string `json:"entry_price"`
	Note         string `json:"note"`
	CreatedAt    string `json:"created_at"`
}

func (x *NoteIndex) Index(ctx context.Context, n *entity.Note) error {
	b, err := json.Marshal(noteDoc{
		ID:           n.ID,
		UserID:       n.UserID,
		Ticker:       n.Ticker,
		PositionType: string(n.PositionType),
		EntryPrice:   n.EntryPrice.String(),
		Note:         n.Body,
		CreatedAt:    n.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: n.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Remove deletes the note document. A missing document is not an error.
func (x *NoteIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match on ticker and note text, always filtered to userID.
func (x *NoteIndex) Search(ctx context.Context, userID, q string, limit int) ([]string, error) {
	b, err := json.Marshal(searchQuery(userID, q, limit))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func searchQuery(userID, q string, limit int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"ticker^2", "note"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
			},
		},
		"size": limit,
	}
}
