// Package client talks to the TradeSync HTTP API on behalf of the terminal app.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenHeader must match the header the API reads.
const TokenHeader = "x-auth-token"

// APIError is a non-2xx response. Msg is the server's "msg" verbatim.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return http.StatusText(e.Status)
	}
	return e.Msg
}

type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Note struct {
	ID           string          `json:"id"`
	User         string          `json:"user"`
	Ticker       string          `json:"ticker"`
	EntryPrice   decimal.Decimal `json:"entryPrice"`
	PositionType string          `json:"positionType"`
	Note         string          `json:"note"`
	ChartURL     string          `json:"chartUrl,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NoteInput is the body of create and update. Nil fields are omitted, which
// an update treats as unchanged.
type NoteInput struct {
	Ticker       *string          `json:"ticker,omitempty"`
	EntryPrice   *decimal.Decimal `json:"entryPrice,omitempty"`
	PositionType *string          `json:"positionType,omitempty"`
	Note         *string          `json:"note,omitempty"`
}

// APIClient is a thin JSON client. Token, when set, is sent on every request.
type APIClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *APIClient) Register(ctx context.Context, fullName, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"fullName": fullName, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/auth/user", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListNotes(ctx context.Context) ([]Note, error) {
	var out []Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) SearchNotes(ctx context.Context, q string) ([]Note, error) {
	var out []Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/search?q="+url.QueryEscape(q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) CreateNote(ctx context.Context, in NoteInput) (*Note, error) {
	var out Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) UpdateNote(ctx context.Context, id string, in NoteInput) (*Note, error) {
	var out Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNote returns the server's confirmation message.
func (c *APIClient) DeleteNote(ctx context.Context, id string) (string, error) {
	var out struct {
		Msg string `json:"msg"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, &out); err != nil {
		return "", err
	}
	return out.Msg, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set(TokenHeader, c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e struct {
			Msg string `json:"msg"`
		}
		_ = json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&e)
		return &APIError{Status: res.StatusCode, Msg: e.Msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
