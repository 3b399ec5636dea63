package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PositionType is the side of a journaled trade.
type PositionType string

const (
	Long  PositionType = "Long"
	Short PositionType = "Short"
)

// Valid reports whether p is one of the known position types.
func (p PositionType) Valid() bool {
	return p == Long || p == Short
}

// Note is a single trade-log entry. UserID is the owner and never changes
// after creation.
type Note struct {
	ID           string
	UserID       string
	Ticker       string
	EntryPrice   decimal.Decimal
	PositionType PositionType
	Body         string
	ChartURL     string
	CreatedAt    time.Time
}

// NormalizeTicker upper-cases and trims a ticker symbol (btc -> BTC).
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// NotePatch carries the fields of a partial update. Nil fields are left untouched.
type NotePatch struct {
	Ticker       *string
	EntryPrice   *decimal.Decimal
	PositionType *PositionType
	Body         *string
}

// Apply copies the non-nil fields of p onto n.
func (p NotePatch) Apply(n *Note) {
	if p.Ticker != nil {
		n.Ticker = NormalizeTicker(*p.Ticker)
	}
	if p.EntryPrice != nil {
		n.EntryPrice = *p.EntryPrice
	}
	if p.PositionType != nil {
		n.PositionType = *p.PositionType
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Ticker == nil && p.EntryPrice == nil && p.PositionType == nil && p.Body == nil
}
