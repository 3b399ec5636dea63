package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NotesMarkdown lays notes out as a markdown table, newest first as received.
func NotesMarkdown(notes []Note) string {
	if len(notes) == 0 {
		return "_No notes yet._\n"
	}
	var b strings.Builder
	b.WriteString("| Date | Ticker | Side | Entry | Note | ID |\n")
	b.WriteString("|---|---|---|---:|---|---|\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "| %s | **%s** | %s | %s | %s | `%s` |\n",
			n.CreatedAt.Local().Format("2006-01-02 15:04"),
			n.Ticker,
			n.PositionType,
			n.EntryPrice.String(),
			cell(n.Note),
			n.ID,
		)
	}
	return b.String()
}

// cell keeps a value on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// PrintMarkdown renders md for the terminal, falling back to the raw text.
func PrintMarkdown(w io.Writer, md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		if out, rerr := r.Render(md); rerr == nil {
			_, _ = io.WriteString(w, out)
			return
		}
	}
	_, _ = io.WriteString(w, md)
}
