package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/tradesync/internal/client"
)

type notesCmd struct{}

func (*notesCmd) Name() string             { return "notes" }
func (*notesCmd) Synopsis() string         { return "list your trade notes, newest first" }
func (*notesCmd) Usage() string            { return "tradesync notes\n" }
func (*notesCmd) SetFlags(_ *flag.FlagSet) {}

func (*notesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, _, err := session()
	if err != nil {
		return fail(err)
	}
	notes, err := api.ListNotes(ctx)
	if err != nil {
		return fail(err)
	}
	client.PrintMarkdown(os.Stdout, client.NotesMarkdown(notes))
	return subcommands.ExitSuccess
}

type searchCmd struct{}

func (*searchCmd) Name() string             { return "search" }
func (*searchCmd) Synopsis() string         { return "search your notes by ticker or text" }
func (*searchCmd) Usage() string            { return "tradesync search <query>\n" }
func (*searchCmd) SetFlags(_ *flag.FlagSet) {}

func (*searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q := strings.Join(f.Args(), " ")
	if q == "" {
		fmt.Fprintln(os.Stderr, "Error: missing query")
		return subcommands.ExitUsageError
	}
	api, _, err := session()
	if err != nil {
		return fail(err)
	}
	notes, err := api.SearchNotes(ctx, q)
	if err != nil {
		return fail(err)
	}
	client.PrintMarkdown(os.Stdout, client.NotesMarkdown(notes))
	return subcommands.ExitSuccess
}

// noteFlags are shared by add and edit. Unset flags stay nil.
type noteFlags struct {
	ticker   string
	price    string
	position string
	note     string
}

func (n *noteFlags) register(f *flag.FlagSet) {
	f.StringVar(&n.ticker, "t", "", "ticker symbol, e.g. BTC")
	f.StringVar(&n.price, "p", "", "entry price")
	f.StringVar(&n.position, "side", "", "Long or Short")
	f.StringVar(&n.note, "m", "", "note text")
}

func (n *noteFlags) input() (client.NoteInput, error) {
	var in client.NoteInput
	if n.ticker != "" {
		in.Ticker = &n.ticker
	}
	if n.price != "" {
		d, err := decimal.NewFromString(n.price)
		if err != nil {
			return in, fmt.Errorf("invalid entry price %q", n.price)
		}
		in.EntryPrice = &d
	}
	if n.position != "" {
		in.PositionType = &n.position
	}
	if n.note != "" {
		in.Note = &n.note
	}
	return in, nil
}

type addCmd struct {
	noteFlags
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "journal a new trade" }
func (*addCmd) Usage() string {
	return `tradesync add [-t <ticker>] [-p <price>] [-side Long|Short] [-m <note>]

  Missing ticker, price or note are prompted for. Side defaults to Long.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var err error
	if c.ticker, err = ask(c.ticker, "Ticker"); err != nil {
		return fail(err)
	}
	if c.price, err = ask(c.price, "Entry price"); err != nil {
		return fail(err)
	}
	if c.note, err = ask(c.note, "Note"); err != nil {
		return fail(err)
	}
	in, err := c.input()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	api, _, err := session()
	if err != nil {
		return fail(err)
	}
	n, err := api.CreateNote(ctx, in)
	if err != nil {
		return fail(err)
	}
	client.PrintMarkdown(os.Stdout, client.NotesMarkdown([]client.Note{*n}))
	return subcommands.ExitSuccess
}

type editCmd struct {
	noteFlags
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change fields of a trade note" }
func (*editCmd) Usage() string {
	return `tradesync edit [-t <ticker>] [-p <price>] [-side Long|Short] [-m <note>] <id>

  Only the given flags are changed.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one note id")
		return subcommands.ExitUsageError
	}
	in, err := c.input()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	api, _, err := session()
	if err != nil {
		return fail(err)
	}
	n, err := api.UpdateNote(ctx, f.Arg(0), in)
	if err != nil {
		return fail(err)
	}
	client.PrintMarkdown(os.Stdout, client.NotesMarkdown([]client.Note{*n}))
	return subcommands.ExitSuccess
}

type rmCmd struct{}

func (*rmCmd) Name() string             { return "rm" }
func (*rmCmd) Synopsis() string         { return "delete a trade note" }
func (*rmCmd) Usage() string            { return "tradesync rm <id>\n" }
func (*rmCmd) SetFlags(_ *flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one note id")
		return subcommands.ExitUsageError
	}
	api, _, err := session()
	if err != nil {
		return fail(err)
	}
	msg, err := api.DeleteNote(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	fmt.Println(msg)
	return subcommands.ExitSuccess
}
