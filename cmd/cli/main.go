// Command tradesync is a terminal client for the TradeSync API.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&registerCmd{}, "account")
	subcommands.Register(&loginCmd{}, "account")
	subcommands.Register(&logoutCmd{}, "account")
	subcommands.Register(&whoamiCmd{}, "account")

	subcommands.Register(&notesCmd{}, "journal")
	subcommands.Register(&addCmd{}, "journal")
	subcommands.Register(&editCmd{}, "journal")
	subcommands.Register(&rmCmd{}, "journal")
	subcommands.Register(&searchCmd{}, "journal")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
