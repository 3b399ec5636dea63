package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/oksasatya/tradesync/internal/client"
)

type registerCmd struct {
	name  string
	email string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account and sign in" }
func (*registerCmd) Usage() string {
	return `tradesync register [-name <full name>] [-email <email>]

  Creates an account. The password is always prompted for.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "full name")
	f.StringVar(&c.email, "email", "", "email address")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, store, err := session()
	if err != nil {
		return fail(err)
	}
	name, err := ask(c.name, "Full name")
	if err != nil {
		return fail(err)
	}
	email, err := ask(c.email, "Email")
	if err != nil {
		return fail(err)
	}
	password, err := promptPassword()
	if err != nil {
		return fail(err)
	}

	res, err := api.Register(ctx, name, email, password)
	if err != nil {
		return fail(err)
	}
	if err := store.Save(res.Token); err != nil {
		return fail(err)
	}
	fmt.Printf("Welcome, %s.\n", res.User.FullName)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	email string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in and cache the session token" }
func (*loginCmd) Usage() string {
	return `tradesync login [-email <email>]
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "email address")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, store, err := session()
	if err != nil {
		return fail(err)
	}
	email, err := ask(c.email, "Email")
	if err != nil {
		return fail(err)
	}
	password, err := promptPassword()
	if err != nil {
		return fail(err)
	}

	res, err := api.Login(ctx, email, password)
	if err != nil {
		return fail(err)
	}
	if err := store.Save(res.Token); err != nil {
		return fail(err)
	}
	fmt.Printf("Signed in as %s.\n", res.User.Email)
	return subcommands.ExitSuccess
}

type logoutCmd struct{}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "forget the cached session token" }
func (*logoutCmd) Usage() string            { return "tradesync logout\n" }
func (*logoutCmd) SetFlags(_ *flag.FlagSet) {}

func (*logoutCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, store, err := session()
	if err != nil {
		return fail(err)
	}
	if err := store.Clear(); err != nil {
		return fail(err)
	}
	fmt.Println("Signed out.")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string             { return "whoami" }
func (*whoamiCmd) Synopsis() string         { return "show the signed-in account" }
func (*whoamiCmd) Usage() string            { return "tradesync whoami\n" }
func (*whoamiCmd) SetFlags(_ *flag.FlagSet) {}

func (*whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, _, err := session()
	if err != nil {
		return fail(err)
	}
	u, err := api.Me(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s <%s>\nid: %s\nsince: %s\n", u.FullName, u.Email, u.ID, u.CreatedAt.Local().Format("2006-01-02"))
	return subcommands.ExitSuccess
}

func promptPassword() (string, error) {
	return client.PromptPassword(os.Stdout)
}
