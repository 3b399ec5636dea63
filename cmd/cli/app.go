package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/subcommands"

	"github.com/oksasatya/tradesync/internal/client"
)

var serverURL = flag.String("server", envOr("TRADESYNC_URL", "http://localhost:5000"), "TradeSync API base URL")

var stdin = bufio.NewReader(os.Stdin)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// session returns an API client carrying the cached token, if any.
func session() (*client.APIClient, *client.TokenStore, error) {
	store, err := client.DefaultTokenStore()
	if err != nil {
		return nil, nil, err
	}
	token, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return client.NewAPIClient(*serverURL, token), store, nil
}

// fail prints err the way the server phrased it and picks an exit status.
func fail(err error) subcommands.ExitStatus {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		fmt.Fprintf(os.Stderr, "Error: %s (try `tradesync login`)\n", apiErr.Msg)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// ask returns value, prompting for it when empty.
func ask(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return client.Prompt(stdin, os.Stdout, label)
}
