// Command jsonapi talks to a JSON:API server from the command line, using
// the resource types declared in a YAML config.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/tailbits/jsonapi"
)

var (
	configPath string
	baseURL    string
	headers    []string
	noPlural   bool
	noSnake    bool
	validate   bool
	dryRun     bool
	dump       bool
	verbose    bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "jsonapi",
	Short:         "Query a JSON:API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to the YAML config")
	flags.StringVar(&baseURL, "base-url", "", "Server base URL, overrides the config")
	flags.StringArrayVarP(&headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	flags.BoolVar(&noPlural, "no-plural", false, "Use singular type names")
	flags.BoolVar(&noSnake, "no-snake", false, "Send attribute keys as they are named")
	flags.BoolVar(&validate, "validate", false, "Validate attributes against the declared schemas")
	flags.BoolVar(&dryRun, "dry-run", false, "Print the request instead of sending it")
	flags.BoolVar(&dump, "dump", false, "Dump decoded values with their Go types")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newClient applies the flags over the config file.
func newClient(cmd *cobra.Command) (*jsonapi.Client, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if cmd.Flags().Changed("no-plural") {
		plural := !noPlural
		cfg.Plural = &plural
	}
	if cmd.Flags().Changed("no-snake") {
		snake := !noSnake
		cfg.SnakeCase = &snake
	}
	if validate {
		cfg.Validate = true
	}

	pairs, err := keyValues(headers, ":")
	if err != nil {
		return nil, fmt.Errorf("--header: %w", err)
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string, len(pairs))
	}
	for _, kv := range pairs {
		cfg.Headers[kv[0]] = kv[1]
	}

	return cfg.Client(transport(cmd.OutOrStdout()), logger(cmd.ErrOrStderr()))
}

// transport sends requests over HTTP, or prints them on a dry run.
func transport(out io.Writer) jsonapi.Transport {
	if !dryRun {
		return jsonapi.NewHTTPTransport()
	}

	return jsonapi.TransportFunc(func(_ context.Context, req *jsonapi.Request) ([]byte, error) {
		if err := printJSON(out, req); err != nil {
			return nil, err
		}
		return nil, errDryRun
	})
}

func logger(w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(v)
}

// printResult renders a decoded value, or its Go structure with --dump.
func printResult(out io.Writer, v any) error {
	if dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(out, v)
		return nil
	}
	return printJSON(out, v)
}
