package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fragment/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬─┐┌─┐┌─┐┌┬┐┌─┐┌┐┌┌┬┐
  ├┤ ├┬┘├─┤│ ┬│││├┤ │││ │
  └  ┴└─┴ ┴└─┘┴ ┴└─┘┘└┘ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fragment",
		Short: "Hash-fragment routing for Go hosts",
		Long: `fragment compiles route patterns, matches fragments against them and
serves a WebSocket bridge that routes browser hashchange events to Go.

Patterns:
  /about            literal
  /user/:id         named parameter
  /list/:page?      optional parameter
  /n/:id(\d+)       custom capture
  /files/*          wildcard`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		compileCmd(),
		matchCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
