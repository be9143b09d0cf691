package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fragment/pkg/pattern"
)

type compileOutput struct {
	Pattern   string                    `json:"pattern"`
	Strict    bool                      `json:"strict"`
	Expr      string                    `json:"expr"`
	Params    []pattern.ParamDescriptor `json:"params"`
	Wildcards int                       `json:"wildcards"`
}

func compileCmd() *cobra.Command {
	var (
		strict bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "compile <pattern>",
		Short: "Show the expression a route pattern compiles to",
		Long: `Compile a route pattern and print the resulting expression and its
named parameters.

Examples:
  fragment compile /user/:id
  fragment compile --strict '/n/:id(\d+)'
  fragment compile --json '/files/*'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pattern.Compile(args[0], strict)
			if err != nil {
				return err
			}

			out := compileOutput{
				Pattern:   p.Raw(),
				Strict:    p.Strict(),
				Expr:      p.Expr(),
				Params:    p.Params(),
				Wildcards: p.NumWildcards(),
			}
			w := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(w, "pattern:   %s\n", out.Pattern)
			fmt.Fprintf(w, "expr:      %s\n", out.Expr)
			for i, d := range out.Params {
				opt := ""
				if d.Optional {
					opt = " (optional)"
				}
				fmt.Fprintf(w, "param %d:   %s%s\n", i, d.Name, opt)
			}
			if out.Wildcards > 0 {
				fmt.Fprintf(w, "wildcards: %d\n", out.Wildcards)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Do not allow an optional trailing slash")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}
