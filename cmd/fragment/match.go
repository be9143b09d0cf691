package main

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fragment/internal/errors"
	"github.com/vango-dev/fragment/pkg/pattern"
	"github.com/vango-dev/fragment/pkg/routepath"
)

type matchOutput struct {
	Pattern   string            `json:"pattern"`
	Fragment  string            `json:"fragment"`
	Matched   bool              `json:"matched"`
	Params    map[string]string `json:"params,omitempty"`
	Wildcards []string          `json:"wildcards,omitempty"`
	Values    []string          `json:"values,omitempty"`
}

func matchCmd() *cobra.Command {
	var (
		strict bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "match <pattern> <fragment|url>",
		Short: "Match a fragment against a route pattern",
		Long: `Match a fragment, or the fragment of a URL, against a route pattern and
print the extracted parameters. Exits non-zero when there is no match.

Examples:
  fragment match /user/:id /user/42
  fragment match '/files/*' 'https://example.com/#/files/a/b.txt'
  fragment match --json '/list/:page?' /list`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pattern.Compile(args[0], strict)
			if err != nil {
				return err
			}

			frag := args[1]
			if strings.Contains(frag, "#") {
				frag = routepath.FromURL(frag)
			}

			out := matchOutput{Pattern: args[0], Fragment: frag}
			m := p.Match(frag)
			if m != nil {
				out.Matched = true
				out.Params = m.Params
				out.Wildcards = m.Wildcards
				out.Values = m.Values
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					return err
				}
			} else if m != nil {
				names := make([]string, 0, len(m.Params))
				for name := range m.Params {
					names = append(names, name)
				}
				sort.Strings(names)

				success(w, "%s matches %s", frag, args[0])
				for _, name := range names {
					info(w, "%s = %s", name, m.Params[name])
				}
				for i, wc := range m.Wildcards {
					info(w, "*%d = %s", i, wc)
				}
			}

			if m == nil {
				return errors.Newf(errors.CategoryCLI, "%q does not match %s", frag, args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Do not allow an optional trailing slash")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}
