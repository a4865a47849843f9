package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/beerose/olang"
)

func newTokensCmd(a *app) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			toks, err := olang.Tokenize(src)
			if err != nil {
				return failed(olang.WrapErrorWithName(err, sourceName(args[0]), src))
			}

			w := cmd.OutOrStdout()
			if format != "text" {
				list := make([]map[string]any, len(toks))
				for i, t := range toks {
					list[i] = olang.EncodeToken(t)
				}
				if err := encode(w, format, list); err != nil {
					return failed(err)
				}
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, t := range toks {
				fmt.Fprintf(tw, "%d:%d\t%s\t%s\n", t.Line, t.Col, t.Kind, strconv.Quote(t.Text))
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&format, "format", "text", "output format: text, yaml or json")
	return c
}

func newAstCmd(a *app) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "ast <file>",
		Short: "Export the syntax tree of a file",
		Long: `Export the syntax tree of a file as YAML or JSON. Every node carries its
"kind" and source "pos" (byte offsets "from" and "to").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			prog, err := a.parse(sourceName(args[0]), src)
			if err != nil {
				return err
			}
			if err := encode(cmd.OutOrStdout(), format, olang.EncodeNode(prog)); err != nil {
				return failed(err)
			}
			return nil
		},
	}
	c.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return c
}
