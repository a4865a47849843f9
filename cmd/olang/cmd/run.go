package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/beerose/olang"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Evaluate a program file and print its value",
		Long: `Evaluate a program file and print the value of its last statement.
Use "-" to read the program from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			return a.evalAndPrint(cmd, sourceName(args[0]), src)
		},
	}
}

func newEvalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "eval <source>...",
		Short:   "Evaluate source given on the command line",
		Example: `  olang eval "let sq = (x) => x * x; sq(9)"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.evalAndPrint(cmd, "<eval>", strings.Join(args, " "))
		},
	}
}

func (a *app) evalAndPrint(cmd *cobra.Command, name, src string) error {
	prog, err := a.parse(name, src)
	if err != nil {
		return err
	}

	start := time.Now()
	v, err := a.interpreter().Run(prog)
	a.log.Debug("evaluated",
		slog.String("source", name),
		slog.Int("statements", len(prog.Statements)),
		slog.Duration("elapsed", time.Since(start)))
	if err != nil {
		return failed(olang.WrapErrorWithName(err, name, src))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, paint(a.styles(w).Value, v.String()))
	return nil
}
