package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/beerose/olang"
)

func newFmtCmd(a *app) *cobra.Command {
	var check bool
	c := &cobra.Command{
		Use:   "fmt [--check] [file ...]",
		Short: "Reformat source files",
		Long: `Reformat source files in place through the printer.

Without files, standard input is formatted to standard output. With --check
nothing is written; files whose formatting differs are listed and the command
exits 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.fmtStdin(cmd, check)
			}
			return a.fmtFiles(cmd, args, check)
		},
	}
	c.Flags().BoolVar(&check, "check", false, "report unformatted files instead of rewriting them")
	return c
}

func (a *app) fmtStdin(cmd *cobra.Command, check bool) error {
	src, err := readSource(cmd, "-")
	if err != nil {
		return err
	}
	out, err := a.format("<stdin>", src)
	if err != nil {
		return err
	}
	if check {
		if out != src {
			return failed(errors.New("<stdin> is not formatted"))
		}
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func (a *app) fmtFiles(cmd *cobra.Command, paths []string, check bool) error {
	unformatted := 0
	for _, path := range paths {
		src, err := readSource(cmd, path)
		if err != nil {
			return err
		}
		out, err := a.format(path, src)
		if err != nil {
			return err
		}
		if out == src {
			continue
		}
		if check {
			fmt.Fprintln(cmd.OutOrStdout(), path)
			unformatted++
			continue
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return failed(fmt.Errorf("cannot write %s: %w", path, err))
		}
		a.log.Info("formatted", slog.String("file", path))
	}
	if unformatted > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// format reprints src; non-empty output ends with a newline.
func (a *app) format(name, src string) (string, error) {
	prog, err := a.parse(name, src)
	if err != nil {
		return "", err
	}
	out := olang.Print(prog)
	if out != "" {
		out += "\n"
	}
	return out, nil
}
