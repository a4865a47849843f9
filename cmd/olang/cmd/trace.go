package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/beerose/olang"
)

// traceDocument is the exported form of one traced run.
type traceDocument struct {
	RunID  string        `json:"run_id" yaml:"run_id"`
	Source string        `json:"source" yaml:"source"`
	Result *olang.Value  `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
	Events []olang.Event `json:"events" yaml:"events"`
}

func newTraceCmd(a *app) *cobra.Command {
	var format, out string
	c := &cobra.Command{
		Use:   "trace <file>",
		Short: "Evaluate a file and export every evaluation step",
		Long: `Evaluate a file with tracing on and export the events as YAML or JSON.

Events are in evaluation order, children before parents. Each carries the
node kind, its source position, the scope chain (innermost frame first), the
node's source text and the value it produced. A failing run still exports the
events recorded up to the failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Trace.Format
			}
			if out == "" {
				out = a.cfg.Trace.Output
			}
			return a.trace(cmd, args[0], format, out)
		},
	}
	c.Flags().StringVar(&format, "format", "", "output format: yaml or json (default from config)")
	c.Flags().StringVarP(&out, "out", "o", "", "write the trace to a file instead of stdout")
	return c
}

func (a *app) trace(cmd *cobra.Command, path, format, out string) error {
	src, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	name := sourceName(path)
	prog, err := a.parse(name, src)
	if err != nil {
		return err
	}

	rec := &olang.Recorder{}
	v, runErr := a.interpreter(olang.WithTracer(rec)).Run(prog)

	doc := traceDocument{
		RunID:  uuid.New().String(),
		Source: src,
		Events: rec.Events,
	}
	if runErr != nil {
		doc.Error = runErr.Error()
	} else {
		doc.Result = &v
	}
	a.log.Debug("traced",
		slog.String("run_id", doc.RunID),
		slog.String("source", name),
		slog.Int("events", len(doc.Events)))

	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return failed(fmt.Errorf("cannot create %s: %w", out, err))
		}
		defer f.Close()
		w = f
	}
	if err := encode(w, format, doc); err != nil {
		return failed(err)
	}
	if runErr != nil {
		return failed(olang.WrapErrorWithName(runErr, name, src))
	}
	return nil
}
