// Package cmd implements the olang command tree.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/beerose/olang"
	"github.com/beerose/olang/internal/config"
	"github.com/beerose/olang/internal/logging"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	cfgFile  string
	logLevel string
	noColor  bool

	cfg *config.Config
	log *slog.Logger
}

// exitError makes Execute exit with code. A nil err exits silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func failed(err error) error { return &exitError{code: 1, err: err} }

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{log: logging.Discard()}
	root := &cobra.Command{
		Use:   "olang",
		Short: "olang - a tiny expression language",
		Long: `olang tokenizes, parses and evaluates programs in a small expression
language with numbers, let bindings, arrow functions and calls.

Config is read from --config, or ./olang.toml, ./olang.yaml or ./olang.yml
when present. OLANG_* environment variables override file values.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./olang.toml or ./olang.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRunCmd(a),
		newEvalCmd(a),
		newReplCmd(a),
		newFmtCmd(a),
		newTokensCmd(a),
		newAstCmd(a),
		newTraceCmd(a),
		newVersionCmd(),
	)
	return root, a
}

// Execute runs the CLI against os.Args and returns the process exit code:
// 0 on success, 1 when a program or file fails, 2 on usage errors.
func Execute() int {
	root, a := newRoot()
	return a.exitCode(root, root.Execute())
}

func (a *app) exitCode(root *cobra.Command, err error) int {
	if err == nil {
		return 0
	}
	stderr := root.ErrOrStderr()
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, paint(a.styles(stderr).Error, ee.err.Error()))
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\nRun 'olang --help' for usage.\n", err)
	return 2
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return failed(err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.noColor {
		cfg.Repl.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return failed(err)
	}
	log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return failed(err)
	}
	a.cfg, a.log = cfg, log
	a.log.Debug("config loaded",
		slog.String("path", cfg.Path()),
		slog.String("command", cmd.Name()))
	return nil
}

func (a *app) color() bool {
	if a.noColor {
		return false
	}
	return a.cfg == nil || a.cfg.Repl.Color
}

func (a *app) styles(w io.Writer) styles { return newStyles(w, a.color()) }

func (a *app) parseOptions() []olang.ParseOption {
	return []olang.ParseOption{olang.WithParseDepth(a.cfg.Eval.MaxParseDepth)}
}

func (a *app) interpreter(opts ...olang.Option) *olang.Interpreter {
	opts = append([]olang.Option{olang.WithMaxDepth(a.cfg.Eval.MaxDepth)}, opts...)
	return olang.NewInterpreter(opts...)
}

// parse returns a rendered, exit-coded error on failure.
func (a *app) parse(name, src string) (*olang.Program, error) {
	prog, err := olang.Parse(src, a.parseOptions()...)
	if err != nil {
		a.log.Debug("parse failed", slog.String("source", name), slog.Any("error", err))
		return nil, failed(olang.WrapErrorWithName(err, name, src))
	}
	return prog, nil
}

// readSource reads path, or standard input when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", failed(fmt.Errorf("cannot read standard input: %w", err))
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", failed(fmt.Errorf("cannot read %s: %w", path, err))
	}
	return string(b), nil
}

// sourceName is the label used in error headers.
func sourceName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}
