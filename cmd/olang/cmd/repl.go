package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/beerose/olang"
)

const replHelp = `REPL commands:
  :scope   List the bindings of the session scope
  :help    Show this help
  :quit    Exit the REPL
`

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive interpreter",
		Long: `Start the interactive interpreter. Bindings persist across inputs.
Incomplete input (an open parenthesis or brace, a trailing operator) continues
on the next line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.repl(cmd)
		},
	}
}

// prompter is the part of *liner.State the loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// session evaluates REPL inputs against one persistent interpreter.
type session struct {
	app  *app
	ip   *olang.Interpreter
	out  io.Writer
	errw io.Writer
	st   styles
	est  styles
}

func (a *app) newSession(out, errw io.Writer) *session {
	return &session{
		app:  a,
		ip:   a.interpreter(),
		out:  out,
		errw: errw,
		st:   a.styles(out),
		est:  a.styles(errw),
	}
}

func (a *app) repl(cmd *cobra.Command) error {
	s := a.newSession(cmd.OutOrStdout(), cmd.ErrOrStderr())
	fmt.Fprintln(s.out, paint(s.st.Banner, fmt.Sprintf("olang %s REPL", Version)))
	fmt.Fprintln(s.out, paint(s.st.Muted, "Ctrl+C cancels input, Ctrl+D exits. Type :help for commands."))

	histPath := a.cfg.Repl.HistoryFile
	if histPath != "" && !filepath.IsAbs(histPath) {
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, histPath)
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	stop := relaySignal(sigc, func(os.Signal) {
		ln.Close()
		os.Exit(130)
	})
	defer stop()

	s.loop(ln, func(code string) { ln.AppendHistory(strings.ReplaceAll(code, "\n", " ")) })
	return nil
}

// relaySignal calls onSignal for the first signal received on sigc. The
// returned stop function ends the watch and waits for it to finish.
func relaySignal(sigc <-chan os.Signal, onSignal func(os.Signal)) (stop func()) {
	done, exited := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case sig := <-sigc:
			onSignal(sig)
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

// loop reads and evaluates inputs until end of input or :quit. record is
// called with every non-empty input.
func (s *session) loop(p prompter, record func(string)) {
	prompt, cont := s.app.cfg.Repl.Prompt, s.app.cfg.Repl.Continuation
	for {
		code, ok := readByParseProbe(p, prompt, cont, s.app.parseOptions()...)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		if record != nil {
			record(code)
		}
		if s.handle(code) {
			return
		}
	}
}

// handle runs one complete input and reports whether the session should end.
func (s *session) handle(code string) (quit bool) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	v, err := s.ip.EvalSource(code, s.app.parseOptions()...)
	if err != nil {
		fmt.Fprintln(s.errw, paint(s.est.Error, olang.WrapErrorWithSource(err, code).Error()))
		return false
	}
	fmt.Fprintln(s.out, paint(s.st.Value, v.String()))
	return false
}

func (s *session) command(c string) (quit bool) {
	switch strings.ToLower(c) {
	case ":quit", ":q", ":exit":
		return true
	case ":scope":
		names := s.ip.Global.Names()
		if len(names) == 0 {
			fmt.Fprintln(s.out, paint(s.st.Muted, "(no bindings)"))
		}
		for _, name := range names {
			v, _ := s.ip.Global.Lookup(name)
			fmt.Fprintf(s.out, "%s = %s\n", name, paint(s.st.Value, v.String()))
		}
	case ":help":
		fmt.Fprint(s.out, replHelp)
	default:
		fmt.Fprintf(s.errw, "unknown command %s. Type :help for a list.\n", c)
	}
	return false
}

// readByParseProbe accumulates lines while the parser reports the input as
// incomplete. It returns false at end of input. An aborted prompt (Ctrl+C)
// discards the pending input. opts are the options the input will later be
// parsed with.
func readByParseProbe(p prompter, prompt, cont string, opts ...olang.ParseOption) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = p.Prompt(prompt)
		} else {
			line, err = p.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := olang.Parse(src, opts...); perr != nil && olang.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
