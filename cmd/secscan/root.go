package secscan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "1.0.0"

// Exit codes returned by the CLI.
const (
	exitClean    = 0
	exitFindings = 1
	exitError    = 2
)

// exitCodeError carries a non-zero exit status without an error message.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type globalOptions struct {
	noColor  bool
	logLevel string
	verbose  bool

	stdout io.Writer
	stderr io.Writer
}

// color reports whether terminal output to w should be styled.
func (g *globalOptions) color(w io.Writer) bool {
	if g.noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "secscan",
		Short:         "Find secrets and vulnerable code in your repo",
		Long:          "secscan walks a directory tree and reports hard-coded credentials, high-entropy strings and insecure code patterns.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogger(g)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&g.noColor, "no-color", false, "disable colorized output")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level: trace|debug|info|warn|error")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "shorthand for --log-level debug")

	root.AddCommand(
		newScanCmd(g),
		newPatternsCmd(g),
		newInitCmd(g),
		newBaselineCmd(g),
		newAuditCmd(g),
	)
	return root
}

// initLogger points the global zerolog logger at stderr.
func initLogger(g *globalOptions) error {
	level, err := zerolog.ParseLevel(g.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", g.logLevel)
	}
	if g.verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	out := zerolog.ConsoleWriter{
		Out:        g.stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !g.color(g.stderr),
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// Execute runs the secscan CLI. It should be called by the main package.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	var ec exitCodeError
	switch {
	case err == nil:
		return exitClean
	case errors.As(err, &ec):
		return ec.code
	default:
		fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
}
