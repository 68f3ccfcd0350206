package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// EnvSilent disables debug output when set to "true", matching how test suites
// are usually run in CI.
const EnvSilent = "SILENT"

// Logger provides colored output functions for CLI and test-suite feedback.
type Logger struct {
	out      io.Writer
	errOut   io.Writer
	noColor  bool
	verbose  bool
	jsonMode bool
}

// NewLogger creates a new Logger instance writing to stdout/stderr.
// Colors are disabled when stdout is not a terminal, and verbose (debug)
// output is on unless SILENT=true.
func NewLogger() *Logger {
	l := &Logger{
		out:     os.Stdout,
		errOut:  os.Stderr,
		verbose: !IsSilent(),
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		l.noColor = true
	}
	return l
}

// NewLoggerWithWriters creates a Logger writing to the given writers.
// Colors are off; used by tests and by callers capturing output.
func NewLoggerWithWriters(out, errOut io.Writer) *Logger {
	return &Logger{
		out:     out,
		errOut:  errOut,
		noColor: true,
		verbose: true,
	}
}

// IsSilent reports whether the SILENT environment variable is set.
func IsSilent() bool {
	return strings.EqualFold(os.Getenv(EnvSilent), "true")
}

// SetNoColor disables colored output.
func (l *Logger) SetNoColor(noColor bool) {
	l.noColor = noColor
}

// SetVerbose enables verbose logging.
func (l *Logger) SetVerbose(verbose bool) {
	l.verbose = verbose
}

// IsVerbose reports whether debug output is enabled.
func (l *Logger) IsVerbose() bool {
	return l.verbose
}

// SetJSONMode enables JSON output mode (suppresses text output).
func (l *Logger) SetJSONMode(jsonMode bool) {
	l.jsonMode = jsonMode
}

// Writer returns the standard output writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}

// ErrWriter returns the error output writer.
func (l *Logger) ErrWriter() io.Writer {
	return l.errOut
}

func (l *Logger) colored(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if l.noColor {
		c.DisableColor()
	}
	return c
}

// Info prints an informational message in default color.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.jsonMode {
		return
	}
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Warn prints a warning message in yellow.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.jsonMode {
		return
	}
	l.colored(color.FgYellow).Fprintf(l.errOut, "Warning: "+format+"\n", args...)
}

// Error prints an error message in red.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.jsonMode {
		return
	}
	l.colored(color.FgRed).Fprintf(l.errOut, "Error: "+format+"\n", args...)
}

// Success prints a success message in green with checkmark.
func (l *Logger) Success(format string, args ...interface{}) {
	if l.jsonMode {
		return
	}
	l.colored(color.FgGreen).Fprintf(l.out, "✓ "+format+"\n", args...)
}

// Debug prints a debug message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.jsonMode || !l.verbose {
		return
	}
	l.colored(color.FgHiBlack).Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
}

// Cyan prints a message in cyan (for highlights).
func (l *Logger) Cyan(format string, args ...interface{}) {
	if l.jsonMode {
		return
	}
	l.colored(color.FgCyan).Fprintf(l.out, format+"\n", args...)
}

// Print prints a plain message without newline.
func (l *Logger) Print(format string, args ...interface{}) {
	if l.jsonMode {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println prints a plain message with newline.
func (l *Logger) Println(format string, args ...interface{}) {
	if l.jsonMode {
		return
	}
	fmt.Fprintf(l.out, format+"\n", args...)
}

// PrintRequestError prints diagnostic detail for a failed request against the
// node under test. Refused connections get the network hash as a hint, since a
// wrong port or a node started for another network is the usual cause.
func (l *Logger) PrintRequestError(info *RequestErrorInfo) {
	if l.jsonMode || info == nil || !l.verbose {
		return
	}
	red := l.colored(color.FgRed)
	gray := l.colored(color.FgHiBlack)

	if info.ConnectionRefused {
		red.Fprintf(l.errOut, "> ERROR: %v\n", info.Error)
		gray.Fprintf(l.errOut, "> nethash: %s\n", info.Nethash)
		return
	}

	red.Fprintf(l.errOut, "> ERROR: %s %s\n", info.Verb, info.URL)
	if info.Status != 0 {
		gray.Fprintf(l.errOut, "> status: %d\n", info.Status)
	}
	gray.Fprintf(l.errOut, "> %v\n", info.Error)
}

// PrintFatal prints an error framed by separators. Used when a node process
// fails to come up and the rest of its startup is abandoned.
func (l *Logger) PrintFatal(title string, err error) {
	if l.jsonMode {
		return
	}
	red := l.colored(color.FgRed)
	red.Fprintln(l.errOut, Separator())
	red.Fprintf(l.errOut, "FATAL ERROR: %s\n", title)
	fmt.Fprintf(l.errOut, "  %v\n", err)
	red.Fprintln(l.errOut, Separator())
}

// SeparatorWidth is the width of Separator lines.
const SeparatorWidth = 60

// Separator returns a horizontal rule for framing output blocks.
func Separator() string {
	return strings.Repeat("─", SeparatorWidth)
}

// DefaultLogger is the package-level default logger instance.
var DefaultLogger = NewLogger()
