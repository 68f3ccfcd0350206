package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// NodeLogger is the structured logger handed to a node process under test.
// It is initialized once per process with a level and a label, and its level
// can be changed afterwards (test suites usually drop it to "error" once the
// node is up).
type NodeLogger struct {
	mu     sync.RWMutex
	out    io.Writer
	label  string
	level  zerolog.Level
	color  bool
	logger log.Logger
}

// NewNodeLogger creates an uninitialized NodeLogger writing to w.
// A nil writer means stderr. Until Init is called every message is dropped.
func NewNodeLogger(w io.Writer) *NodeLogger {
	if w == nil {
		w = os.Stderr
	}
	return &NodeLogger{
		out:    w,
		level:  zerolog.InfoLevel,
		logger: log.NewNopLogger(),
	}
}

// ParseLevel converts a level name into a zerolog level. The empty string
// maps to info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// SetColor toggles colored console output. Takes effect on the next Init or
// SetLevel call.
func (l *NodeLogger) SetColor(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = enabled
}

// Init initializes the logger at the given level with a process label.
func (l *NodeLogger) Init(level, label string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.label = label
	l.level = lvl
	l.rebuild()
	return nil
}

// SetLevel changes the level of an initialized logger.
func (l *NodeLogger) SetLevel(tag string) error {
	lvl, err := ParseLevel(tag)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lvl
	l.rebuild()
	return nil
}

// Level returns the current level name.
func (l *NodeLogger) Level() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level.String()
}

// Label returns the process label given to Init.
func (l *NodeLogger) Label() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.label
}

// Logger returns the underlying structured logger.
func (l *NodeLogger) Logger() log.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger
}

// Info logs at info level.
func (l *NodeLogger) Info(msg string, keyVals ...any) {
	l.Logger().Info(msg, keyVals...)
}

// Error logs at error level.
func (l *NodeLogger) Error(msg string, keyVals ...any) {
	l.Logger().Error(msg, keyVals...)
}

// Debug logs at debug level.
func (l *NodeLogger) Debug(msg string, keyVals ...any) {
	l.Logger().Debug(msg, keyVals...)
}

// rebuild must be called with mu held.
func (l *NodeLogger) rebuild() {
	logger := log.NewLogger(l.out,
		log.LevelOption(l.level),
		log.ColorOption(l.color),
	)
	if l.label != "" {
		logger = logger.With(log.ModuleKey, l.label)
	}
	l.logger = logger
}
