package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"secureformat/internal/config"
)

// Logger is the application logger. Calls take a level name, a message and
// alternating key/value pairs.
type Logger struct {
	base *logrus.Logger
	file *os.File
}

var levels = map[string]logrus.Level{
	"DEBUG": logrus.DebugLevel,
	"INFO":  logrus.InfoLevel,
	"WARN":  logrus.WarnLevel,
	"ERROR": logrus.ErrorLevel,
	"FATAL": logrus.FatalLevel,
}

// NewLogger builds a logger from the logging section. Without a log file, or
// in verbose mode, everything goes to stderr. Otherwise stderr only receives
// errors.
func NewLogger(cfg *config.Config, verbose bool) (*Logger, error) {
	l := &Logger{base: logrus.New()}
	l.base.SetLevel(parseLevel(cfg.Logging.Level))
	l.base.SetFormatter(formatter(cfg.Logging.Format))

	if cfg.Logging.File == "" {
		l.base.SetOutput(os.Stderr)
		return l, nil
	}

	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		l.base.SetOutput(os.Stderr)
		l.Log("WARN", "cannot create log directory, logging to stderr", "dir", logDir, "error", err)
		return l, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.base.SetOutput(os.Stderr)
		l.Log("WARN", "cannot open log file, logging to stderr", "file", cfg.Logging.File, "error", err)
		return l, nil
	}
	l.file = f

	if verbose {
		l.base.SetOutput(io.MultiWriter(f, os.Stderr))
	} else {
		l.base.SetOutput(f)
		l.base.AddHook(&consoleHook{out: os.Stderr, formatter: &logrus.TextFormatter{DisableTimestamp: true}})
	}

	return l, nil
}

// New returns a logger writing to out. Used by tests and tools.
func New(out io.Writer, level, format string) *Logger {
	l := &Logger{base: logrus.New()}
	l.base.SetOutput(out)
	l.base.SetLevel(parseLevel(level))
	l.base.SetFormatter(formatter(format))
	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "ERROR", "text")
}

// Log writes one entry. FATAL is recorded but never exits the process.
func (l *Logger) Log(level, message string, fields ...interface{}) {
	if l == nil || l.base == nil {
		return
	}
	lvl := parseLevel(level)
	if !l.base.IsLevelEnabled(lvl) {
		return
	}
	l.base.WithFields(toFields(fields)).Log(lvl, message)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func parseLevel(level string) logrus.Level {
	if lvl, ok := levels[strings.ToUpper(level)]; ok {
		return lvl
	}
	return logrus.InfoLevel
}

func formatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"}
	}
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
}

func toFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			fields["extra"] = kv[i]
			break
		}
		if err, ok := kv[i+1].(error); ok {
			fields[key] = err.Error()
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

// consoleHook mirrors errors to the console when the main output is a file.
type consoleHook struct {
	out       io.Writer
	formatter logrus.Formatter
}

func (h *consoleHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *consoleHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}
