package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// Options configures a Run.
type Options struct {
	// Tool prefixes the log file name: <Tool>_<timestamp>.log
	Tool string

	// Path is the log directory. Empty means mauro.DefaultLogPath.
	Path string

	// Level is the file level: DEBUG, INFO, WARNING, ERROR or CRITICAL.
	Level string

	// Verbose forces the file to DEBUG and raises the console to INFO.
	Verbose bool

	// Console receives console output; nil means os.Stderr.
	Console io.Writer

	// Now is the clock used for the file name; nil means time.Now.
	Now func() time.Time
}

// Run is the logging state of one command invocation.
type Run struct {
	logger   *zap.Logger
	file     *os.File
	filePath string
}

// New opens the log file and builds the logger.
func New(opts Options) (*Run, error) {
	fileLevel, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	consoleLevel := zapcore.WarnLevel
	if opts.Verbose {
		fileLevel = zapcore.DebugLevel
		consoleLevel = zapcore.InfoLevel
	}

	dir := opts.Path
	if dir == "" {
		dir = mauro.DefaultLogPath
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	tool := opts.Tool
	if tool == "" {
		tool = "maurodc"
	}
	filePath := filepath.Join(dir, tool+"_"+mauro.Timestamp(now())+".log")

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	fileEncoder := zapcore.NewConsoleEncoder(fileEncoderConfig())
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig(isTerminal(console)))

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.AddSync(file), fileLevel),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(console), consoleLevel),
	)

	return &Run{
		logger:   zap.New(core).Named(tool),
		file:     file,
		filePath: filePath,
	}, nil
}

// Logger returns the run's logger.
func (r *Run) Logger() *zap.Logger {
	return r.logger
}

// FilePath returns the path of the run's log file.
func (r *Run) FilePath() string {
	return r.filePath
}

// Close flushes the logger and closes the log file.
func (r *Run) Close() error {
	_ = r.logger.Sync()
	return r.file.Close()
}

// ParseLevel maps the command-line level names onto zap levels.
// CRITICAL maps to the highest level zap writes without exiting.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "WARNING", "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "CRITICAL":
		return zapcore.DPanicLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (want DEBUG, INFO, WARNING, ERROR or CRITICAL)", level)
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " - "
	return cfg
}

func consoleEncoderConfig(color bool) zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg
}

func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
