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
)

// ANSI escape sequences used by the console encoder.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red           = "\033[31m"
	green         = "\033[32m"
	yellow        = "\033[33m"
	blue          = "\033[34m"
	cyan          = "\033[36m"
	white         = "\033[37m"
	gray          = "\033[90m"
	brightRed     = "\033[91m"
	brightGreen   = "\033[92m"
	brightYellow  = "\033[93m"
	brightBlue    = "\033[94m"
	brightMagenta = "\033[95m"
	brightCyan    = "\033[96m"
	brightWhite   = "\033[97m"
)

// Output formats accepted by Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ColoredLogger wraps zap.Logger and prefixes messages with a component tag.
type ColoredLogger struct {
	*zap.Logger
	enableColors bool
	structured   bool
}

// Component tags the adapter a log line comes from.
type Component string

const (
	ComponentRegistry  Component = "REGISTRY"
	ComponentContracts Component = "CONTRACTS"
	ComponentStorage   Component = "STORAGE"
	ComponentMetadata  Component = "METADATA"
	ComponentAuth      Component = "AUTH"
	ComponentWallet    Component = "WALLET"
	ComponentGateway   Component = "GATEWAY"
	ComponentCLI       Component = "CLI"
	ComponentGeneral   Component = "GENERAL"
)

var componentColors = map[Component]string{
	ComponentRegistry:  brightBlue,
	ComponentContracts: brightMagenta,
	ComponentStorage:   brightYellow,
	ComponentMetadata:  green,
	ComponentAuth:      brightCyan,
	ComponentWallet:    cyan,
	ComponentGateway:   brightGreen,
	ComponentCLI:       blue,
	ComponentGeneral:   yellow,
}

func getComponentColor(component Component) string {
	if c, ok := componentColors[component]; ok {
		return c
	}
	return white
}

var levelStyles = map[zapcore.Level]struct{ letter, color string }{
	zapcore.DebugLevel:  {"D", gray},
	zapcore.InfoLevel:   {"I", brightWhite},
	zapcore.WarnLevel:   {"W", brightYellow},
	zapcore.ErrorLevel:  {"E", brightRed},
	zapcore.DPanicLevel: {"P", red},
	zapcore.PanicLevel:  {"P", red},
	zapcore.FatalLevel:  {"F", red},
}

// paint wraps s in color when colors are on.
func paint(on bool, color, s string) string {
	if !on {
		return s
	}
	return color + s + reset
}

// consoleEncoder prints "15:04:05 I file [COMPONENT] msg {fields}".
func consoleEncoder(colors bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()

	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(paint(colors, dim, t.Format("15:04:05")))
	}
	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		style, ok := levelStyles[level]
		if !ok {
			style.letter, style.color = "?", white
		}
		enc.AppendString(paint(colors, style.color+bold, style.letter))
	}
	cfg.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := strings.TrimSuffix(filepath.Base(caller.File), ".go")
		enc.AppendString(paint(colors, dim, file))
	}

	return zapcore.NewConsoleEncoder(cfg)
}

// jsonEncoder emits one JSON object per line with ISO8601 UTC timestamps.
func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	return zapcore.NewJSONEncoder(cfg)
}

// ParseLevel maps a config level name to a zap level. Unknown names fall back to info.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Options configures New.
type Options struct {
	Level  zapcore.Level
	Format string    // FormatConsole (default) or FormatJSON
	Colors bool      // console only
	Output io.Writer // defaults to stderr; stdout is left to command output
}

// New builds a logger for component. JSON output carries components as a
// field instead of a message prefix.
func New(component Component, opts Options) *ColoredLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var (
		encoder zapcore.Encoder
		colors  bool
	)
	if opts.Format == FormatJSON {
		encoder = jsonEncoder()
	} else {
		encoder = consoleEncoder(opts.Colors)
		colors = opts.Colors
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), opts.Level)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if opts.Format == FormatJSON {
		logger = logger.With(zap.String("component", string(component)))
	}
	return &ColoredLogger{Logger: logger, enableColors: colors, structured: opts.Format == FormatJSON}
}

// NewColoredLogger creates a console logger at debug level.
func NewColoredLogger(component Component, enableColors bool) (*ColoredLogger, error) {
	return New(component, Options{Level: zapcore.DebugLevel, Colors: enableColors}), nil
}

// NewLeveledLogger creates a console logger on stderr that drops entries below level.
func NewLeveledLogger(component Component, level zapcore.Level, enableColors bool) (*ColoredLogger, error) {
	return New(component, Options{Level: level, Colors: enableColors}), nil
}

// NewFileLogger appends to filePath, creating it when missing.
func NewFileLogger(component Component, filePath string, opts Options) (*ColoredLogger, error) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	opts.Output = file
	return New(component, opts), nil
}

// tag prefixes msg with the component on the console and records it as the
// "source" field in JSON, next to the logger's own component.
func (l *ColoredLogger) tag(component Component, msg string, fields []zap.Field) (string, []zap.Field) {
	if l.structured {
		return msg, append(fields, zap.String("source", string(component)))
	}
	return paint(l.enableColors, getComponentColor(component), "["+string(component)+"]") + " " + msg, fields
}

func (l *ColoredLogger) ComponentInfo(component Component, msg string, fields ...zap.Field) {
	msg, fields = l.tag(component, msg, fields)
	l.Info(msg, fields...)
}

func (l *ColoredLogger) ComponentWarn(component Component, msg string, fields ...zap.Field) {
	msg, fields = l.tag(component, msg, fields)
	l.Warn(msg, fields...)
}

func (l *ColoredLogger) ComponentError(component Component, msg string, fields ...zap.Field) {
	msg, fields = l.tag(component, msg, fields)
	l.Error(msg, fields...)
}

func (l *ColoredLogger) ComponentDebug(component Component, msg string, fields ...zap.Field) {
	msg, fields = l.tag(component, msg, fields)
	l.Debug(msg, fields...)
}
