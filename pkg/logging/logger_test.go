package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestComponentColors(t *testing.T) {
	seen := map[string]Component{}
	for _, c := range []Component{ComponentRegistry, ComponentContracts, ComponentStorage, ComponentMetadata, ComponentAuth, ComponentWallet, ComponentGateway, ComponentCLI} {
		color := getComponentColor(c)
		if color == white {
			t.Errorf("component %s has no dedicated color", c)
		}
		if prev, ok := seen[color]; ok {
			t.Errorf("components %s and %s share a color", prev, c)
		}
		seen[color] = c
	}
}

func TestLeveledLoggerFilters(t *testing.T) {
	logger, err := NewLeveledLogger(ComponentGeneral, zapcore.WarnLevel, false)
	if err != nil {
		t.Fatalf("NewLeveledLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be filtered at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should pass at warn level")
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(ComponentCLI, Options{Level: zapcore.InfoLevel, Output: &buf})

	logger.ComponentInfo(ComponentStorage, "Uploaded", zap.String("cid", "bafk"))
	logger.ComponentDebug(ComponentStorage, "dropped")

	out := buf.String()
	if !strings.Contains(out, "[STORAGE] Uploaded") {
		t.Errorf("missing component prefix: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("colors disabled but escape codes written: %q", out)
	}
	if strings.Contains(out, "dropped") {
		t.Error("debug entry should be filtered at info level")
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(ComponentGateway, Options{Level: zapcore.DebugLevel, Format: FormatJSON, Output: &buf})

	logger.ComponentWarn(ComponentContracts, "Read failed", zap.String("function", "get-owner"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not JSON: %v: %q", err, buf.String())
	}
	want := map[string]any{
		"msg":       "Read failed",
		"level":     "warn",
		"component": "GATEWAY",
		"source":    "CONTRACTS",
		"function":  "get-owner",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}
