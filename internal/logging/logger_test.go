package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONWithSessionFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wppviewd.log")

	logger, err := New(path, "work")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello", zap.String("chat", "c@g.us"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["msg"] != "hello" || entry["session"] != "work" || entry["chat"] != "c@g.us" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("missing ts field")
	}
	if _, ok := entry["pid"]; !ok {
		t.Error("missing pid field")
	}
}

func TestCoreSkipsDebug(t *testing.T) {
	var file, console bytes.Buffer
	logger := zap.New(newCore(zapcore.AddSync(&file), zapcore.AddSync(&console)))

	logger.Debug("noise")
	logger.Warn("careful")

	if strings.Contains(file.String(), "noise") || strings.Contains(console.String(), "noise") {
		t.Error("debug entries should be dropped")
	}
	if !strings.Contains(file.String(), "careful") || !strings.Contains(console.String(), "careful") {
		t.Error("warn entry missing from one of the outputs")
	}
}
