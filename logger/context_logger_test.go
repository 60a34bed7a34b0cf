package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextLogger_WithContext_BusinessKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	cl := NewContextLogger(slog.New(handler))

	ctx := context.Background()
	ctx = WithRecordID(ctx, "record-123")
	ctx = WithSource(ctx, "mirror")

	cl.WithContext(ctx).Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"catalog.record.id", "record-123"},
		{"catalog.search.source", "mirror"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := logEntry[tt.key]
			if !ok {
				t.Errorf("expected key %q to be present in log", tt.key)
				return
			}
			if got != tt.expected {
				t.Errorf("expected %q to be %q, got %q", tt.key, tt.expected, got)
			}
		})
	}
}

func TestContextLogger_WithContext_PartialKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	cl := NewContextLogger(slog.New(handler))

	ctx := WithRecordID(context.Background(), "record-only")

	cl.WithContext(ctx).Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if got, ok := logEntry["catalog.record.id"]; !ok || got != "record-only" {
		t.Errorf("expected catalog.record.id to be 'record-only', got %v", got)
	}

	if _, ok := logEntry["catalog.search.source"]; ok {
		t.Error("expected catalog.search.source to not be present in log")
	}
}

func TestContextLogger_LogDuration(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	cl := NewContextLogger(slog.New(handler))

	cl.LogDuration(context.Background(), "reindex", 42)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if got := logEntry["operation"]; got != "reindex" {
		t.Errorf("expected operation 'reindex', got %v", got)
	}
	if got := logEntry["duration_ms"]; got != float64(42) {
		t.Errorf("expected duration_ms 42, got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
