// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" Warning ", LevelWarn, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_ConsoleTextWithService(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Service: "feedback", Console: &buf})
	l.Info("cycle ready", "scope", "week")

	out := buf.String()
	assert.Contains(t, out, "cycle ready")
	assert.Contains(t, out, "service=feedback")
	assert.Contains(t, out, "scope=week")
}

func TestNew_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{JSON: true, Console: &buf})
	l.Warn("breakdown unavailable", "status", 503)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(503), entry["status"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Console: &buf})
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Equal(t, 2, strings.Count(buf.String(), "shown"))
}

func TestNew_FileLoggingIsJSON(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	l := New(Config{LogDir: dir, Service: "dash", Console: &console})
	l.Info("to both", "k", "v")
	require.NoError(t, l.Close())

	require.NotEmpty(t, l.Path())
	assert.Equal(t, dir, filepath.Dir(l.Path()))
	assert.True(t, strings.HasPrefix(filepath.Base(l.Path()), "dash_"))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "to both", entry["msg"])
	assert.Equal(t, "dash", entry["service"])
	assert.Contains(t, console.String(), "to both")
}

func TestNew_QuietWithFileKeepsConsoleClean(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	l := New(Config{LogDir: dir, Quiet: true, Console: &console})
	l.Info("file only")
	require.NoError(t, l.Close())

	assert.Empty(t, console.String())
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only")
	assert.Contains(t, filepath.Base(l.Path()), "feedback_")
}

func TestNew_QuietWithoutDestinationFallsBackToConsole(t *testing.T) {
	var console bytes.Buffer
	l := New(Config{Quiet: true, Console: &console})
	l.Info("still visible")
	assert.Contains(t, console.String(), "still visible")
}

func TestNew_UnwritableLogDirIsNotFatal(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain-file")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	var console bytes.Buffer
	l := New(Config{LogDir: filepath.Join(file, "sub"), Console: &console})
	l.Info("ok")
	assert.Empty(t, l.Path())
	assert.Contains(t, console.String(), "ok")
	assert.NoError(t, l.Close())
}

func TestLogger_WithAndSlog(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Console: &buf}).With("component", "analytics")
	l.Slog().Info("via slog")
	assert.Contains(t, buf.String(), "component=analytics")
}

func TestLogger_CloseTwice(t *testing.T) {
	l := New(Config{LogDir: t.TempDir(), Quiet: true})
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}

func TestLogger_ConcurrentUse(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	l := New(Config{Console: writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return buf.Write(p)
	})})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("concurrent", "i", i)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 20, strings.Count(buf.String(), "concurrent"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing", "error", errors.New("x")) })
}

// =============================================================================
// Handler Tests
// =============================================================================

func TestTraceHandler_AddsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{JSON: true, Console: &buf})

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.Slog().InfoContext(ctx, "traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", entry["trace_id"])
	assert.Equal(t, "0102030405060708", entry["span_id"])
}

func TestTraceHandler_NoSpanNoIDs(t *testing.T) {
	var buf bytes.Buffer
	New(Config{JSON: true, Console: &buf}).Info("plain")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	failing := slog.NewTextHandler(writerFunc(func(p []byte) (int, error) {
		return 0, errors.New("disk full")
	}), nil)
	var buf bytes.Buffer
	ok := slog.NewTextHandler(&buf, nil)

	h := &multiHandler{handlers: []slog.Handler{failing, ok}}
	err := slog.New(h).Handler().Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "m", 0))
	assert.ErrorContains(t, err, "disk full")
	assert.Contains(t, buf.String(), "m", "later handlers still receive the record")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".aleutian/logs"), expandPath("~/.aleutian/logs"))
	assert.Equal(t, "/var/log", expandPath("/var/log"))
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
