package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentTransaction, Handler: slog.NewTextHandler(&buf, nil)})

	l.InfoContext(context.Background(), "hello", FieldOwnerID, "u1")

	out := buf.String()
	if !strings.Contains(out, "component=transaction") || !strings.Contains(out, "owner_id=u1") {
		t.Errorf("log line = %q", out)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithTransaction("t-1", "u1", 4.5, "Expense", "Food").
		WithKind("").
		WithError(errors.New("boom")).
		WithOperation(OpCreate)

	if f[FieldTransactionID] != "t-1" || f[FieldAmount] != 4.5 || f[FieldError] != "boom" {
		t.Errorf("fields = %v", f)
	}
	if _, ok := f[FieldKind]; ok {
		t.Error("empty kind should not be recorded")
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice() length = %d, want %d", got, 2*len(f))
	}
}

func TestStructuredLoggerMutation(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentTransaction, Handler: slog.NewTextHandler(&buf, nil)}))

	sl.LogTransactionMutation(context.Background(), OpDelete, "t-1", "u1", 3, "Expense", "Food")

	if !strings.Contains(buf.String(), "Transaction deleted") {
		t.Errorf("log line = %q", buf.String())
	}
}
