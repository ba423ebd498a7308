package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWriterTimestampsEveryLine(t *testing.T) {
	buf := &bytes.Buffer{}
	at := time.Date(2025, 9, 23, 9, 40, 48, 565000000, time.UTC)
	log := NewWriter(buf, func() time.Time { return at })

	log.Log("first\nsecond")

	want := "2025-09-23T09:40:48.565Z · first\n2025-09-23T09:40:48.565Z · second\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\ngot  %q\nwant %q", got, want)
	}
}

func TestRecorderMarkers(t *testing.T) {
	rec := NewRecorder()

	rec.Log("sampling prices")
	rec.Warnf("cache write failed")
	rec.Errorf("no balance for GALA")

	lines := rec.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "· sampling prices" {
		t.Errorf("unexpected info line: %q", lines[0])
	}
	if lines[1] != "! WARNING: cache write failed" {
		t.Errorf("unexpected warning line: %q", lines[1])
	}
	if lines[2] != "✖ ERROR: no balance for GALA" {
		t.Errorf("unexpected error line: %q", lines[2])
	}
}

func TestLoggedErrorfReturnsAndLogs(t *testing.T) {
	rec := NewRecorder()

	base := errors.New("boom")
	err := rec.LoggedErrorf("fetching balances: %w", base)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, base) {
		t.Errorf("expected wrapped error, got %v", err)
	}
	if !strings.Contains(rec.Transcript(), "✖ ERROR: fetching balances: boom") {
		t.Errorf("error not logged: %q", rec.Transcript())
	}
}
