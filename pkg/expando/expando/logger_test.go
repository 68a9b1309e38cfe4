package expando

import (
	"bytes"
	"testing"
)

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	log := WriterLogger(&buf)

	log.Log("partial")
	log.LogLine(" line")
	log.LogLine("count:", 3)

	if got := buf.String(); got != "partial line\ncount: 3\n" {
		t.Errorf("output = %q", got)
	}
}

func TestBufferedLogger(t *testing.T) {
	log := NewBufferedLogger()

	log.Log("a")
	log.Log("b")
	log.LogLine("c")
	log.LogLine("second")

	lines := log.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "abc" {
		t.Errorf("lines[0] = %q, want \"abc\" (Log output folded into the line)", lines[0])
	}
	if lines[1] != "second" {
		t.Errorf("lines[1] = %q", lines[1])
	}

	if got := log.String(); got != "abc\nsecond\n" {
		t.Errorf("String() = %q", got)
	}

	// Pending Log output with no LogLine yet still shows up.
	log.Log("tail")
	if got := log.String(); got != "abc\nsecond\ntail" {
		t.Errorf("String() with pending tail = %q", got)
	}

	log.Reset()
	if len(log.Lines()) != 0 || log.String() != "" {
		t.Error("Reset left content behind")
	}
}

func TestNullLogger(t *testing.T) {
	log := NullLogger()
	log.Log("dropped")
	log.LogLine("also dropped")
	// Nothing to assert beyond not blowing up; NullLogger exists to
	// silence diagnostics wholesale.
}
