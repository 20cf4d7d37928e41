package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinnerNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading dashboard").Start()
	s.Success("Dashboard loaded")

	if got := buf.String(); got != "✓ Dashboard loaded\n" {
		t.Errorf("output = %q, want only the success line", got)
	}
}

func TestSpinnerStopsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Sending").Start()
	s.Fail("Send failed")
	s.Success("ignored")
	s.Stop()

	if got := buf.String(); got != "✗ Send failed\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSpinnerAnimates(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Working")
	s.animate = true
	s.Start()
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Working") || !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("output = %q, want a frame then a cleared line", out)
	}
}
