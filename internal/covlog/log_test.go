package covlog

import (
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"off":    LevelOff,
		"events": LevelEvents,
		"STATE":  LevelState,
	}
	for s, want := range cases {
		got, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNopIsDisabled(t *testing.T) {
	if Nop.Enabled(LevelEvents) || Nop.Enabled(LevelState) {
		t.Fatalf("Nop reports enabled")
	}
}

func TestStreamLogLevels(t *testing.T) {
	var buf strings.Builder
	log := NewStreamLog(&buf, LevelEvents)

	if !log.Enabled(LevelEvents) {
		t.Fatalf("events disabled at LevelEvents")
	}
	if log.Enabled(LevelState) {
		t.Fatalf("state enabled at LevelEvents")
	}

	off := NewStreamLog(&buf, LevelOff)
	if off.Enabled(LevelEvents) {
		t.Fatalf("events enabled at LevelOff")
	}
}

func TestStreamLogOutput(t *testing.T) {
	var buf strings.Builder
	log := NewStreamLog(&buf, LevelState)

	log.Eventf("call", "src/a", 12)
	log.Statef(2, 12, "src/a", "traced")
	log.Statef(0, -1, "src/a", "return")

	out := buf.String()
	if !strings.Contains(out, "event: call src/a 12") {
		t.Fatalf("event line missing:\n%s", out)
	}
	if !strings.Contains(out, "src/a traced") {
		t.Fatalf("state line missing:\n%s", out)
	}
	// Depth 2 lines are indented deeper than depth 0 lines.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	indentOf := func(s string) int { return len(s) - len(strings.TrimLeft(s, " ")) }
	if indentOf(lines[1]) <= indentOf(lines[2]) {
		t.Fatalf("depth-2 line not indented past depth-0 line:\n%q\n%q", lines[1], lines[2])
	}
}
