package observ

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	a := tm.Begin(PhaseAnnotate)
	tm.End(a, "")
	if err := tm.Track(PhaseEngine, func() error { return errors.New("down") }); err == nil {
		t.Fatalf("Track must return fn's error")
	}
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[0].DurationMS != 2 || r.Phases[1].Note != "failed" || r.TotalMS != 4 {
		t.Fatalf("unexpected report %+v", r)
	}
	if s := tm.Summary(); !strings.Contains(s, "engine") || !strings.Contains(s, "// failed") {
		t.Fatalf("summary %q", s)
	}
}

func TestTimerLogValue(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	tm.End(tm.Begin(PhaseMap), "")

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("checked", "timings", tm)
	if out := buf.String(); !strings.Contains(out, "timings.map=1ms") || !strings.Contains(out, "timings.total=1ms") {
		t.Fatalf("log output %q", out)
	}
}

func TestEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("expected zero report, got %+v", r)
	}
}
