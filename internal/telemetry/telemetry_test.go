package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestZeroBeforeFirstFrame(t *testing.T) {
	timer := NewFrameTimer()
	if fps := timer.FramesPerSecond(); fps != 0 {
		t.Fatalf("fps before any frame: %v", fps)
	}
	if up := timer.Uptime(); up != 0 {
		t.Fatalf("uptime before any frame: %v", up)
	}
}

func TestFramesPerSecondConverges(t *testing.T) {
	now := time.Unix(1000, 0)
	timer := NewFrameTimerWithClock(func() time.Time { return now })

	for i := 0; i < 30; i++ {
		timer.RecordFrame()
		now = now.Add(33 * time.Millisecond) // ~30 fps cadence
	}

	fps := timer.FramesPerSecond()
	if fps < 25 || fps > 35 {
		t.Fatalf("fps estimate off: %v", fps)
	}
}

func TestIdenticalTimestampsDoNotDivideByZero(t *testing.T) {
	fixed := time.Unix(1000, 0)
	timer := NewFrameTimerWithClock(func() time.Time { return fixed })

	for i := 0; i < 10; i++ {
		timer.RecordFrame()
	}

	fps := timer.FramesPerSecond()
	if fps < 0 || math.IsInf(fps, 0) || math.IsNaN(fps) {
		t.Fatalf("fps must be finite and non-negative, got %v", fps)
	}
}

func TestUptimeGrowsFromFirstFrame(t *testing.T) {
	now := time.Unix(1000, 0)
	timer := NewFrameTimerWithClock(func() time.Time { return now })

	timer.RecordFrame()
	now = now.Add(90 * time.Second)
	if up := timer.Uptime(); up != 90*time.Second {
		t.Fatalf("unexpected uptime: %v", up)
	}
}

func TestPublisherReplacesSnapshotWholesale(t *testing.T) {
	pub := NewPublisher()
	first := pub.Last()
	if first.SessionID == "" {
		t.Fatalf("session id should be set from the start")
	}

	pub.Publish(Snapshot{FramesPerSecond: 29.7, LastStatus: "sent /skeleton to 2 destinations"})
	got := pub.Last()
	if got.FramesPerSecond != 29.7 {
		t.Fatalf("unexpected fps: %v", got.FramesPerSecond)
	}
	if got.SessionID != first.SessionID {
		t.Fatalf("session id must be stable across publishes")
	}
}

func TestSnapshotText(t *testing.T) {
	s := Snapshot{FramesPerSecond: 30.04, Uptime: 61*time.Second + 400*time.Millisecond}
	if s.FPSText() != "30.0 fps" {
		t.Fatalf("unexpected fps text: %q", s.FPSText())
	}
	if s.UptimeText() != "1m1s" {
		t.Fatalf("unexpected uptime text: %q", s.UptimeText())
	}
}
