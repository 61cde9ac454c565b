package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/sketchfmt/internal/source"
)

func TestParseStatsSnapshotPercentiles(t *testing.T) {
	stats := NewParseStats(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		stats.Record(source.FormatSketch, time.Duration(us)*time.Microsecond, nil)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinUs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinUs)
	}
	if snap.MaxUs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxUs)
	}
	if snap.AvgUs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgUs)
	}
	if snap.P50Us != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Us)
	}
	if snap.P95Us != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Us)
	}
	if snap.P99Us != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Us)
	}
}

func TestParseStatsCountsFormatsAndFailures(t *testing.T) {
	stats := NewParseStats(time.Hour)
	stats.Record(source.FormatSketch, time.Microsecond, nil)
	stats.Record(source.FormatRaw, time.Microsecond, errors.New("bad"))
	stats.Record(source.FormatRaw, time.Microsecond, nil)

	snap := stats.Snapshot()
	if snap.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", snap.Failures)
	}
	if snap.ByFormat["hsc"] != 1 || snap.ByFormat["raw"] != 2 {
		t.Errorf("unexpected per-format counts %v", snap.ByFormat)
	}
}

func TestParseStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewParseStats(10 * time.Millisecond)
	stats.Record(source.FormatSketch, 100*time.Microsecond, nil)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(source.FormatSketch, 200*time.Microsecond, nil)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinUs != 200 || snap.MaxUs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}

func TestParseStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewParseStats(time.Hour)
	stats.Record(source.FormatRaw, -10*time.Microsecond, nil)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinUs != 0 || snap.MaxUs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}

func TestParseStatsEmptySnapshot(t *testing.T) {
	snap := NewParseStats(0).Snapshot()
	if snap.Count != 0 || snap.ByFormat == nil {
		t.Errorf("expected empty snapshot with non-nil format map, got %+v", snap)
	}
}
