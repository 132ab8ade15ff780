package history

import (
	"context"
	"testing"
	"time"

	"hex/internal/runner"
)

var _ runner.Recorder = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "")
	if err != nil {
		t.Skipf("duckdb unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecentRuns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, out := range []string{"first\n", "second\n", "third\n"} {
		err := s.RecordRun(ctx, runner.Result{
			TaskID:    "clock",
			Output:    out,
			ExitCode:  i % 2,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Duration:  time.Duration(i+1) * 100 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("RecordRun() error: %v", err)
		}
	}
	if err := s.RecordRun(ctx, runner.Result{TaskID: "other", StartedAt: base}); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}

	runs, err := s.RecentRuns(ctx, "clock", 2)
	if err != nil {
		t.Fatalf("RecentRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Output != "third\n" || runs[1].Output != "second\n" {
		t.Errorf("Expected newest first, got %q then %q", runs[0].Output, runs[1].Output)
	}
	if runs[0].Duration != 300*time.Millisecond {
		t.Errorf("Expected duration 300ms, got %v", runs[0].Duration)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Expected start %v, got %v", base.Add(2*time.Minute), runs[0].StartedAt)
	}
	if runs[0].ID == "" || runs[0].ID == runs[1].ID {
		t.Error("Expected unique run ids")
	}
}

func TestRecordRunRequiresTask(t *testing.T) {
	s := openTestStore(t)
	if err := s.RecordRun(context.Background(), runner.Result{}); err == nil {
		t.Error("Expected error for a run without a task id")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	runs := []runner.Result{
		{TaskID: "a", ExitCode: 0, StartedAt: now, Duration: 100 * time.Millisecond},
		{TaskID: "a", ExitCode: 2, StartedAt: now.Add(time.Second), Duration: 300 * time.Millisecond},
		{TaskID: "b", ExitCode: 0, StartedAt: now, Duration: 50 * time.Millisecond},
	}
	for _, r := range runs {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected stats for 2 tasks, got %d", len(stats))
	}
	a := stats[0]
	if a.TaskID != "a" || a.Runs != 2 || a.Failures != 1 {
		t.Errorf("Unexpected stats for a: %+v", a)
	}
	if a.AvgDuration != 200*time.Millisecond {
		t.Errorf("Expected average 200ms, got %v", a.AvgDuration)
	}
}
