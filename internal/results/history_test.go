package results

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/store"
)

type fakeLister struct {
	attempts []model.StoredAttempt
}

func (f fakeLister) ListAttempts(context.Context, model.HistoryFilter) ([]model.StoredAttempt, error) {
	return f.attempts, nil
}

func TestBuildHistoryFromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "mockexam.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := st.SaveAttempt(ctx, model.AttemptResult{ExamID: "mock", Score: 5, TotalMarks: 10}); err != nil {
			t.Fatalf("save attempt: %v", err)
		}
	}
	h, err := BuildHistory(ctx, st, model.HistoryFilter{ExamID: "mock", Last: 2})
	if err != nil {
		t.Fatalf("build history: %v", err)
	}
	if len(h.Attempts) != 2 || len(h.Percentages) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(h.Attempts))
	}
	if h.Percentages[0] != 50 {
		t.Fatalf("expected 50%%, got %.2f", h.Percentages[0])
	}
}

func TestRenderHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lister := fakeLister{attempts: []model.StoredAttempt{
		{ID: "a1", SubmittedAt: base, AttemptResult: model.AttemptResult{ExamID: "mock", Score: 2, TotalMarks: 10}},
		{ID: "a2", SubmittedAt: base.Add(time.Hour), AttemptResult: model.AttemptResult{ExamID: "mock", Score: 8, TotalMarks: 10}},
	}}
	h, err := BuildHistory(context.Background(), lister, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("build history: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderHistory(&buf, h, 1); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Attempts: 2  Avg: 50%  Best: 80%") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "Trend: [ @]") {
		t.Fatalf("unexpected trend:\n%s", out)
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, History{}, 3); err != nil {
		t.Fatalf("render history: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No attempts found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %.1f, got %.1f", i, want[i], got[i])
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}
