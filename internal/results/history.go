package results

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/mockexam/internal/model"
)

const sparkChars = " .:-=+*#%@"

// AttemptLister lists stored attempts.
type AttemptLister interface {
	ListAttempts(ctx context.Context, filter model.HistoryFilter) ([]model.StoredAttempt, error)
}

// History contains precomputed data for history rendering.
type History struct {
	Attempts    []model.StoredAttempt
	Percentages []float64
}

// BuildHistory loads attempts and derives their score percentages.
func BuildHistory(ctx context.Context, lister AttemptLister, filter model.HistoryFilter) (History, error) {
	attempts, err := lister.ListAttempts(ctx, filter)
	if err != nil {
		return History{}, err
	}
	pcts := make([]float64, len(attempts))
	for i, a := range attempts {
		if a.TotalMarks > 0 {
			pcts[i] = a.Score / a.TotalMarks * 100
		}
	}
	return History{Attempts: attempts, Percentages: pcts}, nil
}

// RenderHistory prints a table of attempts followed by a smoothed trend.
func RenderHistory(w io.Writer, h History, window int) error {
	if len(h.Attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	headers := []string{"Submitted", "Exam", "Score", "Pct", "Time", "Attempt"}
	rows := make([][]string, 0, len(h.Attempts))
	best := 0.0
	var sum float64
	for i, a := range h.Attempts {
		rows = append(rows, []string{
			a.SubmittedAt.Local().Format("2006-01-02 15:04"),
			a.ExamID,
			fmt.Sprintf("%s/%s", formatMarks(a.Score), formatMarks(a.TotalMarks)),
			fmt.Sprintf("%.0f%%", h.Percentages[i]),
			fmt.Sprintf("%dm", a.ElapsedMinutes),
			a.ID,
		})
		sum += h.Percentages[i]
		if h.Percentages[i] > best {
			best = h.Percentages[i]
		}
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	count := float64(len(h.Attempts))
	if _, err := fmt.Fprintf(w, "\nAttempts: %d  Avg: %.0f%%  Best: %.0f%%\n", len(h.Attempts), sum/count, best); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Trend: [%s]\n", Sparkline(MovingAverage(h.Percentages, window))); err != nil {
		return err
	}
	return nil
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
