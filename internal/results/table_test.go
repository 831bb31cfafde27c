package results

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Section", "Marks", "Score"}
	rows := [][]string{
		{"Reasoning", "5.5/10", "55%"},
		{"GK", "0/4", "0%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Section     Marks  Score" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Reasoning  5.5/10    55%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "GK            0/4     0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"गणित", "1"}, {"Math", "2"}}, nil)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[2] != "Math  2" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
