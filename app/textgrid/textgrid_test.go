package textgrid

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapLineLengths(t *testing.T) {
	texts := []string{
		"Gula Pasir Premium 1kg",
		"Jl. Mawar No. 12, Blok C, Perumahan Indah Sekali, Bandung",
		"katapanjangsekalitanpaspasisamasekali",
		"a b c d e f g h i j k l m n o p",
		"Kopi",
	}
	for _, width := range []int{8, 32, 42} {
		for _, text := range texts {
			for i, line := range Wrap(text, width) {
				if utf8.RuneCountInString(line) > width {
					t.Errorf("Wrap(%q, %d) line %d is %d chars: %q",
						text, width, i, utf8.RuneCountInString(line), line)
				}
			}
		}
	}
}

func TestWrapReconstructsText(t *testing.T) {
	text := "Minyak Goreng Sawit, Kemasan Pouch 2 Liter Refill"
	for _, width := range []int{10, 32, 42} {
		joined := strings.Join(Wrap(text, width), "")
		// Wrapping only removes trailing whitespace at break points.
		want := strings.ReplaceAll(text, " ", "")
		got := strings.ReplaceAll(joined, " ", "")
		if got != want {
			t.Errorf("Wrap(%q, %d) lost content: %q", text, width, joined)
		}
	}
}

func TestWrapBreaksAtSpaceOrComma(t *testing.T) {
	lines := Wrap("Teh Botol Sosro Kotak 250ml", 12)
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %v", lines)
	}
	if lines[0] != "Teh Botol" {
		t.Errorf("expected first line %q, got %q", "Teh Botol", lines[0])
	}

	lines = Wrap("Satu,Dua,Tiga,Empat", 9)
	if lines[0] != "Satu,Dua," {
		t.Errorf("expected comma break, got %q", lines[0])
	}
}

func TestWrapHardBreak(t *testing.T) {
	lines := Wrap("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapEmpty(t *testing.T) {
	if lines := Wrap("", 32); lines != nil {
		t.Errorf("expected no lines for empty text, got %v", lines)
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"TOKO", 32, strings.Repeat(" ", 14) + "TOKO"},
		{"ab", 5, " ab"},        // floor((5-2)/2) = 1
		{"abcdef", 4, "abcdef"}, // wider than width: no padding
		{"", 32, ""},
	}
	for _, tt := range tests {
		if got := Center(tt.text, tt.width); got != tt.want {
			t.Errorf("Center(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestCenterNoRightPadding(t *testing.T) {
	got := Center("Terima kasih", 32)
	if strings.HasSuffix(got, " ") {
		t.Errorf("expected no right padding, got %q", got)
	}
	if utf8.RuneCountInString(got) != 10+12 {
		t.Errorf("expected left pad of 10, got %q", got)
	}
}

func TestTwoColumnExactWidth(t *testing.T) {
	got := TwoColumn("TOTAL", "20000", 32)
	if utf8.RuneCountInString(got) != 32 {
		t.Errorf("expected 32-char line, got %d: %q", utf8.RuneCountInString(got), got)
	}
	if !strings.HasPrefix(got, "TOTAL") || !strings.HasSuffix(got, "20000") {
		t.Errorf("unexpected layout: %q", got)
	}
}

func TestTwoColumnOverflowSplitsLines(t *testing.T) {
	got := TwoColumn("1234567890123456", "abcdefghij1234567", 32)
	parts := strings.Split(got, "\n")
	if len(parts) != 2 {
		t.Fatalf("expected two lines when columns overflow, got %q", got)
	}
	if parts[0] != "1234567890123456" || parts[1] != "abcdefghij1234567" {
		t.Errorf("unexpected split: %q", got)
	}
}

func TestTwoColumnTruncatesSides(t *testing.T) {
	long := strings.Repeat("x", 50)
	got := TwoColumn(long, "1", 32)
	parts := strings.Split(got, "\n")
	if utf8.RuneCountInString(parts[0]) != 32 {
		t.Errorf("expected left side truncated to 32, got %d", utf8.RuneCountInString(parts[0]))
	}
}
