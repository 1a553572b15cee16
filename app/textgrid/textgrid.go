package textgrid

import (
	"strings"
	"unicode/utf8"
)

// Package textgrid implements the fixed-width character-grid primitives used
// by the nota renderers. All widths are measured in characters (runes), which
// matches how a monospace thermal printer or a white-space:pre block lays out
// text.

// Wrap splits text into lines of at most width characters. The split is
// greedy: take up to width characters, then back up to the last space or
// comma inside the slice so words stay intact. When a slice contains no
// break character the line is hard-broken at width. Trailing whitespace is
// trimmed from every produced line.
func Wrap(text string, width int) []string {
	if text == "" {
		return nil
	}
	if width <= 0 {
		return []string{strings.TrimRight(text, " \t")}
	}

	runes := []rune(text)
	var lines []string
	start := 0
	for start < len(runes) {
		end := start + width
		if end > len(runes) {
			end = len(runes)
		}
		line := runes[start:end]
		if end < len(runes) {
			breakPos := -1
			for i := len(line) - 1; i >= 0; i-- {
				if line[i] == ' ' || line[i] == ',' {
					breakPos = i
					break
				}
			}
			// Only break mid-slice; a break char at position 0 would
			// produce an empty line and stall progress.
			if breakPos > 0 {
				line = line[:breakPos+1]
				end = start + breakPos + 1
			}
		}
		lines = append(lines, strings.TrimRight(string(line), " \t"))
		start = end
	}
	return lines
}

// Center left-pads text with floor((width-len)/2) spaces, clamped at zero.
// The right side is left unpadded. Empty text yields an empty string.
func Center(text string, width int) string {
	if text == "" {
		return ""
	}
	pad := (width - utf8.RuneCountInString(text)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + text
}

// TwoColumn lays out a label-value pair on one line of exactly width
// characters: left column left-aligned, right column right-aligned, padded
// with spaces in between. Each side is first truncated to width. If the two
// sides do not leave at least one space between them, they are emitted on
// two separate lines instead.
func TwoColumn(left, right string, width int) string {
	left = truncate(left, width)
	right = truncate(right, width)

	space := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if space < 1 {
		return left + "\n" + right
	}
	return left + strings.Repeat(" ", space) + right
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
