package receipt

import (
	"html"
	"regexp"
	"strings"
	"testing"
)

// escposLines strips control sequences from an ESC/POS stream and returns
// the printed text lines.
func escposLines(t *testing.T, data []byte) []string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < len(data); {
		switch data[i] {
		case 0x1B: // ESC @: 2 bytes, other ESC commands: 3 bytes
			if i+1 < len(data) && data[i+1] == '@' {
				i += 2
			} else {
				i += 3
			}
		case 0x1D: // GS V n m
			i += 4
		default:
			b.WriteByte(data[i])
			i++
		}
	}
	return strings.Split(b.String(), "\n")
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func htmlLines(t *testing.T, markup string) []string {
	t.Helper()
	return strings.Split(html.UnescapeString(htmlTag.ReplaceAllString(markup, "")), "\n")
}

// normalize trims whitespace and drops empty lines so outputs can be
// compared modulo alignment padding and blank rows.
func normalize(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func TestRenderersAgreeOnRowContent(t *testing.T) {
	header, items, toko := fixtureTransaction()
	width := FixedWidth(32)

	escData, err := RenderEscpos(header, items, toko, width, EscposOptions{})
	if err != nil {
		t.Fatalf("RenderEscpos failed: %v", err)
	}
	esc := normalize(escposLines(t, escData))
	htm := normalize(htmlLines(t, RenderHTML(header, items, toko, width)))
	txt := normalize(strings.Split(RenderText(header, items, toko, width), "\n"))

	if len(esc) != len(htm) || len(htm) != len(txt) {
		t.Fatalf("row counts differ: escpos=%d html=%d text=%d\nescpos=%q\nhtml=%q\ntext=%q",
			len(esc), len(htm), len(txt), esc, htm, txt)
	}
	for i := range txt {
		if esc[i] != txt[i] {
			t.Errorf("row %d differs escpos=%q text=%q", i, esc[i], txt[i])
		}
		if htm[i] != txt[i] {
			t.Errorf("row %d differs html=%q text=%q", i, htm[i], txt[i])
		}
	}
}

func TestRenderersShowComputedTotals(t *testing.T) {
	header, items, toko := fixtureTransaction()
	width := FixedWidth(32)

	for name, output := range map[string]string{
		"text": RenderText(header, items, toko, width),
		"html": strings.Join(htmlLines(t, RenderHTML(header, items, toko, width)), "\n"),
	} {
		if !strings.Contains(output, "TX-ABC12345") {
			t.Errorf("%s output missing nota id", name)
		}
		if !strings.Contains(output, "2 x 10000") {
			t.Errorf("%s output missing qty row", name)
		}
		// Subtotal and total both read 20000.
		if strings.Count(output, "20000") < 2 {
			t.Errorf("%s output missing 20000 rows:\n%s", name, output)
		}
	}
}

func TestDiscountRowOnlyWhenPresent(t *testing.T) {
	header, items, toko := fixtureTransaction()
	width := FixedWidth(32)

	out := RenderText(header, items, toko, width)
	if strings.Contains(out, "Potongan") {
		t.Errorf("unexpected discount row:\n%s", out)
	}

	items[0].Potongan = 2000
	out = RenderText(header, items, toko, width)
	if !strings.Contains(out, "Potongan") {
		t.Errorf("missing discount row:\n%s", out)
	}
	if !strings.Contains(out, "18000") {
		t.Errorf("discount not applied to subtotal:\n%s", out)
	}
}

func TestWidthChangeOnlyAffectsLayout(t *testing.T) {
	header, items, toko := fixtureTransaction()

	narrow := RenderText(header, items, toko, FixedWidth(32))
	wide := RenderText(header, items, toko, FixedWidth(42))

	if narrow == wide {
		t.Fatal("expected different layouts for different widths")
	}
	if !strings.Contains(narrow, strings.Repeat("-", 32)) {
		t.Error("narrow output missing 32-char separator")
	}
	if !strings.Contains(wide, strings.Repeat("-", 42)) {
		t.Error("wide output missing 42-char separator")
	}

	// Content is identical once padding collapses.
	squash := func(s string) string {
		return regexp.MustCompile(` +`).ReplaceAllString(strings.ReplaceAll(s, "-", ""), " ")
	}
	if squash(narrow) != squash(wide) {
		t.Errorf("width change altered content:\n%q\n%q", squash(narrow), squash(wide))
	}
}

func TestRenderHTMLStructure(t *testing.T) {
	header, items, toko := fixtureTransaction()
	markup := RenderHTML(header, items, toko, FixedWidth(32))

	if !strings.Contains(markup, "width:32ch") {
		t.Error("missing fixed character width")
	}
	if !strings.Contains(markup, "white-space:pre") {
		t.Error("missing pre-formatted style")
	}
	if !strings.Contains(markup, `<div class="page-break"></div>`) {
		t.Error("missing page-break marker")
	}
	// Store name is centered within the grid.
	if !strings.Contains(markup, "          Warung Iin") {
		t.Errorf("store name not centered:\n%s", markup)
	}
}

func TestRenderEscposStartsWithInitialize(t *testing.T) {
	header, items, toko := fixtureTransaction()
	data, err := RenderEscpos(header, items, toko, FixedWidth(32), EscposOptions{})
	if err != nil {
		t.Fatalf("RenderEscpos failed: %v", err)
	}
	if len(data) < 2 || data[0] != 0x1B || data[1] != '@' {
		t.Fatalf("expected ESC @ prefix, got % x", data[:4])
	}
}

func TestRenderEscposQRFooter(t *testing.T) {
	header, items, toko := fixtureTransaction()
	plain, err := RenderEscpos(header, items, toko, FixedWidth(32), EscposOptions{})
	if err != nil {
		t.Fatal(err)
	}
	withQR, err := RenderEscpos(header, items, toko, FixedWidth(32), EscposOptions{QRFooter: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(withQR) <= len(plain) {
		t.Error("expected QR footer to extend the stream")
	}
}
