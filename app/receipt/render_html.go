package receipt

import (
	"fmt"
	"html"
	"strings"

	"KasirApp/app/textgrid"
)

// RenderHTML renders the nota as a pre-formatted monospace block suitable
// for a browser print dialog. Wrappable rows are wrapped to the paper width
// and, for the store block, each wrapped line is centered. A page-break
// marker is appended so multi-nota documents paginate correctly.
func RenderHTML(header Header, items []Item, toko Toko, ws WidthSource) string {
	width := ws.PaperWidth()
	nota := Build(header, items, toko, width)

	var b strings.Builder
	fmt.Fprintf(&b, `<div style="font-family:monospace;white-space:pre;width:%dch;">`, width)

	for _, row := range Rows(nota) {
		switch row.Kind {
		case RowText:
			lines := []string{row.Text}
			if row.Wrap {
				lines = textgrid.Wrap(row.Text, width)
			}
			for _, line := range lines {
				if row.Align == AlignCenter || row.CenterOnWrap {
					line = textgrid.Center(line, width)
				}
				b.WriteString(html.EscapeString(line))
				b.WriteString("\n")
			}
		case RowTwoCol:
			b.WriteString(html.EscapeString(textgrid.TwoColumn(row.Left, row.Right, width)))
			b.WriteString("\n")
		case RowSeparator:
			b.WriteString(strings.Repeat("-", width))
			b.WriteString("\n")
		case RowBlank:
			b.WriteString("\n")
		}
	}

	b.WriteString(`<div class="page-break"></div>`)
	b.WriteString(`</div>`)
	return b.String()
}
