package receipt

import (
	"strings"

	"KasirApp/app/textgrid"
)

// RenderText renders the nota as plain text for messaging apps. No wrapping
// or centering is applied: store name and address go out as single lines
// however long they are, which reads best in a chat bubble.
func RenderText(header Header, items []Item, toko Toko, ws WidthSource) string {
	width := ws.PaperWidth()
	nota := Build(header, items, toko, width)

	var b strings.Builder
	for _, row := range Rows(nota) {
		switch row.Kind {
		case RowText:
			b.WriteString(row.Text)
		case RowTwoCol:
			b.WriteString(textgrid.TwoColumn(row.Left, row.Right, width))
		case RowSeparator:
			b.WriteString(strings.Repeat("-", width))
		case RowBlank:
			// bare newline below
		}
		b.WriteString("\n")
	}
	return b.String()
}
