package receipt

import (
	"fmt"
	"strings"

	"KasirApp/app/escpos"
	"KasirApp/app/textgrid"
)

// EscposOptions tunes the thermal printer output.
type EscposOptions struct {
	// QRFooter appends a QR code carrying the nota id, so a companion app
	// can look the transaction up later.
	QRFooter bool
	// Cut appends a partial cut command for printers that support it.
	Cut bool
}

// RenderEscpos renders the nota as an ESC/POS byte stream. The paper width
// is read from ws at call time.
func RenderEscpos(header Header, items []Item, toko Toko, ws WidthSource, opts EscposOptions) ([]byte, error) {
	width := ws.PaperWidth()
	nota := Build(header, items, toko, width)

	enc := escpos.NewEncoder()
	enc.Initialize()

	for _, row := range Rows(nota) {
		switch row.Kind {
		case RowText:
			if row.Align == AlignCenter {
				enc.Align("center")
			} else {
				enc.Align("left")
			}
			enc.Line(row.Text)
		case RowTwoCol:
			enc.Align("left").Line(textgrid.TwoColumn(row.Left, row.Right, width))
		case RowSeparator:
			enc.Align("left").Line(strings.Repeat("-", width))
		case RowBlank:
			enc.Newline()
		}
	}
	enc.Newline()

	if opts.QRFooter {
		enc.Align("center")
		if err := enc.QR(nota.NotaID, 128); err != nil {
			return nil, fmt.Errorf("failed to render nota QR footer: %w", err)
		}
		enc.Newline()
	}
	if opts.Cut {
		enc.Cut()
	}

	return enc.Encode(), nil
}
