package receipt

import "fmt"

// RowKind classifies a nota row.
type RowKind int

const (
	// RowText is a single text line.
	RowText RowKind = iota
	// RowTwoCol is a label/value pair padded to the paper width.
	RowTwoCol
	// RowSeparator is a full-width dashed rule.
	RowSeparator
	// RowBlank is an empty line.
	RowBlank
)

// Align is the printer alignment of a text row.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Row is one entry of the shared row program. Every renderer consumes the
// same ordered sequence; only whitespace, markup and encoding differ per
// backend.
//
// Wrap marks rows a character-grid renderer may wrap to the paper width.
// CenterOnWrap additionally centers each produced line; the ESC/POS backend
// ignores both (the printer firmware wraps on its own) and the plain-text
// backend emits the raw text.
type Row struct {
	Kind         RowKind
	Align        Align
	Text         string
	Left, Right  string
	Wrap         bool
	CenterOnWrap bool
}

// Rows builds the row program for a nota. Any change to the receipt content
// belongs here, so all three renderers stay in lockstep.
func Rows(n Nota) []Row {
	rows := []Row{
		{Kind: RowText, Align: AlignCenter, Text: n.Toko.Nama, Wrap: true, CenterOnWrap: true},
		{Kind: RowText, Text: n.Toko.Alamat, Wrap: true, CenterOnWrap: true},
		{Kind: RowSeparator},
		{Kind: RowText, Text: "Nota: " + n.NotaID},
		{Kind: RowText, Text: "Tanggal: " + n.TanggalStr},
		{Kind: RowSeparator},
	}

	for _, it := range n.Items {
		rows = append(rows,
			Row{Kind: RowText, Text: it.Nama, Wrap: true},
			Row{
				Kind: RowTwoCol,
				Left: fmt.Sprintf("%d x %s", it.Qty, FormatMoney(it.Harga)),
				Right: FormatMoney(it.Sub),
			},
		)
		if it.Potongan != 0 {
			rows = append(rows, Row{Kind: RowTwoCol, Left: "Potongan", Right: FormatMoney(it.Potongan)})
		}
	}

	rows = append(rows,
		Row{Kind: RowSeparator},
		Row{Kind: RowTwoCol, Left: "TOTAL", Right: FormatMoney(n.Total)},
		Row{Kind: RowTwoCol, Left: "Bayar", Right: FormatMoney(n.Bayar)},
		Row{Kind: RowTwoCol, Left: "Kembali", Right: FormatMoney(n.Kembali)},
		Row{Kind: RowText, Text: "Metode: " + n.Metode},
		Row{Kind: RowBlank},
		Row{Kind: RowText, Align: AlignCenter, Text: "Terima kasih"},
	)

	return rows
}
