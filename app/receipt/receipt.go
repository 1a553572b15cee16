package receipt

import (
	"fmt"
	"strings"
	"time"
)

// Package receipt builds the renderer-agnostic nota model for one sale and
// renders it into the three delivery formats: ESC/POS bytes for thermal
// printers, HTML for the browser print dialog, and plain text for WhatsApp.

// Header is the transaction header as recorded by the cashier client.
type Header struct {
	ClientTxID    string    `json:"client_tx_id"`
	Tanggal       time.Time `json:"tanggal_client"` // client-reported timestamp
	TanggalServer time.Time `json:"tanggal"`        // server-side timestamp
	Bayar         float64   `json:"bayar"`
	Kembalian     float64   `json:"kembalian"`
	MetodeBayar   string    `json:"metode_bayar"`
}

// Item is one sold line item. Potongan (discount) defaults to zero.
type Item struct {
	Nama      string  `json:"nama"`
	Qty       int     `json:"qty"`
	HargaJual float64 `json:"harga_jual"`
	Potongan  float64 `json:"potongan"`
}

// Toko identifies the store printing the nota.
type Toko struct {
	Nama   string `json:"nama"`
	Alamat string `json:"alamat"`
}

// ItemRow is a computed item line on the nota.
type ItemRow struct {
	Nama     string
	Qty      int
	Harga    float64
	Potongan float64
	Sub      float64
}

// Nota is the computed, renderer-agnostic receipt for one transaction.
// Built fresh per print request and never mutated afterwards.
type Nota struct {
	Toko       Toko
	NotaID     string
	TanggalStr string
	Items      []ItemRow
	Total      float64
	Bayar      float64
	Kembali    float64
	Metode     string
	Width      int
}

// WidthSource provides the live paper width preference. Renderers read it at
// call time, so a preference change between calls changes the layout without
// rebuilding anything.
type WidthSource interface {
	PaperWidth() int
}

// FixedWidth is a WidthSource returning a constant width. Used by tests and
// by callers that pin a layout.
type FixedWidth int

// PaperWidth implements WidthSource.
func (w FixedWidth) PaperWidth() int {
	return int(w)
}

// Build normalizes the raw transaction into a Nota. It never fails: missing
// optional fields degrade to defaults, and numeric inputs pass through
// unvalidated.
func Build(header Header, items []Item, toko Toko, width int) Nota {
	id := strings.ToUpper(header.ClientTxID)
	if runes := []rune(id); len(runes) > 8 {
		id = string(runes[:8])
	}

	tanggal := header.Tanggal
	if tanggal.IsZero() {
		tanggal = header.TanggalServer
	}
	if tanggal.IsZero() {
		tanggal = time.Now()
	}

	nota := Nota{
		Toko:       Toko{Nama: "TOKO", Alamat: ""},
		NotaID:     "TX-" + id,
		TanggalStr: FormatTanggal(tanggal),
		Bayar:      header.Bayar,
		Kembali:    header.Kembalian,
		Metode:     header.MetodeBayar,
		Width:      width,
	}
	if toko.Nama != "" {
		nota.Toko.Nama = toko.Nama
	}
	nota.Toko.Alamat = toko.Alamat

	for _, it := range items {
		sub := float64(it.Qty)*it.HargaJual - it.Potongan
		nota.Items = append(nota.Items, ItemRow{
			Nama:     it.Nama,
			Qty:      it.Qty,
			Harga:    it.HargaJual,
			Potongan: it.Potongan,
			Sub:      sub,
		})
		nota.Total += sub
	}

	return nota
}

// FormatMoney renders a rupiah amount without decimals.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.0f", amount)
}

var hariID = map[time.Weekday]string{
	time.Monday:    "Senin",
	time.Tuesday:   "Selasa",
	time.Wednesday: "Rabu",
	time.Thursday:  "Kamis",
	time.Friday:    "Jumat",
	time.Saturday:  "Sabtu",
	time.Sunday:    "Minggu",
}

// FormatTanggal renders a timestamp in the long Indonesian form used on the
// nota, e.g. "Senin, 14-09-2025 12:34:00".
func FormatTanggal(t time.Time) string {
	return fmt.Sprintf("%s, %s", hariID[t.Weekday()], t.Format("02-01-2006 15:04:05"))
}
