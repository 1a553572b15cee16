package escpos

import (
	"bytes"
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
)

// ESC/POS control bytes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	NL  byte = 0x0A
)

// Encoder accumulates an ordered sequence of ESC/POS printer operations and
// turns them into the raw byte stream a thermal printer (or a printer
// companion app such as RawBT) consumes. Methods are chainable.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Initialize resets the printer (ESC @) and selects code page 850 so basic
// Latin text prints consistently across firmwares.
func (e *Encoder) Initialize() *Encoder {
	e.buf.Write([]byte{ESC, '@'})
	e.buf.Write([]byte{ESC, 't', 2})
	return e
}

// Align sets text alignment: "left", "center" or "right" (ESC a).
func (e *Encoder) Align(align string) *Encoder {
	var a byte = 0
	switch align {
	case "center":
		a = 1
	case "right":
		a = 2
	}
	e.buf.Write([]byte{ESC, 'a', a})
	return e
}

// Emphasize toggles bold printing (ESC E).
func (e *Encoder) Emphasize(on bool) *Encoder {
	var v byte = 0
	if on {
		v = 1
	}
	e.buf.Write([]byte{ESC, 'E', v})
	return e
}

// Line writes text followed by a line feed. Text is reduced to printable
// ASCII first; thermal firmwares disagree on extended code pages, so
// anything outside the safe range is folded or dropped.
func (e *Encoder) Line(text string) *Encoder {
	e.buf.WriteString(sanitize(text))
	e.buf.WriteByte(NL)
	return e
}

// Newline emits a single blank line.
func (e *Encoder) Newline() *Encoder {
	e.buf.WriteByte(NL)
	return e
}

// Cut triggers a partial paper cut (GS V).
func (e *Encoder) Cut() *Encoder {
	e.buf.Write([]byte{GS, 'V', 66, 0})
	return e
}

// QR renders data as a QR code and emits it as a GS v 0 raster bitmap of
// roughly size x size dots.
func (e *Encoder) QR(data string, size int) error {
	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	return e.raster(qr.Image(size))
}

// Encode returns the accumulated byte stream.
func (e *Encoder) Encode() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out
}

// Reset discards all accumulated operations.
func (e *Encoder) Reset() {
	e.buf.Reset()
}

// raster converts a monochrome-ish image to an ESC/POS raster bitmap.
// GS v 0 m xL xH yL yH d1..dk, 8 pixels per byte, bit set = print black.
func (e *Encoder) raster(img image.Image) error {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("empty raster image")
	}

	widthBytes := (width + 7) / 8

	e.buf.WriteByte(GS)
	e.buf.WriteByte('v')
	e.buf.WriteByte('0')
	e.buf.WriteByte(0)
	e.buf.WriteByte(byte(widthBytes % 256))
	e.buf.WriteByte(byte(widthBytes / 256))
	e.buf.WriteByte(byte(height % 256))
	e.buf.WriteByte(byte(height / 256))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x += 8 {
			var b byte
			for bit := 0; bit < 8; bit++ {
				px := x + bit
				if px >= width {
					continue
				}
				r, g, bl, _ := img.At(bounds.Min.X+px, bounds.Min.Y+y).RGBA()
				// Standard luminance, threshold at mid-gray.
				gray := (299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000
				if gray < 128 {
					b |= 1 << uint(7-bit)
				}
			}
			e.buf.WriteByte(b)
		}
	}

	e.buf.WriteByte(NL)
	return nil
}

// sanitize folds text to printable ASCII. Known Latin accents map to their
// base letters; anything else outside ASCII becomes a space.
func sanitize(text string) string {
	replacements := map[rune]rune{
		'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u',
		'Á': 'A', 'É': 'E', 'Í': 'I', 'Ó': 'O', 'Ú': 'U',
		'ñ': 'n', 'Ñ': 'N', 'ü': 'u', 'Ü': 'U',
	}

	var result []rune
	for _, r := range text {
		switch {
		case r == '\n' || (r >= 0x20 && r < 0x7F):
			result = append(result, r)
		default:
			if rep, ok := replacements[r]; ok {
				result = append(result, rep)
			} else {
				result = append(result, ' ')
			}
		}
	}
	return string(result)
}
