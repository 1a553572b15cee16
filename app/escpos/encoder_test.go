package escpos

import (
	"bytes"
	"testing"
)

func TestInitializeEmitsResetFirst(t *testing.T) {
	data := NewEncoder().Initialize().Encode()
	if len(data) < 2 || data[0] != ESC || data[1] != '@' {
		t.Fatalf("expected ESC @ prefix, got % x", data[:min(len(data), 4)])
	}
}

func TestAlignCodes(t *testing.T) {
	tests := []struct {
		align string
		code  byte
	}{
		{"left", 0},
		{"center", 1},
		{"right", 2},
		{"bogus", 0},
	}
	for _, tt := range tests {
		data := NewEncoder().Align(tt.align).Encode()
		want := []byte{ESC, 'a', tt.code}
		if !bytes.Equal(data, want) {
			t.Errorf("Align(%q) = % x, want % x", tt.align, data, want)
		}
	}
}

func TestLineAppendsLineFeed(t *testing.T) {
	data := NewEncoder().Line("Nota: TX-ABC12345").Encode()
	if data[len(data)-1] != NL {
		t.Errorf("expected trailing NL, got % x", data)
	}
	if !bytes.HasPrefix(data, []byte("Nota: TX-ABC12345")) {
		t.Errorf("unexpected payload: %q", data)
	}
}

func TestLineSanitizesNonASCII(t *testing.T) {
	data := NewEncoder().Line("Terima kasih 🙏").Encode()
	for _, b := range data {
		if b > 0x7F {
			t.Fatalf("expected pure ASCII output, got % x", data)
		}
	}
	data = NewEncoder().Line("Café").Encode()
	if !bytes.HasPrefix(data, []byte("Cafe")) {
		t.Errorf("expected accent fold, got %q", data)
	}
}

func TestCut(t *testing.T) {
	data := NewEncoder().Cut().Encode()
	want := []byte{GS, 'V', 66, 0}
	if !bytes.Equal(data, want) {
		t.Errorf("Cut() = % x, want % x", data, want)
	}
}

func TestQREmitsRasterHeader(t *testing.T) {
	enc := NewEncoder()
	if err := enc.QR("TX-ABC12345", 64); err != nil {
		t.Fatalf("QR failed: %v", err)
	}
	data := enc.Encode()
	idx := bytes.Index(data, []byte{GS, 'v', '0', 0})
	if idx != 0 {
		t.Fatalf("expected GS v 0 raster header at start, got % x", data[:min(len(data), 8)])
	}
	if len(data) < 9 {
		t.Fatalf("raster payload too short: %d bytes", len(data))
	}
}

func TestEncodeIsChainable(t *testing.T) {
	data := NewEncoder().
		Initialize().
		Align("center").
		Line("TOKO").
		Align("left").
		Line("--------").
		Newline().
		Encode()
	if len(data) == 0 {
		t.Fatal("expected non-empty stream")
	}
	// Operations must appear in call order.
	center := bytes.Index(data, []byte{ESC, 'a', 1})
	left := bytes.Index(data, []byte{ESC, 'a', 0})
	if center == -1 || left == -1 || center > left {
		t.Errorf("alignment ops out of order: center=%d left=%d", center, left)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
