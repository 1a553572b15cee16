package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"KasirApp/app/receipt"
)

// Dispatch targets for a print request.
const (
	PrintTargetRawBT   = "rawbt"
	PrintTargetBrowser = "browser"
)

// Client-side timing constants, sent along with every dispatch so the
// browser behaves the same on every device.
const (
	// Delay before launching the intent, giving the tab time to settle.
	intentLaunchDelayMS = 200
	// Interval for polling whether the print window may be closed.
	printPollIntervalMS = 300
	// Give up closing the print window after this many polls.
	printPollLimit = 40
)

// PrintDispatch tells the client how to print a nota. Exactly one of
// IntentURL or HTML is populated depending on Target.
type PrintDispatch struct {
	Target         string `json:"target"`
	IntentURL      string `json:"intent_url,omitempty"`
	LaunchDelayMS  int    `json:"launch_delay_ms,omitempty"`
	HTML           string `json:"html,omitempty"`
	PollIntervalMS int    `json:"poll_interval_ms,omitempty"`
	PollLimit      int    `json:"poll_limit,omitempty"`
	Fallback       bool   `json:"fallback"`
}

// Notifier receives out-of-band print events, such as a handheld print
// path falling back to the browser. The WebSocket hub implements it.
type Notifier interface {
	NotifyPrintFallback(notaID string, reason string)
}

// PrintService decides the print path for each request and produces the
// payload the client executes.
type PrintService struct {
	detector *PlatformDetector
	widths   receipt.WidthSource
	logger   *LoggerService
	notifier Notifier

	intentPackage string
	qrFooter      bool

	// buildIntent is swappable in tests to simulate intent failures.
	buildIntent func(header receipt.Header, items []receipt.Item, toko receipt.Toko) (string, error)
}

// NewPrintService creates a new print service
func NewPrintService(detector *PlatformDetector, widths receipt.WidthSource, logger *LoggerService, notifier Notifier, intentPackage string, qrFooter bool) *PrintService {
	if intentPackage == "" {
		intentPackage = "ru.a402d.rawbtprinter"
	}
	s := &PrintService{
		detector:      detector,
		widths:        widths,
		logger:        logger,
		notifier:      notifier,
		intentPackage: intentPackage,
		qrFooter:      qrFooter,
	}
	s.buildIntent = s.buildIntentURL
	return s
}

// PrintNota produces the dispatch for one nota. Handheld clients get the
// raw-bytes intent path; everything else gets a self-printing HTML
// document. A handheld client whose intent cannot be built falls back to
// the browser path exactly once, flagged so the UI can tell the cashier.
func (s *PrintService) PrintNota(header receipt.Header, items []receipt.Item, toko receipt.Toko, env ClientEnv) (*PrintDispatch, error) {
	if s.detector.IsHandheld(env) {
		intentURL, err := s.buildIntent(header, items, toko)
		if err == nil {
			return &PrintDispatch{
				Target:        PrintTargetRawBT,
				IntentURL:     intentURL,
				LaunchDelayMS: intentLaunchDelayMS,
			}, nil
		}

		if s.logger != nil {
			s.logger.LogError("Intent print path failed, falling back to browser", err)
		}
		if s.notifier != nil {
			s.notifier.NotifyPrintFallback(header.ClientTxID, err.Error())
		}

		dispatch, berr := s.browserDispatch(header, items, toko)
		if berr != nil {
			return nil, fmt.Errorf("print failed on both paths: %w", berr)
		}
		dispatch.Fallback = true
		return dispatch, nil
	}

	return s.browserDispatch(header, items, toko)
}

func (s *PrintService) browserDispatch(header receipt.Header, items []receipt.Item, toko receipt.Toko) (*PrintDispatch, error) {
	html := receipt.RenderHTML(header, items, toko, s.widths)
	return &PrintDispatch{
		Target:         PrintTargetBrowser,
		HTML:           wrapPrintDocument(html),
		PollIntervalMS: printPollIntervalMS,
		PollLimit:      printPollLimit,
	}, nil
}

// RenderPrinterBytes renders the nota as the ESC/POS stream the intent
// path would send to the printer.
func (s *PrintService) RenderPrinterBytes(header receipt.Header, items []receipt.Item, toko receipt.Toko) ([]byte, error) {
	return receipt.RenderEscpos(header, items, toko, s.widths, receipt.EscposOptions{
		QRFooter: s.qrFooter,
		Cut:      true,
	})
}

// buildIntentURL renders the nota as printer bytes and packs them into a
// rawbt intent URI the Android client can launch.
func (s *PrintService) buildIntentURL(header receipt.Header, items []receipt.Item, toko receipt.Toko) (string, error) {
	raw, err := s.RenderPrinterBytes(header, items, toko)
	if err != nil {
		return "", fmt.Errorf("failed to render printer bytes: %w", err)
	}

	return fmt.Sprintf("intent:%s#Intent;scheme=rawbt;package=%s;end;",
		encodeBinaryURIComponent(raw), s.intentPackage), nil
}

// encodeBinaryURIComponent percent-encodes printer bytes the way a
// browser encodes a binary string: each byte becomes the code point of
// the same value, then the code point is UTF-8 percent-encoded. Bytes
// above 0x7F therefore expand to two escapes. The unreserved set matches
// encodeURIComponent.
func encodeBinaryURIComponent(data []byte) string {
	var b strings.Builder
	buf := make([]byte, 4)
	for _, c := range data {
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		n := utf8.EncodeRune(buf, rune(c))
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "%%%02X", buf[i])
		}
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// wrapPrintDocument turns the nota markup into a standalone document that
// prints itself when opened and then polls until the window may close.
func wrapPrintDocument(body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Nota</title>\n")
	b.WriteString("<style>@media print { .page-break { page-break-after: always; } } body { margin: 0; }</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n<script>\n")
	fmt.Fprintf(&b, `window.onload = function () {
  window.print();
  var polls = 0;
  var timer = setInterval(function () {
    polls++;
    if (polls >= %d || document.hasFocus()) {
      clearInterval(timer);
      window.close();
    }
  }, %d);
};
`, printPollLimit, printPollIntervalMS)
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}
