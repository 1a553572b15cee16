package services

import "strings"

// ClientEnv describes the browser environment a request came from, as
// reported by the client. The values mirror what the browser exposes:
// navigator.userAgent, navigator.maxTouchPoints and window.innerWidth.
type ClientEnv struct {
	UserAgent      string `json:"user_agent"`
	MaxTouchPoints int    `json:"max_touch_points"`
	ViewportWidth  int    `json:"viewport_width"`
}

// Screens wider than this are treated as desktops even when they report
// touch support.
const smallScreenMaxWidth = 1024

// PlatformDetector classifies clients as handheld (Android POS terminals,
// phones) or desktop, which decides the print path.
type PlatformDetector struct {
	logger *LoggerService
}

// NewPlatformDetector creates a new platform detector
func NewPlatformDetector(logger *LoggerService) *PlatformDetector {
	return &PlatformDetector{logger: logger}
}

// IsHandheld reports whether the client should use the raw-bytes intent
// print path. Android user agents always qualify. Linux user agents
// qualify only when the device reports multi-touch and a small screen,
// which covers Android webviews that hide their platform.
func (d *PlatformDetector) IsHandheld(env ClientEnv) bool {
	ua := strings.ToLower(env.UserAgent)

	if strings.Contains(ua, "android") {
		return true
	}

	if strings.Contains(ua, "linux") &&
		env.MaxTouchPoints > 1 &&
		env.ViewportWidth > 0 &&
		env.ViewportWidth <= smallScreenMaxWidth {
		return true
	}

	return false
}
