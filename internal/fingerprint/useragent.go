package fingerprint

import (
	"strings"

	"github.com/BradenHooton/sentinel/internal/models"
)

// Device classes
const (
	DeviceClassDesktop = "desktop"
	DeviceClassMobile  = "mobile"
	DeviceClassTablet  = "tablet"
	DeviceClassBot     = "bot"
	DeviceClassUnknown = "unknown"
)

// ParseUserAgent derives coarse device info from a raw user-agent string.
// Substring heuristics only: the raw string itself remains the device
// identity signal for recognition, so precision here affects display and
// notification copy, nothing else.
func ParseUserAgent(raw string) models.DeviceInfo {
	if strings.TrimSpace(raw) == "" {
		return models.DeviceInfo{
			BrowserFamily: "Unknown",
			OSFamily:      "Unknown",
			DeviceClass:   DeviceClassUnknown,
		}
	}

	ua := strings.ToLower(raw)

	info := models.DeviceInfo{
		BrowserFamily: browserFamily(ua),
		OSFamily:      osFamily(ua),
	}

	switch {
	case isBot(ua):
		info.DeviceClass = DeviceClassBot
	case strings.Contains(ua, "ipad") || (strings.Contains(ua, "tablet") && !strings.Contains(ua, "mobile")):
		info.DeviceClass = DeviceClassTablet
		info.IsMobile = true
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		info.DeviceClass = DeviceClassMobile
		info.IsMobile = true
	default:
		info.DeviceClass = DeviceClassDesktop
	}

	return info
}

func browserFamily(ua string) string {
	// Order matters: Edge and Opera embed "chrome", Chrome embeds "safari"
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge/"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "firefox/"):
		return "Firefox"
	case strings.Contains(ua, "chrome/") || strings.Contains(ua, "crios/"):
		return "Chrome"
	case strings.Contains(ua, "safari/"):
		return "Safari"
	case strings.Contains(ua, "curl/"):
		return "curl"
	default:
		return "Unknown"
	}
}

func osFamily(ua string) string {
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		return "iOS"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

func isBot(ua string) bool {
	for _, marker := range []string{"bot", "crawler", "spider", "slurp", "headless"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
