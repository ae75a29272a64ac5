// Package device turns raw User-Agent strings into the short display names
// shown in a user's session list.
package device

import (
	"fmt"

	"github.com/mssola/useragent"
)

// ParseUserAgent returns a human-readable "Browser on Platform" summary.
func ParseUserAgent(ua string) string {
	if ua == "" {
		return "Unknown Device"
	}

	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	platform := parsed.OSInfo().Name
	if platform == "" {
		platform = parsed.Platform()
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if platform == "" {
		platform = "Unknown Platform"
	}
	return fmt.Sprintf("%s on %s", browser, platform)
}
