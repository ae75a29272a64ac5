package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	t.Run("empty user agent returns unknown device", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", ParseUserAgent(""))
	})

	t.Run("chrome on mac includes browser and platform", func(t *testing.T) {
		ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		result := ParseUserAgent(ua)
		assert.Contains(t, result, "Chrome")
		assert.Contains(t, result, "on")
	})

	t.Run("firefox on linux includes browser", func(t *testing.T) {
		ua := "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
		result := ParseUserAgent(ua)
		assert.Contains(t, result, "Firefox")
	})

	t.Run("result has no leading or trailing whitespace", func(t *testing.T) {
		result := ParseUserAgent("Unknown/1.0")
		assert.Equal(t, result, strings.TrimSpace(result))
		assert.NotEmpty(t, result)
	})
}
