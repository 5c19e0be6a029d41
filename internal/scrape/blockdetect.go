package scrape

import (
	"bytes"
	"net/http"
)

// BlockType describes the kind of anti-bot page detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

var (
	cloudflareMarkers = [][]byte{[]byte("checking your browser"), []byte("cf-browser-verification"), []byte("just a moment...")}
	captchaMarkers    = [][]byte{[]byte("captcha")}
)

// DetectBlock reports whether a response is an anti-bot interstitial rather
// than the real page.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" ||
			resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	lower := bytes.ToLower(body)
	for _, m := range cloudflareMarkers {
		if bytes.Contains(lower, m) {
			return true, BlockCloudflare
		}
	}
	if bytes.Contains(lower, []byte("cloudflare")) && bytes.Contains(lower, []byte("challenge")) {
		return true, BlockCloudflare
	}
	for _, m := range captchaMarkers {
		if bytes.Contains(lower, m) {
			return true, BlockCaptcha
		}
	}

	// A tiny body that only asks for JavaScript or redirects client side.
	if len(body) < 2000 {
		if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("javascript")) {
			return true, BlockJSShell
		}
		if bytes.Contains(lower, []byte(`http-equiv="refresh"`)) {
			return true, BlockJSShell
		}
	}
	return false, BlockNone
}
