// Package device turns a User-Agent header into a short label for audit
// events, e.g. "Chrome on macOS".
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// Info is the parsed User-Agent.
type Info struct {
	Browser string
	OS      string
	Mobile  bool
	// Platform is the hardware family reported by mobile agents, e.g. "iPhone".
	Platform string
}

// Describe parses a User-Agent. Empty fields mean the agent did not say.
func Describe(userAgentString string) Info {
	if strings.TrimSpace(userAgentString) == "" {
		return Info{}
	}
	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	return Info{
		Browser:  strings.TrimSpace(browser),
		OS:       strings.TrimSpace(ua.OS()),
		Mobile:   ua.Mobile(),
		Platform: strings.TrimSpace(ua.Platform()),
	}
}

// Label formats the info as "Browser on OS". Mobile agents use the platform
// instead of the OS when one is reported.
func (i Info) Label() string {
	if i.Mobile && i.Platform != "" {
		return strings.TrimSpace(i.Browser + " on " + i.Platform)
	}
	browser := i.Browser
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := i.OS
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}

// ParseUserAgent extracts a human-readable device display name from a
// User-Agent string.
func ParseUserAgent(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return unknownDevice
	}
	return Describe(userAgentString).Label()
}
