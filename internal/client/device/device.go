// Package device derives the device descriptor sent with every login and
// owns the stable per-installation device identifier.
package device

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/mssola/useragent"

	"github.com/dmitrijs2005/evento/internal/client/models"
)

// Collect builds a descriptor from userAgent. It has no side effects and
// never panics: whatever cannot be parsed is left nil and the device class
// falls back to Desktop. DeviceID is left empty; see EnsureID.
func Collect(userAgent string, now time.Time) (d models.Device) {
	d = models.Device{DeviceType: models.DeviceDesktop, LastLogin: now}

	defer func() {
		if r := recover(); r != nil {
			d = models.Device{DeviceType: models.DeviceDesktop, LastLogin: now}
		}
	}()

	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return d
	}

	ua := useragent.New(userAgent)

	name, version := ua.Browser()
	d.Browser = optional(name)
	d.BrowserVersion = optional(version)

	osInfo := ua.OSInfo()
	d.OS = optional(osInfo.Name)
	d.OSVersion = optional(osInfo.Version)

	d.DeviceType = deviceType(ua, userAgent)
	return d
}

func deviceType(ua *useragent.UserAgent, raw string) string {
	switch {
	case strings.Contains(raw, "iPad"),
		strings.Contains(raw, "Tablet"),
		strings.Contains(raw, "Android") && !strings.Contains(raw, "Mobile"):
		return models.DeviceTablet
	case ua.Mobile():
		return models.DeviceMobile
	default:
		return models.DeviceDesktop
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// DefaultUserAgent is the user agent announced by the CLI when none is
// configured. It follows the browser convention so the backend's parser and
// Collect both understand it.
func DefaultUserAgent(version string) string {
	return fmt.Sprintf("Mozilla/5.0 (%s) EventoCLI/%s", platform(), version)
}

func platform() string {
	switch runtime.GOOS {
	case "darwin":
		return "Macintosh; Intel Mac OS X 10_15_7"
	case "windows":
		return "Windows NT 10.0; Win64; x64"
	default:
		arch := "x86_64"
		if runtime.GOARCH == "arm64" {
			arch = "aarch64"
		}
		return "X11; Linux " + arch
	}
}
