// Package platform provides the PlatformAdapter variants for each supported
// operating system.
package platform

import (
	"fmt"
	"strings"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// Parse maps a platform name (as found in config or on the wire) to a Platform.
func Parse(name string) (registration.Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ios":
		return registration.PlatformIOS, nil
	case "android":
		return registration.PlatformAndroid, nil
	case "web":
		return registration.PlatformWeb, nil
	case "other":
		return registration.PlatformOther, nil
	default:
		return "", fmt.Errorf("unknown platform %q", name)
	}
}

// New returns the adapter for p. Anything that is not ios or android gets the
// push-less adapter.
func New(p registration.Platform) registration.PlatformAdapter {
	switch p {
	case registration.PlatformAndroid:
		return androidAdapter{}
	case registration.PlatformIOS:
		return iosAdapter{}
	case registration.PlatformWeb:
		return noPushAdapter{platform: registration.PlatformWeb}
	default:
		return noPushAdapter{platform: registration.PlatformOther}
	}
}

type androidAdapter struct{}

func (androidAdapter) Platform() registration.Platform { return registration.PlatformAndroid }
func (androidAdapter) SupportsPush() bool              { return true }

// RequiresChannel is true: Android 8+ drops notifications posted to a channel
// that was never created.
func (androidAdapter) RequiresChannel() bool { return true }

type iosAdapter struct{}

func (iosAdapter) Platform() registration.Platform { return registration.PlatformIOS }
func (iosAdapter) SupportsPush() bool              { return true }
func (iosAdapter) RequiresChannel() bool           { return false }

type noPushAdapter struct {
	platform registration.Platform
}

func (a noPushAdapter) Platform() registration.Platform { return a.platform }
func (noPushAdapter) SupportsPush() bool                { return false }
func (noPushAdapter) RequiresChannel() bool             { return false }
