package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-registration/internal/platform"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

func TestParse(t *testing.T) {
	cases := map[string]registration.Platform{
		"ios":     registration.PlatformIOS,
		"Android": registration.PlatformAndroid,
		" web ":   registration.PlatformWeb,
		"OTHER":   registration.PlatformOther,
	}
	for in, want := range cases {
		got, err := platform.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := platform.Parse("windows-phone")
	assert.Error(t, err)
}

func TestNew_Capabilities(t *testing.T) {
	t.Run("Android needs push and a channel", func(t *testing.T) {
		a := platform.New(registration.PlatformAndroid)
		assert.Equal(t, registration.PlatformAndroid, a.Platform())
		assert.True(t, a.SupportsPush())
		assert.True(t, a.RequiresChannel())
	})

	t.Run("iOS needs push only", func(t *testing.T) {
		a := platform.New(registration.PlatformIOS)
		assert.True(t, a.SupportsPush())
		assert.False(t, a.RequiresChannel())
	})

	t.Run("Web has no push", func(t *testing.T) {
		a := platform.New(registration.PlatformWeb)
		assert.Equal(t, registration.PlatformWeb, a.Platform())
		assert.False(t, a.SupportsPush())
		assert.False(t, a.RequiresChannel())
	})

	t.Run("Unknown falls back to other", func(t *testing.T) {
		a := platform.New(registration.Platform("tizen"))
		assert.Equal(t, registration.PlatformOther, a.Platform())
		assert.False(t, a.SupportsPush())
	})
}
