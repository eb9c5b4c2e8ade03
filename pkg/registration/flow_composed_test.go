package registration_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinywideclouds/go-push-registration/internal/channel"
	"github.com/tinywideclouds/go-push-registration/internal/issuer"
	"github.com/tinywideclouds/go-push-registration/internal/notice"
	"github.com/tinywideclouds/go-push-registration/internal/permission"
	"github.com/tinywideclouds/go-push-registration/internal/platform"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

type countingPrompter struct {
	answer bool
	calls  atomic.Int32
}

func (p *countingPrompter) Prompt(_ context.Context) (bool, error) {
	p.calls.Add(1)
	return p.answer, nil
}

func TestRegister_WithConcreteCollaborators(t *testing.T) {
	testCases := []struct {
		name         string
		platform     registration.Platform
		answer       bool
		want         []registration.Outcome
		wantPrompts  int32
		wantNotices  int
		wantChannel  bool
		wantRequests int32
	}{
		{
			name:         "android grant then fresh token",
			platform:     registration.PlatformAndroid,
			answer:       true,
			want:         []registration.Outcome{registration.TokenOutcome("token-1"), registration.TokenOutcome("token-2")},
			wantPrompts:  1,
			wantChannel:  true,
			wantRequests: 2,
		},
		{
			name:        "ios denial is not asked twice",
			platform:    registration.PlatformIOS,
			answer:      false,
			want:        []registration.Outcome{registration.DeniedOutcome(), registration.DeniedOutcome()},
			wantPrompts: 1,
			wantNotices: 2,
		},
		{
			name:     "web is unsupported",
			platform: registration.PlatformWeb,
			answer:   true,
			want:     []registration.Outcome{registration.UnsupportedOutcome()},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			var requests atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := requests.Add(1)
				w.Header().Set("Content-Type", "application/json")
				_, _ = fmt.Fprintf(w, `{"data":{"expoPushToken":"token-%d"}}`, n)
			}))
			t.Cleanup(srv.Close)

			prompter := &countingPrompter{answer: tc.answer}
			authority := permission.NewAuthority(permission.NewMemoryStore(registration.StatusUndetermined), prompter, logger)
			channels := channel.NewMemoryProvisioner()
			tokenIssuer := issuer.NewHTTPIssuer(issuer.Config{
				Endpoint:  srv.URL,
				ProjectID: "wellness-test",
			}, tc.platform, srv.Client(), logger)
			var noticeOut bytes.Buffer
			presenter := notice.NewWriterPresenter(&noticeOut)

			flow, err := registration.NewFlow(platform.New(tc.platform), authority, channels, tokenIssuer, presenter, logger)
			require.NoError(t, err)

			for i, want := range tc.want {
				got, err := flow.Register(ctx)
				require.NoError(t, err, "attempt %d", i+1)
				assert.Equal(t, want, got, "attempt %d", i+1)
			}

			assert.Equal(t, tc.wantPrompts, prompter.calls.Load())
			assert.Equal(t, tc.wantRequests, requests.Load())
			assert.Equal(t, tc.wantNotices, strings.Count(noticeOut.String(), registration.DeniedNotice.Title))

			cfg, err := channels.Channel(ctx, registration.DefaultChannelID)
			if tc.wantChannel {
				require.NoError(t, err)
				assert.Equal(t, registration.DefaultChannel(), cfg)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
