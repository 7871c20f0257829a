package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

func newTestDataAPI(t *testing.T, h http.HandlerFunc) *DataAPI {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.YouTubeAPIKey = "test-key"
	s, err := NewDataAPI(context.Background(), cfg,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestDataAPIFetch(t *testing.T) {
	s := newTestDataAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/youtube/v3/captions":
			assert.Equal(t, testVideoID, r.URL.Query().Get("videoId"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[
				{"id":"cap-auto","snippet":{"language":"pt","trackKind":"asr"}},
				{"id":"cap-manual","snippet":{"language":"pt","name":"Português","trackKind":"standard"}}]}`)
		case "/youtube/v3/captions/cap-manual":
			assert.Equal(t, "vtt", r.URL.Query().Get("tfmt"))
			fmt.Fprint(w, "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nolá\n")
		default:
			http.NotFound(w, r)
		}
	})

	got, err := s.Fetch(context.Background(), testVideoID, engine.LanguagePreference{Requested: "pt"})
	require.NoError(t, err)
	assert.Equal(t, "dataapi", got.Source)
	assert.Equal(t, []engine.Segment{{Text: "olá", Start: 0, Duration: 2}}, got.Segments)
}

func TestDataAPIQuota(t *testing.T) {
	s := newTestDataAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded"}]}}`)
	})
	_, err := s.ListTracks(context.Background(), testVideoID)
	assert.ErrorIs(t, err, engine.ErrRateLimited)
}

func TestDataAPIClassify(t *testing.T) {
	s := &DataAPI{}
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"429", &googleapi.Error{Code: 429}, engine.ErrRateLimited},
		{"404", &googleapi.Error{Code: 404}, engine.ErrNoCaptions},
		{"403 forbidden", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "forbidden"}}}, engine.ErrSourceUnavailable},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), engine.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.classify(tt.err), tt.want)
		})
	}
}

func TestNewDataAPINoCredentials(t *testing.T) {
	_, err := NewDataAPI(context.Background(), testConfig())
	assert.Error(t, err)
}
