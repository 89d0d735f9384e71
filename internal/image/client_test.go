package image

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parallel-lives-server/internal/config"
)

func clientConfig(url string) config.ImageConfig {
	return config.ImageConfig{
		APIKey:        "test-key",
		URL:           url,
		Model:         "test-image-model",
		Size:          "1024x1024",
		GuidanceScale: 2.5,
		Watermark:     true,
		Timeout:       5 * time.Second,
		MaxAttempts:   3,
		RetryDelay:    time.Millisecond,
		Parallelism:   2,
		StyleSuffix:   "soft palette",
	}
}

func TestClientGenerate_ReturnsImageURL(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"url":"https://cdn.example.com/img.png"}]}`))
	}))
	defer srv.Close()

	client := NewClient(clientConfig(srv.URL), zap.NewNop())
	url, err := client.Generate(t.Context(), "a quiet harbor at dusk")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/img.png", url)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "a quiet harbor at dusk", gotPayload["prompt"])
	assert.Equal(t, "url", gotPayload["response_format"])
	assert.Equal(t, "disabled", gotPayload["sequential_image_generation"])
}

func TestClientGenerate_ClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		name          string
		status        int
		wantCode      string
		wantRetryable bool
	}{
		{"unauthorized is fatal", http.StatusUnauthorized, CodeInvalidAPIKey, false},
		{"bad request is fatal", http.StatusBadRequest, CodeBadRequest, false},
		{"rate limited is retryable", http.StatusTooManyRequests, CodeRateLimit, true},
		{"server error is retryable", http.StatusInternalServerError, CodeServerError, true},
		{"other status is retryable", http.StatusNotFound, CodeHTTPError, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			}))
			defer srv.Close()

			client := NewClient(clientConfig(srv.URL), zap.NewNop())
			_, err := client.Generate(t.Context(), "prompt")

			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tc.wantCode, genErr.Code)
			assert.Equal(t, tc.wantRetryable, genErr.Retryable)
		})
	}
}

func TestClientGenerate_EmptyDataIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(clientConfig(srv.URL), zap.NewNop())
	_, err := client.Generate(t.Context(), "prompt")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, CodeInvalidResponse, genErr.Code)
	assert.True(t, genErr.Retryable)
}

func TestClientGenerate_MissingKeyNeverCallsEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("endpoint should not be called without an API key")
	}))
	defer srv.Close()

	cfg := clientConfig(srv.URL)
	cfg.APIKey = ""
	client := NewClient(cfg, zap.NewNop())
	_, err := client.Generate(t.Context(), "prompt")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, CodeAPIKeyMissing, genErr.Code)
	assert.False(t, genErr.Retryable)
}
