package image

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parallel-lives-server/internal/config"
	"parallel-lives-server/internal/models"
)

// stubGenerator answers per prompt via a user function and counts calls.
type stubGenerator struct {
	mu       sync.Mutex
	calls    int
	generate func(call int, prompt string) (string, error)
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()
	return g.generate(call, prompt)
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func schedulerConfig() config.ImageConfig {
	return config.ImageConfig{
		APIKey:      "test-key",
		Model:       "test-image-model",
		Size:        "1024x1024",
		Timeout:     time.Second,
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		Parallelism: 2,
		StyleSuffix: "soft palette",
	}
}

func makeSegments(n int) []models.GeneratedSegment {
	segments := make([]models.GeneratedSegment, 0, n)
	for i := 1; i <= n; i++ {
		segments = append(segments, models.GeneratedSegment{
			Title:   fmt.Sprintf("Chapter %d", i),
			Content: fmt.Sprintf("Life stage number %d.", i),
			Order:   i,
		})
	}
	return segments
}

func TestIllustrateSegments_PartialFailure(t *testing.T) {
	// Orders 2 and 4 fail on every attempt, the rest succeed first try.
	gen := &stubGenerator{generate: func(_ int, prompt string) (string, error) {
		if strings.Contains(prompt, `"Chapter 2"`) || strings.Contains(prompt, `"Chapter 4"`) {
			return "", newGenerationError(CodeServerError, true, "endpoint down")
		}
		return "https://cdn.example.com/img.png", nil
	}}

	scheduler := NewScheduler(gen, schedulerConfig(), zap.NewNop())
	urls, failed := scheduler.IllustrateSegments(t.Context(), makeSegments(5))

	assert.Equal(t, []int{2, 4}, failed)
	require.Len(t, urls, 3)
	for _, order := range []int{1, 3, 5} {
		assert.Contains(t, urls, order)
	}
}

func TestIllustrateSegments_RetriesBeforeGivingUp(t *testing.T) {
	gen := &stubGenerator{generate: func(call int, _ string) (string, error) {
		if call < 3 {
			return "", newGenerationError(CodeRateLimit, true, "slow down")
		}
		return "https://cdn.example.com/ok.png", nil
	}}

	cfg := schedulerConfig()
	cfg.Parallelism = 1
	scheduler := NewScheduler(gen, cfg, zap.NewNop())
	urls, failed := scheduler.IllustrateSegments(t.Context(), makeSegments(1))

	assert.Empty(t, failed)
	assert.Equal(t, "https://cdn.example.com/ok.png", urls[1])
	assert.Equal(t, 3, gen.callCount())
}

func TestIllustrateSegments_NonRetryableFailsWithoutRetry(t *testing.T) {
	gen := &stubGenerator{generate: func(_ int, _ string) (string, error) {
		return "", newGenerationError(CodeBadRequest, false, "prompt rejected")
	}}

	cfg := schedulerConfig()
	cfg.Parallelism = 1
	scheduler := NewScheduler(gen, cfg, zap.NewNop())
	urls, failed := scheduler.IllustrateSegments(t.Context(), makeSegments(1))

	assert.Empty(t, urls)
	assert.Equal(t, []int{1}, failed)
	assert.Equal(t, 1, gen.callCount())
}

func TestIllustrateSegments_RejectedKeyStopsScheduling(t *testing.T) {
	gen := &stubGenerator{generate: func(_ int, _ string) (string, error) {
		return "", newGenerationError(CodeInvalidAPIKey, false, "key rejected")
	}}

	cfg := schedulerConfig()
	cfg.Parallelism = 1
	scheduler := NewScheduler(gen, cfg, zap.NewNop())
	urls, failed := scheduler.IllustrateSegments(t.Context(), makeSegments(5))

	assert.Empty(t, urls)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, failed)
	// Only the first segment reaches the generator; the rest are abandoned.
	assert.Equal(t, 1, gen.callCount())
}

func TestIllustrateSegments_ZeroAttemptBudgetStillTriesOnce(t *testing.T) {
	gen := &stubGenerator{generate: func(_ int, _ string) (string, error) {
		return "", newGenerationError(CodeServerError, true, "endpoint down")
	}}

	cfg := schedulerConfig()
	cfg.MaxAttempts = 0
	cfg.Parallelism = 1
	scheduler := NewScheduler(gen, cfg, zap.NewNop())
	urls, failed := scheduler.IllustrateSegments(t.Context(), makeSegments(1))

	// Without the clamp a skipped loop would record an empty URL as success.
	assert.Empty(t, urls)
	assert.Equal(t, []int{1}, failed)
	assert.Equal(t, 1, gen.callCount())
}

func TestGenerateCover_FailureReturnsNil(t *testing.T) {
	gen := &stubGenerator{generate: func(_ int, _ string) (string, error) {
		return "", newGenerationError(CodeServerError, true, "endpoint down")
	}}

	scheduler := NewScheduler(gen, schedulerConfig(), zap.NewNop())
	url := scheduler.GenerateCover(t.Context(), "The Tide Keeper", "A life by the harbor.", models.ToneWarm)

	assert.Nil(t, url)
	// A cover gets exactly one try.
	assert.Equal(t, 1, gen.callCount())
}

func TestGenerateCover_Success(t *testing.T) {
	gen := &stubGenerator{generate: func(_ int, prompt string) (string, error) {
		assert.Contains(t, prompt, "The Tide Keeper")
		return "https://cdn.example.com/cover.png", nil
	}}

	scheduler := NewScheduler(gen, schedulerConfig(), zap.NewNop())
	url := scheduler.GenerateCover(t.Context(), "The Tide Keeper", "A life by the harbor.", models.ToneWarm)

	require.NotNil(t, url)
	assert.Equal(t, "https://cdn.example.com/cover.png", *url)
}
