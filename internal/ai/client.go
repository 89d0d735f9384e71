package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"parallel-lives-server/internal/config"
	"parallel-lives-server/internal/models"
)

// Client calls an OpenAI-compatible chat completion endpoint to generate
// parallel-life stories. It owns the retry/backoff policy, response
// sanitization and the local fallback story.
type Client struct {
	client  *openai.Client
	cfg     config.AIConfig
	logger  *zap.Logger
	encoder *tiktoken.Tiktoken
}

// NewClient creates a text generation client from configuration.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	openaiConfig.BaseURL = cfg.BaseURL
	openaiConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
	}

	// A zero or negative attempt budget would skip the retry loop entirely.
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	// Token accounting is best effort; unknown models fall back to the
	// cl100k_base encoding.
	encoder, err := tiktoken.EncodingForModel(cfg.Model)
	if err != nil {
		encoder, _ = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	}

	return &Client{
		client:  openai.NewClientWithConfig(openaiConfig),
		cfg:     cfg,
		logger:  logger.Named("AIClient"),
		encoder: encoder,
	}
}

// attemptOutcome is the tagged result of a single generation attempt. Exactly
// one of story/failure is set; parseIssue marks failures eligible for the
// fallback story on the final attempt.
type attemptOutcome struct {
	story      *models.GeneratedStory
	failure    *ServiceError
	parseIssue bool
}

// Generate produces a validated story for the request, retrying transient
// failures up to the configured attempt budget with a growing delay between
// attempts. Fatal failures (missing or rejected API key) abort immediately.
// When every attempt fails because the model output could not be parsed into
// a structurally valid story, a deterministic local fallback story is
// returned instead of an error.
func (c *Client) Generate(ctx context.Context, req models.StoryRequest) (*models.GeneratedStory, error) {
	if c.cfg.APIKey == "" {
		return nil, newServiceError(CodeAPIKeyMissing, false, "text generation API key is not configured")
	}

	prompt := buildStoryPrompt(req)
	c.observePromptTokens(prompt)

	var lastFailure *ServiceError
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		c.logger.Info("Generating story",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", c.cfg.MaxAttempts),
		)

		outcome := c.attempt(ctx, prompt)
		if outcome.story != nil {
			return outcome.story, nil
		}

		lastFailure = outcome.failure
		c.logger.Warn("Story generation attempt failed",
			zap.Int("attempt", attempt),
			zap.String("code", outcome.failure.Code),
			zap.Bool("retryable", outcome.failure.Retryable),
			zap.String("message", outcome.failure.Message),
		)

		if !outcome.failure.Retryable {
			return nil, outcome.failure
		}

		if attempt == c.cfg.MaxAttempts {
			if outcome.parseIssue {
				// The endpoint answered but never with parseable story JSON.
				// Degrade to the deterministic local story instead of failing.
				aiFallbackStoriesTotal.Inc()
				c.logger.Warn("All attempts produced unparseable output, returning fallback story")
				return FallbackStory(req), nil
			}
			break
		}

		if err := sleepContext(ctx, c.cfg.RetryDelay*time.Duration(attempt)); err != nil {
			return nil, newServiceError(CodeHTTPError, false, "generation cancelled: %v", err)
		}
	}

	return nil, newServiceError(CodeMaxRetriesExceeded, false,
		"failed to generate story after %d attempts: %s", c.cfg.MaxAttempts, lastFailure.Message)
}

// attempt performs one chat completion call and classifies the result.
func (c *Client) attempt(ctx context.Context, prompt string) attemptOutcome {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	})
	duration := time.Since(start)

	if err != nil {
		failure := classifyCompletionError(err)
		aiRequestsTotal.With(prometheus.Labels{"model": c.cfg.Model, "status": "error"}).Inc()
		return attemptOutcome{failure: failure}
	}

	aiRequestDuration.With(prometheus.Labels{"model": c.cfg.Model}).Observe(duration.Seconds())
	if resp.Usage.CompletionTokens > 0 {
		aiCompletionTokens.With(prometheus.Labels{"model": c.cfg.Model}).Observe(float64(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.cfg.Model, "status": "empty_response"}).Inc()
		return attemptOutcome{
			failure:    newServiceError(CodeInvalidResponse, true, "endpoint returned no message content"),
			parseIssue: true,
		}
	}

	story, parseErr := ParseGeneratedStory(resp.Choices[0].Message.Content)
	if parseErr != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": c.cfg.Model, "status": "parse_error"}).Inc()
		return attemptOutcome{
			failure:    newServiceError(CodeParseError, true, "failed to parse model output: %v", parseErr),
			parseIssue: true,
		}
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.cfg.Model, "status": "success"}).Inc()
	c.logger.Info("Story generated",
		zap.Duration("duration", duration),
		zap.Int("segments", len(story.Segments)),
	)
	return attemptOutcome{story: story}
}

// classifyCompletionError maps go-openai errors onto the service error
// taxonomy. 401 is fatal; rate limits, server errors and transport problems
// are retryable.
func classifyCompletionError(err error) *ServiceError {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
	} else if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized:
		return newServiceError(CodeInvalidAPIKey, false, "text generation API key was rejected")
	case status == http.StatusTooManyRequests:
		return newServiceError(CodeRateLimit, true, "text generation endpoint rate limited the request")
	case status >= 500:
		return newServiceError(CodeServerError, true, "text generation endpoint returned status %d", status)
	case status > 0:
		return newServiceError(CodeHTTPError, true, "text generation request failed with status %d", status)
	default:
		// Transport-level failure (timeout, connection reset, ...).
		return newServiceError(CodeHTTPError, true, "text generation request failed: %v", err)
	}
}

// observePromptTokens records the prompt size in tokens.
func (c *Client) observePromptTokens(prompt string) {
	if c.encoder == nil {
		return
	}
	count := len(c.encoder.Encode(prompt, nil, nil))
	aiPromptTokens.With(prometheus.Labels{"model": c.cfg.Model}).Observe(float64(count))
	c.logger.Debug("Prompt built", zap.Int("promptTokens", count))
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
