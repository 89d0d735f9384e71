package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"parallel-lives-server/internal/config"
)

// Generator produces one illustration URL per prompt. A single call maps to a
// single endpoint request; retry policy lives in the Scheduler.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls an ark-style images/generations endpoint.
type Client struct {
	httpClient *http.Client
	cfg        config.ImageConfig
	logger     *zap.Logger
}

var _ Generator = (*Client)(nil)

// NewClient creates an image generation client from configuration.
func NewClient(cfg config.ImageConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger.Named("ImageClient"),
	}
}

// generationRequest is the wire payload of the images/generations endpoint.
type generationRequest struct {
	Model                     string  `json:"model"`
	Prompt                    string  `json:"prompt"`
	ResponseFormat            string  `json:"response_format"`
	Size                      string  `json:"size"`
	Seed                      int64   `json:"seed"`
	GuidanceScale             float64 `json:"guidance_scale"`
	Watermark                 bool    `json:"watermark"`
	SequentialImageGeneration string  `json:"sequential_image_generation"`
	Stream                    bool    `json:"stream"`
}

type generationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests one image for the prompt and returns its URL.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", newGenerationError(CodeAPIKeyMissing, false, "image generation API key is not configured")
	}

	payload := generationRequest{
		Model:                     c.cfg.Model,
		Prompt:                    prompt,
		ResponseFormat:            "url",
		Size:                      c.cfg.Size,
		Seed:                      -1,
		GuidanceScale:             c.cfg.GuidanceScale,
		Watermark:                 c.cfg.Watermark,
		SequentialImageGeneration: "disabled",
		Stream:                    false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", newGenerationError(CodeHTTPError, false, "failed to marshal request payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", newGenerationError(CodeHTTPError, false, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutError(err) {
			return "", newGenerationError(CodeTimeout, true, "image generation request timed out after %s", c.cfg.Timeout)
		}
		return "", newGenerationError(CodeHTTPError, true, "image generation request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, respBody)
	}
	if readErr != nil {
		return "", newGenerationError(CodeHTTPError, true, "failed to read response body: %v", readErr)
	}

	var parsed generationResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", newGenerationError(CodeHTTPError, true, "failed to decode response: %v", err)
	}
	if parsed.Error != nil {
		return "", newGenerationError(CodeHTTPError, true, "endpoint error %s: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", newGenerationError(CodeInvalidResponse, true, "endpoint returned no image URL")
	}

	c.logger.Info("Image generated",
		zap.Duration("duration", time.Since(start)),
		zap.Int("promptLength", len(prompt)),
	)
	return parsed.Data[0].URL, nil
}

// classifyStatus maps non-200 responses onto the error taxonomy. 401 and 400
// are fatal, rate limits and server errors are retryable.
func classifyStatus(status int, body []byte) *GenerationError {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}

	switch {
	case status == http.StatusUnauthorized:
		return newGenerationError(CodeInvalidAPIKey, false, "image generation API key was rejected")
	case status == http.StatusBadRequest:
		return newGenerationError(CodeBadRequest, false, "endpoint rejected the request: %s", detail)
	case status == http.StatusTooManyRequests:
		return newGenerationError(CodeRateLimit, true, "image generation endpoint rate limited the request")
	case status >= 500:
		return newGenerationError(CodeServerError, true, "image generation endpoint returned status %d", status)
	default:
		return newGenerationError(CodeHTTPError, true, "image generation request failed with status %d: %s", status, detail)
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var urlErr interface{ Timeout() bool }
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
