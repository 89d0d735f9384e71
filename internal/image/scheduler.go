package image

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"parallel-lives-server/internal/config"
	"parallel-lives-server/internal/models"
)

// Scheduler drives illustration generation for a whole story. It retries
// transient per-segment failures, tolerates partial failure and reports the
// segment orders that never got an image.
type Scheduler struct {
	generator Generator
	cfg       config.ImageConfig
	logger    *zap.Logger
}

// NewScheduler creates an illustration scheduler on top of a generator.
func NewScheduler(generator Generator, cfg config.ImageConfig, logger *zap.Logger) *Scheduler {
	// A zero or negative attempt budget would skip the retry loop and record
	// an empty URL as success.
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Scheduler{
		generator: generator,
		cfg:       cfg,
		logger:    logger.Named("IllustrationScheduler"),
	}
}

// GenerateCover attempts a single cover illustration. A failed cover never
// fails the story; the error is logged and nil is returned.
func (s *Scheduler) GenerateCover(ctx context.Context, title, summary string, tone models.Tone) *string {
	url, err := s.generator.Generate(ctx, BuildCoverPrompt(title, summary, tone))
	if err != nil {
		s.logger.Warn("Cover illustration failed, continuing without cover",
			zap.String("title", title),
			zap.Error(err),
		)
		return nil
	}
	return &url
}

// IllustrateSegments generates one illustration per segment, honoring the
// configured parallelism. It returns the image URLs keyed by segment order
// plus the sorted orders of the segments that exhausted their attempts. A
// fatal key error stops scheduling further segments.
func (s *Scheduler) IllustrateSegments(ctx context.Context, segments []models.GeneratedSegment) (map[int]string, []int) {
	urls := make(map[int]string, len(segments))
	var failed []int
	var mu sync.Mutex

	var aborted bool
	abortedNow := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return aborted
	}

	group, groupCtx := errgroup.WithContext(ctx)
	parallelism := s.cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	group.SetLimit(parallelism)

	for _, segment := range segments {
		group.Go(func() error {
			if abortedNow() {
				mu.Lock()
				failed = append(failed, segment.Order)
				mu.Unlock()
				return nil
			}

			url, err := s.illustrateSegment(groupCtx, segment)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, segment.Order)
				var genErr *GenerationError
				if errors.As(err, &genErr) && isFatalKeyError(genErr) {
					aborted = true
				}
				return nil
			}
			urls[segment.Order] = url
			return nil
		})
	}
	_ = group.Wait()

	sort.Ints(failed)
	if len(failed) > 0 {
		s.logger.Warn("Some segment illustrations failed",
			zap.Ints("failedOrders", failed),
			zap.Int("total", len(segments)),
		)
	}
	return urls, failed
}

// illustrateSegment runs the per-segment retry loop.
func (s *Scheduler) illustrateSegment(ctx context.Context, segment models.GeneratedSegment) (string, error) {
	prompt := BuildSegmentPrompt(segment, s.cfg.StyleSuffix)

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		url, err := s.generator.Generate(ctx, prompt)
		if err == nil {
			return url, nil
		}
		lastErr = err

		s.logger.Warn("Segment illustration attempt failed",
			zap.Int("segmentOrder", segment.Order),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		var genErr *GenerationError
		if errors.As(err, &genErr) && !genErr.Retryable {
			return "", err
		}
		if attempt == s.cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(s.cfg.RetryDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", lastErr
}

func isFatalKeyError(err *GenerationError) bool {
	return err.Code == CodeAPIKeyMissing || err.Code == CodeInvalidAPIKey
}
