// Package generate asks the image provider for pictures and hands the result to a Saver,
// retrying the pair with randomized exponential backoff.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmorgan81/dallebot/internal/image"
	"github.com/dmorgan81/dallebot/internal/log"
	"github.com/dmorgan81/dallebot/internal/retry"
	"github.com/dmorgan81/dallebot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrEmptyPrompt  = errors.New("prompt is empty")
	ErrInvalidCount = errors.New("image count must be positive")
)

type Option func(*image.Params)

// WithSize overrides the default 1024x1024. An empty size keeps the default.
func WithSize(size string) Option {
	return func(p *image.Params) {
		if size != "" {
			p.Size = size
		}
	}
}

// WithQuality overrides the default "hd". An empty quality keeps the default.
func WithQuality(quality string) Option {
	return func(p *image.Params) {
		if quality != "" {
			p.Quality = quality
		}
	}
}

// WithCount sets how many images a single request asks for. Zero keeps the default of one.
func WithCount(n int) Option {
	return func(p *image.Params) {
		if n != 0 {
			p.N = n
		}
	}
}

type Client struct {
	generator image.Generator
	saver     store.Saver
	policy    retry.Policy
	retryOpts []retry.Option

	attempts metric.Int64Counter
	failures metric.Int64Counter
}

func NewClient(i *do.Injector) (*Client, error) {
	return New(do.MustInvoke[image.Generator](i), do.MustInvoke[store.Saver](i), retry.DefaultPolicy)
}

func New(generator image.Generator, saver store.Saver, policy retry.Policy, opts ...retry.Option) (*Client, error) {
	meter := otel.Meter("github.com/dmorgan81/dallebot/internal/generate")
	attempts, err := meter.Int64Counter("dallebot.generate.attempts",
		metric.WithDescription("Image generation attempts, retries included"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("dallebot.generate.failures",
		metric.WithDescription("Image generations that failed after every retry"))
	if err != nil {
		return nil, err
	}

	return &Client{
		generator: generator,
		saver:     saver,
		policy:    policy,
		retryOpts: opts,
		attempts:  attempts,
		failures:  failures,
	}, nil
}

// GenerateImage requests images for prompt and returns where the saver put the first one.
// Generation and saving are retried together; any error from either counts as a failed attempt.
func (c *Client) GenerateImage(ctx context.Context, prompt, dir string, opts ...Option) (string, error) {
	params := image.Params{
		Model:   image.Model,
		Prompt:  prompt,
		Size:    image.DefaultSize,
		Quality: image.DefaultQuality,
		N:       image.DefaultCount,
	}
	for _, opt := range opts {
		opt(&params)
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("generate").With(
		"dir", dir,
		"size", params.Size,
		"quality", params.Quality,
		"n", params.N,
	)

	if strings.TrimSpace(prompt) == "" {
		log.Error("failed to generate image", "error", ErrEmptyPrompt)
		return "", ErrEmptyPrompt
	}
	if params.N < 1 {
		err := fmt.Errorf("%w: %d", ErrInvalidCount, params.N)
		log.Error("failed to generate image", "error", err)
		return "", err
	}

	log.Info("generating image")

	var path string
	op := func(ctx context.Context, attempt int) error {
		c.attempts.Add(ctx, 1)
		resp, err := c.generator.Generate(ctx, params)
		if err != nil {
			return err
		}
		saved, err := c.saver.Save(ctx, resp, dir)
		if err != nil {
			return fmt.Errorf("saving images: %w", err)
		}
		path = saved
		return nil
	}
	notify := retry.WithNotify(func(attempt int, err error, wait time.Duration) {
		log.Warn("attempt failed, retrying", "attempt", attempt, "wait", wait.String(), "error", err)
	})

	if err := retry.Do(ctx, c.policy, op, append(c.retryOpts[:len(c.retryOpts):len(c.retryOpts)], notify)...); err != nil {
		if perr, ok := image.AsProviderError(err); ok {
			c.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "provider")))
			log.Error("image generation error",
				"status", perr.StatusCode,
				"type", perr.Payload.Type,
				"message", perr.Payload.Message,
				"code", lo.FromPtr(perr.Payload.Code),
				"error", err,
			)
		} else {
			c.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "general")))
			log.Error("failed to generate image", "error", err)
		}
		return "", err
	}

	log.Info("image saved", "path", path)
	return path, nil
}
