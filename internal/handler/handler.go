package handler

import (
	"context"

	"github.com/dmorgan81/dallebot/internal/config"
	"github.com/dmorgan81/dallebot/internal/generate"
	"github.com/dmorgan81/dallebot/internal/log"
	"github.com/dmorgan81/dallebot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Input struct {
	Prompt  string `json:"prompt"`
	Dir     string `json:"dir,omitempty"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Count   int    `json:"count,omitempty"`
}

type Output struct {
	Path string `json:"path"`
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, dir string, opts ...generate.Option) (string, error)
}

type Handler struct {
	generator   ImageGenerator
	invalidator store.Invalidator
	defaults    Input
}

func NewHandler(i *do.Injector) (*Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &Handler{
		generator:   do.MustInvoke[*generate.Client](i),
		invalidator: do.MustInvoke[store.Invalidator](i),
		defaults: Input{
			Dir:     cfg.Dir,
			Size:    cfg.Size,
			Quality: cfg.Quality,
			Count:   cfg.Count,
		},
	}, nil
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	input.Dir = lo.Ternary(input.Dir != "", input.Dir, h.defaults.Dir)
	input.Size = lo.Ternary(input.Size != "", input.Size, h.defaults.Size)
	input.Quality = lo.Ternary(input.Quality != "", input.Quality, h.defaults.Quality)
	input.Count = lo.Ternary(input.Count != 0, input.Count, h.defaults.Count)

	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("input", input)
	log.Info("handling invocation")

	path, err := h.generator.GenerateImage(ctx, input.Prompt, input.Dir,
		generate.WithSize(input.Size),
		generate.WithQuality(input.Quality),
		generate.WithCount(input.Count),
	)
	if err != nil {
		return Output{}, err
	}

	if key, ok := store.ObjectPath(path); ok {
		if err := h.invalidator.Invalidate(ctx, []string{key}); err != nil {
			log.Warn("cdn invalidation failed", "path", key, "error", err)
		}
	}

	return Output{Path: path}, nil
}
