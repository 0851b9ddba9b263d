package store

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmorgan81/dallebot/internal/image"
	"github.com/dmorgan81/dallebot/internal/log"
	"github.com/google/uuid"
	"github.com/samber/do"
)

// Saver persists a provider response under dir and reports where the first image went.
type Saver interface {
	Save(ctx context.Context, resp *image.Response, dir string) (string, error)
}

type FileSaver struct {
	fetcher
}

func NewFileSaver(i *do.Injector) (Saver, error) {
	return &FileSaver{fetcher{do.MustInvoke[*http.Client](i)}}, nil
}

func (s *FileSaver) Save(ctx context.Context, resp *image.Response, dir string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("file").With("dir", dir)

	images, err := s.fetchAll(ctx, resp)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	paths := make([]string, len(images))
	for i, data := range images {
		id := uuid.NewString()
		paths[i] = filepath.Join(dir, id+extension(data))
		log.Info("writing", "file", paths[i], "bytes", len(data))
		if err := os.WriteFile(paths[i], data, 0o644); err != nil {
			return "", err
		}
		if revised := resp.Data[i].RevisedPrompt; revised != "" {
			if err := os.WriteFile(filepath.Join(dir, id+".txt"), []byte(revised), 0o644); err != nil {
				return "", err
			}
		}
	}
	return paths[0], nil
}
