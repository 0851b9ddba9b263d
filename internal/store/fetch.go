package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmorgan81/dallebot/internal/image"
	"golang.org/x/sync/errgroup"
)

var ErrNoImages = errors.New("response contains no images")

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func extension(data []byte) string {
	if ext, ok := extensions[http.DetectContentType(data)]; ok {
		return ext
	}
	return ".png"
}

type fetcher struct {
	client *http.Client
}

// fetchAll resolves every image of resp to bytes, keeping the response order.
func (f fetcher) fetchAll(ctx context.Context, resp *image.Response) ([][]byte, error) {
	if resp == nil || len(resp.Data) == 0 {
		return nil, ErrNoImages
	}

	out := make([][]byte, len(resp.Data))
	group, ctx := errgroup.WithContext(ctx)
	for i, d := range resp.Data {
		i, d := i, d
		group.Go(func() error {
			data, err := f.fetch(ctx, d)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (f fetcher) fetch(ctx context.Context, d image.Data) ([]byte, error) {
	if d.B64JSON != "" {
		return base64.StdEncoding.DecodeString(d.B64JSON)
	}
	if d.URL == "" {
		return nil, errors.New("neither url nor b64_json set")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, err
	}
	client := f.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("downloading %s: HTTP %d", d.URL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
