package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/dallebot/internal/log"
	"github.com/samber/do"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type OpenAIGenerator struct {
	Client  *http.Client
	Key     string
	BaseURL string
}

func NewOpenAIGenerator(i *do.Injector) (Generator, error) {
	return &OpenAIGenerator{
		Client:  do.MustInvoke[*http.Client](i),
		Key:     do.MustInvokeNamed[string](i, "openai_key"),
		BaseURL: do.MustInvokeNamed[string](i, "openai_base_url"),
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, params Params) (*Response, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("openai").With(
		"model", params.Model,
		"size", params.Size,
		"quality", params.Quality,
		"n", params.N,
	)
	log.Info("generating image via images api")

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(g.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.Key)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &ProviderError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error APIError `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			perr.Payload = envelope.Error
		}
		return nil, perr
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding images response: %w", err)
	}
	out.Raw = raw
	log.Info("received images", "count", len(out.Data), "created", out.Created)
	return &out, nil
}
