package image

import "context"

// Model is the only model this tool requests.
const Model = "dall-e-3"

const (
	DefaultSize    = "1024x1024"
	DefaultQuality = "hd"
	DefaultCount   = 1
)

// Params is a single generation request. Size and Quality are passed through as-is;
// the provider decides what it accepts.
type Params struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	N       int    `json:"n,omitempty"`
}

type Data struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// Response is the provider's answer. Raw keeps the body exactly as received.
type Response struct {
	Created int64  `json:"created"`
	Data    []Data `json:"data"`
	Raw     []byte `json:"-"`
}

type Generator interface {
	Generate(context.Context, Params) (*Response, error)
}
