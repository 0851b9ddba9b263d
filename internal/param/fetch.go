package param

import "context"

// Fetcher resolves secrets kept outside the environment.
type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}
