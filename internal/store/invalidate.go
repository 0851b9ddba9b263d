package store

import (
	"context"
	"strings"
)

type Invalidator interface {
	Invalidate(context.Context, []string) error
}

type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, []string) error { return nil }

// ObjectPath turns an s3:// location into the CDN path of the object.
func ObjectPath(location string) (string, bool) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", false
	}
	_, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return "", false
	}
	return "/" + key, true
}
