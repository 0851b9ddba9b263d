package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/dmorgan81/dallebot/internal/handler"
	"github.com/dmorgan81/dallebot/internal/image"
	"github.com/dmorgan81/dallebot/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer

	input, err := parseArgs([]string{"-dir", "/out", "-size", "1792x1024", "-quality", "standard", "-n", "3", "a", "red", "barn"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, handler.Input{Prompt: "a red barn", Dir: "/out", Size: "1792x1024", Quality: "standard", Count: 3}, input)

	input, err = parseArgs([]string{"just a prompt"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, handler.Input{Prompt: "just a prompt"}, input)

	_, err = parseArgs([]string{"-dir", "/out"}, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "usage: dallebot")

	_, err = parseArgs([]string{"-n", "many", "x"}, &stderr)
	assert.Error(t, err)
}

func TestExitMessage(t *testing.T) {
	perr := &retry.ExhaustedError{Attempts: 6, Err: &image.ProviderError{StatusCode: 400, Payload: image.APIError{Message: "bad size"}}}
	assert.Equal(t,
		"Exiting due to image generation error: giving up after 6 attempts: provider returned HTTP 400: bad size",
		exitMessage(perr))

	general := fmt.Errorf("saving images: %w", errors.New("disk full"))
	assert.Equal(t,
		"Exiting due to a general error in image generation: saving images: disk full",
		exitMessage(general))
}
