package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/dallebot/internal/config"
	"github.com/dmorgan81/dallebot/internal/handler"
	"github.com/dmorgan81/dallebot/internal/image"
	"github.com/dmorgan81/dallebot/internal/inject"
	"github.com/dmorgan81/dallebot/internal/log"
	"github.com/samber/do"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	ctx := log.NewContext(context.Background(), log.New(os.Stderr, log.ParseLevel(cfg.LogLevel)))
	injector := inject.Setup(ctx, cfg)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		handler := do.MustInvoke[*handler.Handler](injector)
		lambda.StartWithOptions(handler.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return
	}

	input, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	out, err := run(ctx, injector, input)
	stop()
	_ = injector.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, exitMessage(err))
		os.Exit(1)
	}
	fmt.Println(out.Path)
}

func run(ctx context.Context, injector *do.Injector, input handler.Input) (handler.Output, error) {
	h, err := do.Invoke[*handler.Handler](injector)
	if err != nil {
		return handler.Output{}, err
	}
	return h.Handle(ctx, input)
}

func parseArgs(args []string, stderr io.Writer) (handler.Input, error) {
	var input handler.Input
	flags := flag.NewFlagSet("dallebot", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: dallebot [flags] prompt...")
		flags.PrintDefaults()
	}
	flags.StringVar(&input.Dir, "dir", "", "output directory, or key prefix when BUCKET is set (default $IMAGE_DIR)")
	flags.StringVar(&input.Size, "size", "", "image size, e.g. 1024x1024 (default $IMAGE_SIZE)")
	flags.StringVar(&input.Quality, "quality", "", "standard or hd (default $IMAGE_QUALITY)")
	flags.IntVar(&input.Count, "n", 0, "number of images in the request (default $IMAGE_COUNT)")
	if err := flags.Parse(args); err != nil {
		return input, err
	}

	input.Prompt = strings.Join(flags.Args(), " ")
	if strings.TrimSpace(input.Prompt) == "" {
		flags.Usage()
		return input, errors.New("prompt is required")
	}
	return input, nil
}

func exitMessage(err error) string {
	if _, ok := image.AsProviderError(err); ok {
		return fmt.Sprintf("Exiting due to image generation error: %v", err)
	}
	return fmt.Sprintf("Exiting due to a general error in image generation: %v", err)
}
