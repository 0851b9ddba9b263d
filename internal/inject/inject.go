package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/dallebot/internal/config"
	"github.com/dmorgan81/dallebot/internal/generate"
	"github.com/dmorgan81/dallebot/internal/handler"
	"github.com/dmorgan81/dallebot/internal/image"
	"github.com/dmorgan81/dallebot/internal/log"
	"github.com/dmorgan81/dallebot/internal/param"
	"github.com/dmorgan81/dallebot/internal/store"
	"github.com/samber/do"
)

// Setup registers every service lazily; AWS clients are only built when S3, CloudFront or
// SSM are actually configured.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*config.Config](injector, cfg)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.HTTPTimeout})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[image.Generator](injector, image.NewOpenAIGenerator)
	do.Provide[store.Saver](injector, func(i *do.Injector) (store.Saver, error) {
		if cfg.Bucket != "" {
			return store.NewS3Saver(i)
		}
		return store.NewFileSaver(i)
	})
	do.Provide[store.Invalidator](injector, store.NewCloudFrontInvalidator)

	do.ProvideNamed[string](injector, "openai_key", func(i *do.Injector) (string, error) {
		if cfg.OpenAIKey != "" {
			return cfg.OpenAIKey, nil
		}
		return do.MustInvoke[param.Fetcher](i).Fetch(ctx, cfg.OpenAIKeyParam)
	})
	do.ProvideNamedValue[string](injector, "openai_base_url", cfg.OpenAIBaseURL)
	do.ProvideNamedValue[string](injector, "bucket", cfg.Bucket)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Distribution)

	do.Provide[*generate.Client](injector, generate.NewClient)
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
