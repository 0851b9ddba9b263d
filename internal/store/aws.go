package store

import (
	"bytes"
	"context"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/dallebot/internal/image"
	"github.com/dmorgan81/dallebot/internal/log"
	"github.com/google/uuid"
	"github.com/samber/do"
)

type ObjectPutter interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Saver struct {
	fetcher
	Client ObjectPutter
	Bucket string
}

func NewS3Saver(i *do.Injector) (Saver, error) {
	return &S3Saver{
		fetcher: fetcher{do.MustInvoke[*http.Client](i)},
		Client:  do.MustInvoke[*s3.Client](i),
		Bucket:  do.MustInvokeNamed[string](i, "bucket"),
	}, nil
}

// Save uploads every image under the dir prefix and returns the s3:// location of the first.
func (s *S3Saver) Save(ctx context.Context, resp *image.Response, dir string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With("bucket", s.Bucket, "prefix", dir)

	images, err := s.fetchAll(ctx, resp)
	if err != nil {
		return "", err
	}

	locations := make([]string, len(images))
	for i, data := range images {
		key := path.Join(strings.Trim(dir, "/"), uuid.NewString()+extension(data))
		metadata := map[string]string{"created": strconv.FormatInt(resp.Created, 10)}
		if revised := resp.Data[i].RevisedPrompt; revised != "" {
			metadata["revised-prompt"] = revised
		}
		log.Info("uploading to s3", "key", key, "bytes", len(data))

		_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(s.Bucket),
			Key:          aws.String(key),
			ContentType:  aws.String(http.DetectContentType(data)),
			Body:         bytes.NewReader(data),
			Metadata:     metadata,
			StorageClass: s3types.StorageClassIntelligentTiering,
		})
		if err != nil {
			return "", err
		}
		locations[i] = "s3://" + s.Bucket + "/" + key
	}
	return locations[0], nil
}

type InvalidationCreator interface {
	CreateInvalidation(context.Context, *cloudfront.CreateInvalidationInput, ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

type CloudFrontInvalidator struct {
	Client       InvalidationCreator
	Distribution string
}

func NewCloudFrontInvalidator(i *do.Injector) (Invalidator, error) {
	distribution := do.MustInvokeNamed[string](i, "distribution")
	if distribution == "" {
		return NopInvalidator{}, nil
	}
	return &CloudFrontInvalidator{
		Client:       do.MustInvoke[*cloudfront.Client](i),
		Distribution: distribution,
	}, nil
}

func (i *CloudFrontInvalidator) Invalidate(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	log := log.FromContextOrDiscard(ctx).WithGroup("cloudfront").With("paths", paths, "distribution", i.Distribution)
	log.Info("invalidating paths in cloudfront")

	_, err := i.Client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(i.Distribution),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(time.Now().UTC().Format("20060102150405.000000000")),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	return err
}
