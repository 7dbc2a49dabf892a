package repository

import (
	"context"
	"net/url"
	"strings"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type awsRepository struct {
	client        *s3.Client
	publicBaseURL string
}

// NewAwsRepository builds object URLs as <publicBaseURL>/<bucket>/<key>.
func NewAwsRepository(awsClient *s3.Client, publicBaseURL string) videofiles.AWSRepository {
	return &awsRepository{
		client:        awsClient,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (a *awsRepository) PutObject(ctx context.Context, input *models.UploadInput) (string, error) {
	putInput := &s3.PutObjectInput{
		Bucket: aws.String(input.BucketName),
		Key:    aws.String(input.Key),
		Body:   input.File,
	}
	if input.MimeType != "" {
		putInput.ContentType = aws.String(input.MimeType)
	}
	if input.Size > 0 {
		putInput.ContentLength = aws.Int64(input.Size)
	}
	if input.CacheControl != "" {
		putInput.CacheControl = aws.String(input.CacheControl)
	}
	if _, err := a.client.PutObject(ctx, putInput); err != nil {
		return "", errors.Wrapf(err, "awsRepository.PutObject %s", input.Key)
	}
	return a.PublicURL(input.BucketName, input.Key), nil
}

func (a *awsRepository) RemoveObject(ctx context.Context, bucket, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "awsRepository.RemoveObject %s", key)
	}
	return nil
}

func (a *awsRepository) PublicURL(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return a.publicBaseURL + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
