package file_store

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	Logger "github.com/rinblog/rin/utils/log"
)

const (
	// Cloudflare R2 and most S3 compatible services accept "auto".
	DefaultS3Region = "auto"
)

type S3FileStore struct {
	config   S3Config
	uploader *s3manager.Uploader
}

func NewS3FileStore(config S3Config) (*S3FileStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	region := config.Region
	if region == "" {
		region = DefaultS3Region
	}

	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(region),
		Credentials:      credentials.NewStaticCredentials(config.AccessKeyId, config.SecretAccessKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to create s3 session")
	}

	return &S3FileStore{
		config:   config,
		uploader: s3manager.NewUploader(sess),
	}, nil
}

// Store uploads body with a single PUT. Uploading the same key twice simply
// overwrites the object with identical bytes.
func (s *S3FileStore) Store(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	output, err := s.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", err
	}
	Logger.Log.WithField("key", key).Info("uploaded to ", output.Location)
	return s.GetUrlFromKey(key), nil
}

func (s *S3FileStore) GetUrlFromKey(key string) string {
	return s.config.PublicHost() + "/" + key
}
