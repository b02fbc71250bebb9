package file_store

import (
	"context"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rinblog/rin/utils"
)

// FileStore persists uploaded files and returns where they can be read.
type FileStore interface {
	// Store writes body under key and returns the public url of the object.
	Store(ctx context.Context, key string, body []byte, contentType string) (url string, err error)
	GetUrlFromKey(key string) string
}

// S3Config describes an S3 compatible bucket. It is read from env so that a
// misconfigured server still starts and reports the missing setting per
// request.
type S3Config struct {
	Endpoint        string
	Bucket          string
	Folder          string
	AccessHost      string
	AccessKeyId     string
	SecretAccessKey string
	Region          string
}

func S3ConfigFromEnv() S3Config {
	return S3Config{
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		Bucket:          os.Getenv("S3_BUCKET"),
		Folder:          os.Getenv("S3_FOLDER"),
		AccessHost:      os.Getenv("S3_ACCESS_HOST"),
		AccessKeyId:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		Region:          os.Getenv("S3_REGION"),
	}
}

// Validate returns the first missing required setting, in the order
// endpoint, access key id, secret access key, bucket.
func (c S3Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("S3_ENDPOINT is not defined")
	}
	if c.AccessKeyId == "" {
		return errors.New("S3_ACCESS_KEY_ID is not defined")
	}
	if c.SecretAccessKey == "" {
		return errors.New("S3_SECRET_ACCESS_KEY is not defined")
	}
	if c.Bucket == "" {
		return errors.New("S3_BUCKET is not defined")
	}
	return nil
}

// PublicHost is the host objects are served from, the endpoint unless an
// access host is set.
func (c S3Config) PublicHost() string {
	if c.AccessHost != "" {
		return c.AccessHost
	}
	return c.Endpoint
}

// GenerateKeyFromContent names an object by the sha1 of its bytes, keeping the
// extension of fileName: {folder}/{sha1}.{ext}. The same bytes with the same
// extension always map to the same key.
func GenerateKeyFromContent(folder, fileName string, content []byte) string {
	return path.Join(folder, utils.ContentToSha1Hash(content)+"."+utils.GetFileExtName(fileName))
}
