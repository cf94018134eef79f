package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the S3 client the uploader uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

/* ---------- S3 uploader ---------- */

// Uploader copies exported files to S3 under <prefix>/<matchId>/<file>.
type Uploader struct {
	client S3API
	bucket string
	prefix string
}

// NewUploader creates an uploader around an existing client.
func NewUploader(client S3API, bucket, prefix string) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// NewS3Uploader creates an uploader using the default AWS credential chain.
func NewS3Uploader(ctx context.Context, bucket, prefix string) (*Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewUploader(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

// Key returns the object key for a file of a match.
func (u *Uploader) Key(matchID int64, name string) string {
	return path.Join(u.prefix, strconv.FormatInt(matchID, 10), name)
}

// Upload puts every file and returns the object URIs in the same order.
func (u *Uploader) Upload(ctx context.Context, matchID int64, files []string) ([]string, error) {
	uris := make([]string, 0, len(files))
	for _, file := range files {
		body, err := os.ReadFile(file)
		if err != nil {
			return uris, fmt.Errorf("reading %s: %w", file, err)
		}

		key := u.Key(matchID, filepath.Base(file))
		if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType(file)),
		}); err != nil {
			return uris, fmt.Errorf("uploading %s: %w", key, err)
		}
		uris = append(uris, "s3://"+u.bucket+"/"+key)
	}
	return uris, nil
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".parquet":
		return "application/vnd.apache.parquet"
	case ".db":
		return "application/vnd.sqlite3"
	}
	return "application/octet-stream"
}
