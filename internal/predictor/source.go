package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// ArtifactSource reads and writes the serialized model artifact. A missing
// artifact is reported as an error wrapping fs.ErrNotExist.
type ArtifactSource interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Location() string
}

// NewArtifactSource picks an S3 source for s3://bucket/key paths and a local
// file otherwise.
func NewArtifactSource(path, region string) (ArtifactSource, error) {
	if strings.HasPrefix(path, "s3://") {
		bucket, key, err := ParseS3URI(path)
		if err != nil {
			return nil, err
		}
		return NewS3Source(bucket, key, region)
	}
	return &FileSource{Path: path}, nil
}

// FileSource stores the artifact on local disk.
type FileSource struct {
	Path string
}

// Read implements ArtifactSource.
func (s *FileSource) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", s.Path, err)
	}
	return data, nil
}

// Write implements ArtifactSource. The file is replaced atomically.
func (s *FileSource) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to move model file into place: %w", err)
	}
	return nil
}

// Location implements ArtifactSource.
func (s *FileSource) Location() string {
	return s.Path
}

// S3Source stores the artifact as one S3 object.
type S3Source struct {
	Bucket string
	Key    string
	client s3iface.S3API
}

// NewS3Source creates a source backed by the default AWS credential chain.
func NewS3Source(bucket, key, region string) (*S3Source, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3SourceWithClient(s3.New(sess), bucket, key), nil
}

// NewS3SourceWithClient uses an existing S3 client.
func NewS3SourceWithClient(client s3iface.S3API, bucket, key string) *S3Source {
	return &S3Source{Bucket: bucket, Key: key, client: client}
}

// Read implements ArtifactSource.
func (s *S3Source) Read(ctx context.Context) ([]byte, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == s3.ErrCodeNoSuchBucket) {
			return nil, fmt.Errorf("model object %s: %w", s.Location(), fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to download model %s: %w", s.Location(), err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", s.Location(), err)
	}
	return data, nil
}

// Write implements ArtifactSource.
func (s *S3Source) Write(ctx context.Context, data []byte) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload model %s: %w", s.Location(), err)
	}
	return nil
}

// Location implements ArtifactSource.
func (s *S3Source) Location() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	if rest == uri {
		return "", "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("s3 uri must be s3://bucket/key: %s", uri)
	}
	return parts[0], parts[1], nil
}
