package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3API is the subset of the S3 client the store calls
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures an S3 compatible photo bucket
type S3Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Store keeps photos in an S3 compatible bucket using the same key
// layout as the filesystem store
type S3Store struct {
	client S3API
	bucket string
	log    *zap.Logger
}

// NewS3Client builds an S3 client from static credentials, or the default
// credential chain when no keys are given
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// NewS3Store wraps an S3 client
func NewS3Store(client S3API, bucket string, log *zap.Logger) *S3Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Store{client: client, bucket: bucket, log: log}
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.log.Error("Failed to upload photo to S3", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, dir string) ([]string, error) {
	files, _, err := s.listLevel(ctx, dir)
	return files, err
}

func (s *S3Store) ListDirs(ctx context.Context, dir string) ([]string, error) {
	_, dirs, err := s.listLevel(ctx, dir)
	return dirs, err
}

// listLevel lists one level below dir using the "/" delimiter
func (s *S3Store) listLevel(ctx context.Context, dir string) ([]string, []string, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var files, dirs []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name != "" && !strings.Contains(name, "/") {
				files = append(files, name)
			}
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				dirs = append(dirs, name)
			}
		}
	}
	return files, dirs, nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	return false, fmt.Errorf("head object: %w", err)
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: photo does not exist", ErrNotFound)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// deleteBatchSize is the DeleteObjects per-request maximum
const deleteBatchSize = 1000

func (s *S3Store) RemoveAll(ctx context.Context, dir string) (int, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if prefix == "/" {
		return 0, fmt.Errorf("%w: refusing to remove the storage base", ErrForbidden)
	}
	keys, err := s.listAll(ctx, prefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: keys[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return removed, fmt.Errorf("delete objects: %w", err)
		}
		removed += end - start - len(out.Errors)
		for _, e := range out.Errors {
			s.log.Warn("Failed to delete photo object",
				zap.String("key", aws.ToString(e.Key)),
				zap.String("code", aws.ToString(e.Code)))
		}
	}
	return removed, nil
}

// listAll returns every object below prefix, at any depth
func (s *S3Store) listAll(ctx context.Context, prefix string) ([]types.ObjectIdentifier, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, types.ObjectIdentifier{Key: obj.Key})
		}
	}
	return keys, nil
}

// Move copies every object below dir to newDir, then deletes the originals
// S3 has no rename
func (s *S3Store) Move(ctx context.Context, dir, newDir string) (int, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	newPrefix := strings.TrimSuffix(newDir, "/") + "/"
	if prefix == "/" || newPrefix == "/" {
		return 0, fmt.Errorf("%w: refusing to move the storage base", ErrForbidden)
	}
	if prefix == newPrefix {
		return 0, nil
	}
	if strings.HasPrefix(newPrefix, prefix) {
		return 0, fmt.Errorf("%w: cannot move a directory into itself", ErrValidation)
	}

	keys, err := s.listAll(ctx, prefix)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		key := aws.ToString(k.Key)
		if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			CopySource: aws.String(s.bucket + "/" + key),
			Key:        aws.String(newPrefix + strings.TrimPrefix(key, prefix)),
		}); err != nil {
			s.log.Error("Failed to copy photo object", zap.String("key", key), zap.Error(err))
			return 0, fmt.Errorf("copy object: %w", err)
		}
	}
	if _, err := s.RemoveAll(ctx, dir); err != nil {
		return len(keys), err
	}
	return len(keys), nil
}

var _ Store = (*S3Store)(nil)
