package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store keeps files as objects under prefix in one bucket. Staged content is
// held in memory and uploaded on Commit.
type S3Store struct {
	client objectAPI
	bucket string
	prefix string
}

// NewS3Store builds a client from the default AWS credential chain. Path-style
// addressing keeps S3-compatible endpoints working.
func NewS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: true,
	})
	return newS3Store(client, bucket, prefix), nil
}

func newS3Store(client objectAPI, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (store *S3Store) key(name string) (string, error) {
	safe, err := SafeName(name)
	if err != nil {
		return "", err
	}
	if store.prefix == "" {
		return safe, nil
	}
	return path.Join(store.prefix, safe), nil
}

func (store *S3Store) Stage(ctx context.Context, name string, content []byte) (Staged, error) {
	key, err := store.key(name)
	if err != nil {
		return nil, err
	}
	buffered := make([]byte, len(content))
	copy(buffered, content)
	return &s3Staged{ctx: ctx, store: store, key: key, content: buffered}, nil
}

func (store *S3Store) Put(ctx context.Context, name string, content []byte) error {
	key, err := store.key(name)
	if err != nil {
		return err
	}
	return store.put(ctx, key, content)
}

func (store *S3Store) put(ctx context.Context, key string, content []byte) error {
	_, err := store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (store *S3Store) Get(ctx context.Context, name string) ([]byte, error) {
	key, err := store.key(name)
	if err != nil {
		return nil, err
	}
	resp, err := store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissingObject(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return content, nil
}

func (store *S3Store) Exists(ctx context.Context, name string) (bool, error) {
	key, err := store.key(name)
	if err != nil {
		return false, err
	}
	_, err = store.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isMissingObject(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", key, err)
}

func isMissingObject(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

type s3Staged struct {
	ctx     context.Context
	store   *S3Store
	key     string
	content []byte
}

func (staged *s3Staged) Commit() error {
	return staged.store.put(staged.ctx, staged.key, staged.content)
}

func (staged *s3Staged) Discard() error {
	staged.content = nil
	return nil
}
