package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/akave-ai/hltmenu/internal/config"
	"github.com/akave-ai/hltmenu/internal/pset"
)

const (
	menusPrefix    = "menus"
	cfiSuffix      = "_cfi.py"
	cfiContentType = "text/x-python; charset=utf-8"
)

// O3Client uploads and downloads published fragments from Akave O3
// (S3-compatible API).
type O3Client struct {
	client *s3.Client
	bucket string
}

// NewO3Client builds an S3-compatible client for the given O3 config.
// Returns nil if cfg is nil or endpoint/bucket are empty.
func NewO3Client(cfg *config.O3Config) (*O3Client, error) {
	if cfg == nil || cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, nil
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	client := s3.NewFromConfig(aws.Config{
		Region:      region,
		Credentials: aws.NewCredentialsCache(creds),
	}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &O3Client{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket if HeadBucket fails.
func (c *O3Client) EnsureBucket(ctx context.Context) error {
	if c == nil {
		return nil
	}
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err == nil {
		return nil
	}
	_, createErr := c.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
	if createErr != nil {
		var apiErr smithy.APIError
		if errors.As(createErr, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
				return nil
			}
		}
		return createErr
	}
	return nil
}

// PutObject uploads data to key.
func (c *O3Client) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if c == nil {
		return fmt.Errorf("o3 client not configured")
	}
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

// KeyForModule returns the object key of a published fragment, e.g.
// menus/HLT_75e33/hltEle26WP70GsfTrackIsoUnseededFilter/<pset id>_cfi.py.
// Identical fragments map to the same key.
func KeyForModule(menu string, mod *pset.Module) string {
	if menu == "" {
		menu = "default"
	}
	return path.Join(menusPrefix, menu, mod.Label(), mod.ID()+cfiSuffix)
}

// PublishModule uploads the canonical fragment of mod and returns its key.
func (c *O3Client) PublishModule(ctx context.Context, menu string, mod *pset.Module) (string, error) {
	key := KeyForModule(menu, mod)
	if err := c.PutObject(ctx, key, mod.Serialize(), cfiContentType); err != nil {
		return "", fmt.Errorf("publish %s: %w", mod.Label(), err)
	}
	return key, nil
}

// ObjectInfo describes an object in O3 (for list response).
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ListObjects lists objects under prefix. Returns nil, nil if client is nil.
func (c *O3Client) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if c == nil {
		return nil, nil
	}
	out, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, err
	}
	result := make([]ObjectInfo, 0, len(out.Contents))
	for _, o := range out.Contents {
		info := ObjectInfo{Key: aws.ToString(o.Key), Size: aws.ToInt64(o.Size)}
		if o.LastModified != nil {
			info.LastModified = *o.LastModified
		}
		result = append(result, info)
	}
	return result, nil
}

// ListPublished lists the published versions of one module.
func (c *O3Client) ListPublished(ctx context.Context, menu, label string) ([]ObjectInfo, error) {
	if menu == "" {
		menu = "default"
	}
	return c.ListObjects(ctx, path.Join(menusPrefix, menu, label)+"/")
}

// GetObject downloads an object by key.
func (c *O3Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("o3 client not configured")
	}
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// GetModule downloads a published fragment and parses it. The parameter-set
// ID embedded in the key must match the content.
func (c *O3Client) GetModule(ctx context.Context, key string) (*pset.Module, error) {
	raw, err := c.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	mod, err := pset.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if want := strings.TrimSuffix(path.Base(key), cfiSuffix); want != mod.ID() {
		return nil, fmt.Errorf("%s: content digest %s does not match key", key, mod.ID())
	}
	return mod, nil
}
