package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"folio-api/internal/config"
	"folio-api/internal/logging"
	"folio-api/internal/logging/types"
)

// SpacesClient wraps the S3 client for DigitalOcean Spaces operations. It
// backs the audit archive, chat transcript archive, API key records and
// generated resume documents.
type SpacesClient struct {
	client     *s3.S3
	bucketName string
	bucketURL  string
	cdnURL     string
	logger     types.Logger
}

// ObjectPage is one page of a prefix listing
type ObjectPage struct {
	Keys       []string
	NextCursor string
}

// NewSpacesClient creates a new DigitalOcean Spaces client
func NewSpacesClient(cfg *config.Config) (*SpacesClient, error) {
	logger := logging.GetGlobalLogger()

	if cfg.Blob.AccessKeyID == "" || cfg.Blob.AccessKeySecret == "" {
		return nil, fmt.Errorf("blob storage credentials are required")
	}

	if cfg.Blob.BucketURL == "" {
		return nil, fmt.Errorf("blob storage bucket URL is required")
	}

	// Region-based endpoint, e.g. https://nyc3.digitaloceanspaces.com
	endpoint := fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Blob.Region)

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.Blob.AccessKeyID,
			cfg.Blob.AccessKeySecret,
			"",
		),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(cfg.Blob.Region),
		S3ForcePathStyle: aws.Bool(false), // virtual-hosted-style for Spaces
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create blob storage session: %w", err)
	}

	client := s3.New(sess)

	logger.Info("Blob storage client initialized", map[string]interface{}{
		"bucket_name": cfg.Blob.BucketName,
		"region":      cfg.Blob.Region,
		"endpoint":    endpoint,
	})

	return &SpacesClient{
		client:     client,
		bucketName: cfg.Blob.BucketName,
		bucketURL:  cfg.Blob.BucketURL,
		cdnURL:     cfg.Blob.CDNEndpoint,
		logger:     logger,
	}, nil
}

// PutObject uploads an object and returns its public URL
func (sc *SpacesClient) PutObject(key string, data []byte, contentType string) (string, error) {
	_, err := sc.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(sc.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("private"),
	})

	if err != nil {
		sc.logger.Error("Failed to upload object", map[string]interface{}{
			"object_key": key,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return sc.ObjectURL(key), nil
}

// PutPublicObject uploads an object with public-read ACL (generated resume
// documents that the client downloads directly)
func (sc *SpacesClient) PutPublicObject(key string, data []byte, contentType string) (string, error) {
	_, err := sc.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(sc.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})

	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return sc.ObjectURL(key), nil
}

// GetObject downloads an object's contents
func (sc *SpacesClient) GetObject(key string) ([]byte, error) {
	out, err := sc.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(sc.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

// IsNotFound reports whether err means the requested object does not exist,
// as opposed to the request failing. Callers use it to tell an empty store
// apart from an outage. HEAD requests report "NotFound" instead of NoSuchKey.
func IsNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}

// ListObjects returns one page of keys under a prefix. Pass the cursor from
// the previous page to continue; an empty NextCursor means the listing is
// exhausted.
func (sc *SpacesClient) ListObjects(prefix, cursor string, limit int64) (*ObjectPage, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(sc.bucketName),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(limit),
	}
	if cursor != "" {
		input.ContinuationToken = aws.String(cursor)
	}

	out, err := sc.client.ListObjectsV2(input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}

	page := &ObjectPage{Keys: make([]string, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		if obj.Key != nil {
			page.Keys = append(page.Keys, *obj.Key)
		}
	}
	if out.NextContinuationToken != nil {
		page.NextCursor = *out.NextContinuationToken
	}

	return page, nil
}

// ObjectURL derives the public URL for an object key, preferring the CDN
// endpoint when configured
func (sc *SpacesClient) ObjectURL(key string) string {
	if sc.cdnURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(sc.cdnURL, "/"), key)
	}

	bucketBaseURL := strings.TrimRight(sc.bucketURL, "/")
	if !strings.HasPrefix(bucketBaseURL, "https://") {
		bucketBaseURL = "https://" + bucketBaseURL
	}
	return fmt.Sprintf("%s/%s", bucketBaseURL, key)
}

// IsHealthy verifies the bucket is reachable
func (sc *SpacesClient) IsHealthy() error {
	_, err := sc.client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(sc.bucketName),
	})
	return err
}
