package manifest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/storage"

	"github.com/minio/minio-go/v7"
)

// ListingSource treats every object under a bucket prefix as an output file.
// It fits local mirrors of a site that is published to object storage.
type ListingSource struct {
	client storage.Client
	bucket string
	prefix string
}

// NewListingSource creates a source listing bucket under prefix.
func NewListingSource(client storage.Client, bucket, prefix string) *ListingSource {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ListingSource{client: client, bucket: bucket, prefix: prefix}
}

// Name returns "storage".
func (s *ListingSource) Name() string {
	return "storage"
}

// Load lists the prefix recursively. Folder marker objects are skipped.
func (s *ListingSource) Load(ctx context.Context) ([]cleaner.SiteFile, error) {
	if err := checkBucket(ctx, s.client, s.bucket); err != nil {
		return nil, err
	}

	opts := minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}

	var paths []string
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", s.prefix, obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, s.prefix)
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}
		paths = append(paths, rel)
	}

	return toSiteFiles(paths)
}

// ObjectSource reads a manifest stored as a single object.
type ObjectSource struct {
	client storage.Client
	bucket string
	object string
}

// NewObjectSource creates a source for the manifest object in bucket.
func NewObjectSource(client storage.Client, bucket, object string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, object: object}
}

// Name returns "object".
func (s *ObjectSource) Name() string {
	return "object"
}

// Load downloads and parses the manifest object.
func (s *ObjectSource) Load(ctx context.Context) ([]cleaner.SiteFile, error) {
	if s.object == "" {
		return nil, fmt.Errorf("manifest object is not configured")
	}
	if err := checkBucket(ctx, s.client, s.bucket); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest object %s: %w", s.object, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest object %s: %w", s.object, err)
	}
	paths, err := Parse(s.object, data)
	if err != nil {
		return nil, err
	}
	return toSiteFiles(paths)
}

func checkBucket(ctx context.Context, client storage.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}
	return nil
}
