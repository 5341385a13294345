// Package storage provides read access to an S3-compatible object store.
//
// The manifest package uses it to derive the output file list of a site that is
// published to a bucket: either by listing a prefix or by reading a manifest object.
// It wraps the MinIO Go client and works with AWS S3 and self-hosted MinIO alike.
//
// # Client Interface
//
// The Client interface is deliberately narrow so tests can substitute the mock in
// core/storage/mocks.
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - GetObject: Retrieves content as a stream.
//   - ListObjects: Lists objects in a bucket (supports prefix/recursive).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "site")
package storage
