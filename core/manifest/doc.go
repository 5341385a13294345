// Package manifest loads the list of files a generator is about to write.
//
// The cleaner does not know how a site is generated; it only needs the destination of
// every output. Generators record that list somewhere, and this package reads it back
// as cleaner.SiteFile values.
//
// # Sources
//
//   - FileSource: a manifest file on disk (.json, .yaml/.yml, .toml or plain text).
//   - ObjectSource: the same manifest formats stored as an object in the bucket.
//   - ListingSource: every object under a bucket prefix, for mirrors of a published site.
//   - DatabaseSource: rows of the site_files table for one site.
//
// Every path is relative to the destination root and slash-separated. Absolute paths
// and paths that climb out of the root are rejected.
//
// # Cache
//
// Cache keeps loaded lists for a TTL and collapses concurrent loads of the same source
// into one (singleflight). A zero TTL disables retention.
//
// # Usage
//
//	reg := manifest.NewRegistry(
//	    manifest.NewFileSource(afero.NewOsFs(), "_site.manifest.json"),
//	    manifest.NewListingSource(client, "site", "public/"),
//	)
//	src, err := reg.Get("file")
//	files, err := cache.Load(ctx, src)
package manifest
