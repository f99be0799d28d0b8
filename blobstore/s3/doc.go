// Package s3 provides an Amazon S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("content/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	svc.Mount("s3", store)
//
// # Features
//
//   - One GetObject per Open; the body streams as it is read
//   - Multipart uploads for large blobs through the SDK upload manager
//   - CRC32C integrity checksums on single-part uploads
//   - Automatic pagination for listing
//   - Configurable key root for sharing one bucket between mounts
//   - Content type derived from the blob extension
package s3
