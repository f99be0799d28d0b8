// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. This package
// uses the official MinIO Go client library for compatibility with MinIO
// and other S3-compatible storage systems like Ceph, SeaweedFS, and Garage.
//
// # Basic Usage
//
//	store, err := minio.Connect(ctx, minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "assets",
//	    Prefix:    "content/",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	svc.Mount("cdn", store)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
