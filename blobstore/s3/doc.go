// Package s3 serves dictionary artifacts from Amazon S3.
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("dictionaries/ja/"),
//	    s3.WithRegion("ap-northeast-1"),
//	)
//
// Reads are ranged GETs, so a shard slot costs one request when wrapped in a
// blobstore.CachingStore. Large artifacts are uploaded in parallel parts.
//
// DDBCommitStore adds a DynamoDB-backed CURRENT pointer so that concurrent
// dictionary publishers cannot overwrite each other.
package s3
