// Package blobstore abstracts where dictionary artifacts live.
//
// A dictionary is a set of immutable blobs (LOUDS vectors, char tables,
// loudstxt3 shards, terminal bitmaps) plus a manifest and a CURRENT pointer.
// The builder publishes them with Put; readers Open them and either map them
// (LocalStore blobs implement Mappable) or read them whole.
//
// Implementations:
//
//   - LocalStore: a directory on disk, read through mmap
//   - MemoryStore: a map, for tests and embedded dictionaries
//   - s3.Store, s3.DDBCommitStore: Amazon S3, optionally with a DynamoDB
//     pointer for atomic CURRENT updates
//   - minio.Store: S3-compatible object stores
//   - CachingStore: block cache in front of any remote store
//
// All implementations are safe for concurrent use.
package blobstore
