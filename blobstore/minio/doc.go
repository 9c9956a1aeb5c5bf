// Package minio serves dictionary artifacts from MinIO or any S3-compatible
// object store reachable through minio-go.
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(access, secret, ""),
//	})
//	store := kmin.NewStore(client, "dictionaries", "ja/")
package minio
