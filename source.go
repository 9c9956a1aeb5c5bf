package kanakanji

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/blobstore/minio"
	"github.com/hupe1980/kanakanji/blobstore/s3"
	"github.com/hupe1980/kanakanji/config"
)

// OpenBlobStore opens the store a dictionary section points at. remote
// reports whether reads go over the network. Builders use it to publish to
// the location an Engine reads from.
func OpenBlobStore(ctx context.Context, cfg config.DictionaryConfig) (store blobstore.BlobStore, remote bool, err error) {
	switch cfg.Source {
	case config.SourceLocal, "":
		return blobstore.NewLocalStore(cfg.Path), false, nil
	case config.SourceMemory:
		return blobstore.NewMemoryStore(), false, nil
	case config.SourceS3:
		st, err := openS3(ctx, cfg)
		return st, true, err
	case config.SourceMinIO:
		client, err := minio.Dial(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
		if err != nil {
			return nil, true, err
		}
		return minio.NewStore(client, cfg.Bucket, cfg.Prefix), true, nil
	default:
		return nil, false, &ErrUnsupportedSource{Source: cfg.Source}
	}
}

func openS3(ctx context.Context, cfg config.DictionaryConfig) (blobstore.BlobStore, error) {
	var opts []s3.Option
	if cfg.Prefix != "" {
		opts = append(opts, s3.WithPrefix(cfg.Prefix))
	}
	if cfg.Region != "" {
		opts = append(opts, s3.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, s3.WithEndpoint(cfg.Endpoint))
	}
	st, err := s3.New(ctx, cfg.Bucket, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.CommitTable == "" {
		return st, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}
	return s3.NewDDBCommitStore(st, dynamodb.NewFromConfig(awsCfg), cfg.CommitTable, baseURI(cfg)), nil
}

// baseURI names the dictionary location in the commit table.
func baseURI(cfg config.DictionaryConfig) string {
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		return "s3://" + cfg.Bucket
	}
	return "s3://" + cfg.Bucket + "/" + prefix
}
