package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/aouyang1/magicframe/library"
	"github.com/aouyang1/magicframe/store"
	"github.com/aouyang1/magicframe/util"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	mapset "github.com/deckarep/golang-set/v2"
)

// BucketManager mirrors images from an S3 bucket into the image directory. Objects are only ever
// added locally, a photo removed from the bucket stays on the frame.
type BucketManager struct {
	client *s3.Client

	s3Bucket string

	library  *library.Library
	registry Registry
}

func NewBucketManager(ctx context.Context, profile, bucket string, lib *library.Library, registry Registry) (*BucketManager, error) {
	if bucket == "" {
		return nil, errors.New("no s3 bucket provided")
	}

	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	// Load the Shared AWS Configuration (~/.aws/config)
	ctxCfg, cancelCfg := context.WithTimeout(ctx, 3*time.Second)
	cfg, err := config.LoadDefaultConfig(ctxCfg, opts...)
	cancelCfg()
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config, %w", err)
	}

	return &BucketManager{
		client:   s3.NewFromConfig(cfg),
		s3Bucket: bucket,
		library:  lib,
		registry: registry,
	}, nil
}

func (b *BucketManager) getRemoteFiles(ctx context.Context) (mapset.Set[string], error) {
	remoteFiles := mapset.NewSet[string]()

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.s3Bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to list bucket %s, %w", b.s3Bucket, err)
		}
		for object := range slices.Values(page.Contents) {
			name := aws.ToString(object.Key)
			if !util.IsSupported(name) {
				continue
			}
			remoteFiles.Add(name)
		}
	}

	if remoteFiles.Cardinality() == 0 {
		slog.Info("no remote files found", "bucket", b.s3Bucket)
	}
	return remoteFiles, nil
}

func (b *BucketManager) getLocalFiles() (mapset.Set[string], error) {
	names, err := b.library.Names()
	if err != nil {
		return nil, err
	}
	return mapset.NewSet(names...), nil
}

// missingKeys lists the object keys whose base name is not in the image directory yet
func missingKeys(remote, local mapset.Set[string]) []string {
	var keys []string
	for key := range remote.Iter() {
		if !local.Contains(filepath.Base(key)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (b *BucketManager) downloadObject(ctx context.Context, key string) (string, error) {
	downloader := manager.NewDownloader(b.client)

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.s3Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return "", fmt.Errorf("unable to download object from s3, %s, %w", key, err)
	}

	return b.library.Save(key, bytes.NewReader(buf.Bytes()))
}

// Sync downloads every bucket image the frame does not have yet
func (b *BucketManager) Sync(ctx context.Context) ([]string, error) {
	localFiles, err := b.getLocalFiles()
	if err != nil {
		return nil, err
	}

	remoteFiles, err := b.getRemoteFiles(ctx)
	if err != nil {
		return nil, err
	}

	toDownload := missingKeys(remoteFiles, localFiles)
	if len(toDownload) == 0 {
		return nil, nil
	}

	slog.Info("adding files from bucket", "count", len(toDownload), "names", toDownload)
	var added []string
	for key := range slices.Values(toDownload) {
		dst, err := b.downloadObject(ctx, key)
		if err != nil {
			slog.Warn("error while downloading s3 object", "name", key, "error", err)
			continue
		}
		added = append(added, dst)

		if b.registry != nil {
			if err := b.registry.RegisterPhoto(filepath.Base(dst), store.OriginBucket, time.Now()); err != nil {
				slog.Warn("error while registering photo", "name", key, "error", err)
			}
		}
	}
	return added, nil
}
