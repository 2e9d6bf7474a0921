package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aouyang1/magicframe/api/client"
	"github.com/aouyang1/magicframe/library"
	"github.com/aouyang1/magicframe/store"
	"golang.org/x/time/rate"
)

// metadata downloads hit the service once per file, keep them paced
const (
	downloadInterval = 250 * time.Millisecond
	downloadBurst    = 2
)

// Fetcher is the part of the remote client the poller needs
type Fetcher interface {
	FetchNew(ctx context.Context, token string) (*client.Download, error)
	DownloadFile(ctx context.Context, relURL string) (io.ReadCloser, error)
}

// Registry records the photos written to the image directory
type Registry interface {
	RegisterPhoto(name string, origin store.Origin, addedAt time.Time) error
}

// RemoteManager polls the photo-sharing service for images this frame has not downloaded yet
type RemoteManager struct {
	client   Fetcher
	library  *library.Library
	registry Registry
	limiter  *rate.Limiter

	now func() time.Time
}

func NewRemoteManager(c Fetcher, lib *library.Library, registry Registry) *RemoteManager {
	return &RemoteManager{
		client:   c,
		library:  lib,
		registry: registry,
		limiter:  rate.NewLimiter(rate.Every(downloadInterval), downloadBurst),
		now:      time.Now,
	}
}

// CheckForNew performs one poll and returns the paths of the files it wrote
func (r *RemoteManager) CheckForNew(ctx context.Context, token string) ([]string, error) {
	if token == "" {
		return nil, errors.New("no session token to poll with")
	}

	download, err := r.client.FetchNew(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("error checking for new images: %w", err)
	}
	defer download.Close()

	var added []string
	var origin store.Origin
	switch download.Kind {
	case client.KindMetadata:
		origin = store.OriginMetadata
		added, err = r.processMetadata(ctx, download)
	case client.KindZip:
		origin = store.OriginZip
		added, err = r.library.SaveZip(download.Body)
	case client.KindImage:
		origin = store.OriginImage
		added, err = r.processSingleImage(download)
	default:
		slog.Warn("unexpected content type from remote", "content_type", download.ContentType)
		return nil, nil
	}
	// files already written stay on disk, so they are registered even when the download fails part way
	r.register(added, origin)
	if err != nil {
		return added, fmt.Errorf("error processing %s download: %w", download.Kind, err)
	}

	if len(added) > 0 {
		slog.Info("downloaded new images", "count", len(added), "kind", download.Kind.String())
	}
	return added, nil
}

func (r *RemoteManager) processMetadata(ctx context.Context, download *client.Download) ([]string, error) {
	resp, err := download.Metadata()
	if err != nil {
		return nil, err
	}

	if strings.Contains(strings.ToLower(resp.Message), "no new images") {
		slog.Debug("no new images to download")
		return nil, nil
	}

	var added []string
	for _, img := range resp.Images {
		if img.URL == "" {
			continue
		}
		name := img.OriginalFilename
		if name == "" {
			name = path.Base(img.URL)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return added, err
		}

		dst, err := r.downloadOne(ctx, img.URL, name)
		if err != nil {
			slog.Warn("error downloading image", "url", img.URL, "error", err)
			continue
		}
		added = append(added, dst)
	}
	return added, nil
}

func (r *RemoteManager) downloadOne(ctx context.Context, relURL, name string) (string, error) {
	body, err := r.client.DownloadFile(ctx, relURL)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return r.library.Save(name, body)
}

func (r *RemoteManager) processSingleImage(download *client.Download) ([]string, error) {
	name := library.SingleImageName(download.ContentDisposition, download.ContentType, r.now())
	dst, err := r.library.Save(name, download.Body)
	if err != nil {
		return nil, err
	}
	return []string{dst}, nil
}

func (r *RemoteManager) register(paths []string, origin store.Origin) {
	if r.registry == nil {
		return
	}
	now := r.now()
	for _, p := range paths {
		name := filepath.Base(p)
		if err := r.registry.RegisterPhoto(name, origin, now); err != nil {
			// the file is on disk, the registry is informational
			slog.Warn("error while registering photo", "name", name, "error", err)
		}
	}
}
