package api

import (
	"context"
	"log/slog"
)

// Checker is one poll of the photo service
type Checker interface {
	CheckForNew(ctx context.Context, token string) ([]string, error)
}

// Mirror copies images from a secondary source that needs no session
type Mirror interface {
	Sync(ctx context.Context) ([]string, error)
}

// Syncer runs a poll of the photo service followed by the bucket mirror when one is configured.
// A mirror failure is logged and never hides the service result.
type Syncer struct {
	remote Checker
	mirror Mirror
}

func NewSyncer(remote Checker, mirror Mirror) *Syncer {
	return &Syncer{remote: remote, mirror: mirror}
}

func (s *Syncer) CheckForNew(ctx context.Context, token string) ([]string, error) {
	added, err := s.remote.CheckForNew(ctx, token)
	if s.mirror == nil {
		return added, err
	}

	mirrored, mirrorErr := s.mirror.Sync(ctx)
	if mirrorErr != nil {
		slog.Warn("error syncing bucket", "error", mirrorErr)
	}
	return append(added, mirrored...), err
}
