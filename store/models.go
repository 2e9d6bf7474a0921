package store

import "time"

// Origin records how a photo reached the image directory
type Origin string

const (
	OriginMetadata Origin = "metadata"
	OriginZip      Origin = "zip"
	OriginImage    Origin = "image"
	OriginBucket   Origin = "bucket"
	OriginLocal    Origin = "local"
)

type Photo struct {
	PhotoName string    `json:"photo_name"`
	Origin    Origin    `json:"origin"`
	AddedAt   time.Time `json:"added_at"`
}

type AppSettings struct {
	SlideshowDelaySeconds int  `json:"slideshow_delay_seconds"`
	PollIntervalSeconds   int  `json:"poll_interval_seconds"`
	ShuffleEnabled        bool `json:"shuffle_enabled"`
}

// DefaultAppSettings shows each image for ten seconds and checks for new images every five minutes
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		SlideshowDelaySeconds: 10,
		PollIntervalSeconds:   300,
		ShuffleEnabled:        true,
	}
}

func (s *AppSettings) SlideshowDelay() time.Duration {
	return time.Duration(s.SlideshowDelaySeconds) * time.Second
}

func (s *AppSettings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}
