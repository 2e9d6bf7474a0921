// Package models tracks all api models for request and responses
package models

import "github.com/aouyang1/magicframe/store"

// Remote photo-sharing service

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RemoteImage is one entry of the metadata form of the not downloaded images response
type RemoteImage struct {
	ID               int    `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
	UploadedBy       string `json:"uploaded_by"`
}

type NotDownloadedResponse struct {
	Message string        `json:"message"`
	Images  []RemoteImage `json:"images"`
}

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Local control API

type StatusResponse struct {
	LoggedIn     bool   `json:"logged_in"`
	Username     string `json:"username,omitempty"`
	Online       bool   `json:"online"`
	View         string `json:"view"`
	Running      bool   `json:"running"`
	ImageCount   int    `json:"image_count"`
	CurrentImage string `json:"current_image,omitempty"`
	LastPoll     string `json:"last_poll,omitempty"`
	LastPollErr  string `json:"last_poll_error,omitempty"`
	Message      string `json:"message,omitempty"`
}

type PhotoListResponse struct {
	Photos []store.Photo `json:"photos"`
	Total  int           `json:"total"`
}

type UpdateSettingsRequest struct {
	SlideshowDelaySeconds int  `json:"slideshow_delay_seconds"`
	PollIntervalSeconds   int  `json:"poll_interval_seconds"`
	ShuffleEnabled        bool `json:"shuffle_enabled"`
}

type SyncResponse struct {
	Message string `json:"message"`
}

type DisplayStateResponse struct {
	Enabled bool `json:"enabled"`
}
