// Package store database for the photo registry and slideshow settings
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// the UI worker commands and the control API share one file
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db}

	if err := database.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return database, nil
}

func (d *Database) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS photos (
		photo_name TEXT NOT NULL,
		origin     TEXT NOT NULL,
		added_at   INTEGER NOT NULL,
		PRIMARY KEY (photo_name)
	);
	CREATE INDEX IF NOT EXISTS idx_photos_added_at ON photos(added_at);
	CREATE TABLE IF NOT EXISTS app_settings (
		singleton INTEGER NOT NULL DEFAULT 1 CHECK (singleton = 1),
		slideshow_delay_seconds INTEGER NOT NULL,
		poll_interval_seconds   INTEGER NOT NULL,
		shuffle_enabled         INTEGER NOT NULL,
		PRIMARY KEY (singleton)
	);
	`
	_, err := d.db.Exec(query)
	return err
}

// RegisterPhoto records a photo. Registering an existing name refreshes its origin and time.
func (d *Database) RegisterPhoto(name string, origin Origin, addedAt time.Time) error {
	const stmt = `
		INSERT INTO photos (photo_name, origin, added_at) VALUES (?, ?, ?)
		ON CONFLICT(photo_name) DO UPDATE SET
			origin   = excluded.origin,
			added_at = excluded.added_at
	`
	if _, err := d.db.Exec(stmt, name, string(origin), addedAt.Unix()); err != nil {
		return fmt.Errorf("failed to register photo: %w", err)
	}
	return nil
}

// RegisterPhotoIfNotExists records a photo only if the name is unknown
func (d *Database) RegisterPhotoIfNotExists(name string, origin Origin, addedAt time.Time) error {
	const stmt = `INSERT OR IGNORE INTO photos (photo_name, origin, added_at) VALUES (?, ?, ?)`
	if _, err := d.db.Exec(stmt, name, string(origin), addedAt.Unix()); err != nil {
		return fmt.Errorf("failed to register photo: %w", err)
	}
	return nil
}

// GetAllPhotos returns the registry newest first
func (d *Database) GetAllPhotos() ([]Photo, error) {
	query := `
		SELECT photo_name, origin, added_at
		FROM photos
		ORDER BY added_at DESC, photo_name ASC
	`
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		var origin string
		var addedAt int64
		if err := rows.Scan(&p.PhotoName, &origin, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		p.Origin = Origin(origin)
		p.AddedAt = time.Unix(addedAt, 0)
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return photos, nil
}

// DeletePhoto drops a photo from the registry. The image file is not touched.
func (d *Database) DeletePhoto(name string) error {
	if _, err := d.db.Exec(`DELETE FROM photos WHERE photo_name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func (d *Database) GetPhotoCount() (int, error) {
	query := `SELECT COUNT(*) FROM photos`
	var count int
	err := d.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get photo count: %w", err)
	}
	return count, nil
}

func (d *Database) GetAppSettings() (*AppSettings, error) {
	const query = `
		SELECT slideshow_delay_seconds,
		       poll_interval_seconds,
		       shuffle_enabled
		FROM app_settings
		WHERE singleton = 1
	`

	var delay, poll, shuffleEnabledInt int

	err := d.db.QueryRow(query).Scan(&delay, &poll, &shuffleEnabledInt)
	if errors.Is(err, sql.ErrNoRows) {
		// Bootstrap defaults if no settings row exists yet
		defaults := DefaultAppSettings()
		if err := d.UpsertAppSettings(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get app settings: %w", err)
	}

	settings := &AppSettings{
		SlideshowDelaySeconds: delay,
		PollIntervalSeconds:   poll,
		ShuffleEnabled:        shuffleEnabledInt != 0,
	}
	return settings, nil
}

func (d *Database) UpsertAppSettings(s *AppSettings) error {
	if s.SlideshowDelaySeconds <= 0 || s.PollIntervalSeconds <= 0 {
		return fmt.Errorf("upsert app settings: delay and poll interval must be positive")
	}

	const stmt = `
		INSERT INTO app_settings (
			singleton,
			slideshow_delay_seconds,
			poll_interval_seconds,
			shuffle_enabled
		) VALUES (1, ?, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			slideshow_delay_seconds = excluded.slideshow_delay_seconds,
			poll_interval_seconds   = excluded.poll_interval_seconds,
			shuffle_enabled         = excluded.shuffle_enabled
	`

	_, err := d.db.Exec(
		stmt,
		s.SlideshowDelaySeconds,
		s.PollIntervalSeconds,
		boolToInt(s.ShuffleEnabled),
	)
	if err != nil {
		return fmt.Errorf("upsert app settings: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (d *Database) Close() error {
	return d.db.Close()
}
