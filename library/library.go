// Package library manages the flat directory of images the slideshow plays from
package library

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/magicframe/util"
)

var ErrInvalidName = errors.New("invalid image file name")

type Library struct {
	path string
}

// New opens the image directory, creating it if needed
func New(path string) (*Library, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Library{path: path}, nil
}

func (l *Library) Path() string {
	return l.path
}

// List returns the full paths of every displayable file, sorted by name
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory, %s, %w", l.path, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !util.IsSupported(name) {
			continue
		}
		paths = append(paths, filepath.Join(l.path, name))
	}
	return paths, nil
}

// Names returns the base names of every displayable file
func (l *Library) Names() ([]string, error) {
	paths, err := l.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names, nil
}

// Shuffled lists the directory in random order
func (l *Library) Shuffled(rng *rand.Rand) ([]string, error) {
	paths, err := l.List()
	if err != nil {
		return nil, err
	}
	rng.Shuffle(len(paths), func(i, j int) {
		paths[i], paths[j] = paths[j], paths[i]
	})
	return paths, nil
}

// Contains reports whether an image with this base name already exists
func (l *Library) Contains(name string) bool {
	_, err := os.Stat(filepath.Join(l.path, filepath.Base(name)))
	return err == nil
}

// Save writes r under the base name of name and returns the full path. An existing file with
// the same name is replaced.
func (l *Library) Save(name string, r io.Reader) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.path, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("unable to create temp file for %s, %w", base, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("unable to write %s, %w", base, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("unable to close %s, %w", base, err)
	}

	dst := filepath.Join(l.path, base)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("unable to move %s into place, %w", base, err)
	}
	return dst, nil
}

// ExtractZip copies every supported image entry of the archive into the directory, flattening
// any folders
func (l *Library) ExtractZip(archivePath string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("unable to open zip archive, %w", err)
	}
	defer zr.Close()

	var added []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !util.IsSupported(f.Name) {
			slog.Debug("skipping non-image zip entry", "name", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			slog.Warn("unable to open zip entry", "name", f.Name, "error", err)
			continue
		}
		dst, err := l.Save(f.Name, rc)
		rc.Close()
		if err != nil {
			slog.Warn("unable to extract zip entry", "name", f.Name, "error", err)
			continue
		}
		added = append(added, dst)
	}
	return added, nil
}

// SaveZip spools a zip stream to a temp file, extracts it and removes the temp file
func (l *Library) SaveZip(r io.Reader) ([]string, error) {
	tmp, err := os.CreateTemp("", "magicframe-*.zip")
	if err != nil {
		return nil, fmt.Errorf("unable to create temp zip, %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("unable to download zip, %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("unable to close temp zip, %w", err)
	}

	return l.ExtractZip(tmp.Name())
}

var filenameRe = regexp.MustCompile(`filename="(.+)"`)

// SingleImageName derives a file name for a single image response: the Content-Disposition
// filename when present, otherwise image_<unix seconds> with an extension guessed from the type.
func SingleImageName(contentDisposition, contentType string, now time.Time) string {
	if m := filenameRe.FindStringSubmatch(contentDisposition); m != nil {
		if name := filepath.Base(m[1]); name != "." && name != "/" {
			return name
		}
	}
	return "image_" + strconv.FormatInt(now.Unix(), 10) + extensionFor(contentType)
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".jpg"
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ".jpg"
	}
	slices.Sort(exts)
	return exts[0]
}

func cleanName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base, nil
}
