package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/aouyang1/magicframe/library"
	"github.com/aouyang1/magicframe/store"
)

// LocalRegistry is the registry view the local manager reconciles against
type LocalRegistry interface {
	RegisterPhotoIfNotExists(name string, origin store.Origin, addedAt time.Time) error
	GetAllPhotos() ([]store.Photo, error)
	DeletePhoto(name string) error
}

// LocalManager keeps the registry in step with the image directory. Images copied in by hand are
// registered as local, entries whose file has gone are dropped.
type LocalManager struct {
	library  *library.Library
	registry LocalRegistry
}

func NewLocalManager(lib *library.Library, registry LocalRegistry) *LocalManager {
	return &LocalManager{library: lib, registry: registry}
}

type fileInfo struct {
	name    string
	modTime time.Time
}

func (l *LocalManager) getCurrentFiles() (mapset.Set[string], map[string]fileInfo, error) {
	paths, err := l.library.List()
	if err != nil {
		return nil, nil, err
	}

	currentFiles := mapset.NewSet[string]()
	infos := make(map[string]fileInfo, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		currentFiles.Add(name)

		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		infos[name] = fileInfo{name: name, modTime: info.ModTime()}
	}
	return currentFiles, infos, nil
}

// Reconcile registers untracked images and deregisters missing ones, returning how many of each
func (l *LocalManager) Reconcile() (int, int, error) {
	currentFiles, infos, err := l.getCurrentFiles()
	if err != nil {
		return 0, 0, fmt.Errorf("error reading image directory: %w", err)
	}

	registeredPhotos, err := l.registry.GetAllPhotos()
	if err != nil {
		return 0, 0, err
	}
	registeredNames := mapset.NewSet[string]()
	for _, photo := range registeredPhotos {
		registeredNames.Add(photo.PhotoName)
	}

	toRegister := currentFiles.Difference(registeredNames).ToSlice()
	sort.Strings(toRegister)
	var registered int
	for _, name := range toRegister {
		addedAt := time.Now()
		if info, ok := infos[name]; ok {
			addedAt = info.modTime
		}
		if err := l.registry.RegisterPhotoIfNotExists(name, store.OriginLocal, addedAt); err != nil {
			slog.Warn("error while registering local photo", "name", name, "error", err)
			continue
		}
		registered++
	}

	toDeregister := registeredNames.Difference(currentFiles).ToSlice()
	sort.Strings(toDeregister)
	var removed int
	if len(toDeregister) > 0 {
		slog.Info("deregistering photos not present locally", "count", len(toDeregister), "names", toDeregister)
	}
	for _, name := range toDeregister {
		if err := l.registry.DeletePhoto(name); err != nil {
			slog.Warn("error while deregistering photo", "name", name, "error", err)
			continue
		}
		removed++
	}

	return registered, removed, nil
}
