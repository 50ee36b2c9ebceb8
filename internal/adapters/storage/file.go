package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

const fileExt = ".json"

// File stores one JSON document per key under a directory. Writes go through
// a temp file and rename so readers never see a partial document.
type File struct {
	dir      string
	logger   *logger.Logger
	debounce time.Duration

	mu          sync.Mutex
	lastWritten map[string][sha256.Size]byte
}

// NewFile creates the directory if needed
func NewFile(dir string, log *logger.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &File{
		dir:         dir,
		logger:      log.WithComponent("file-storage"),
		debounce:    200 * time.Millisecond,
		lastWritten: make(map[string][sha256.Size]byte),
	}, nil
}

// SetDebounce changes how long Watch waits for a burst of events to settle
func (f *File) SetDebounce(d time.Duration) {
	f.debounce = d
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.dir, key+fileExt), nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	f.mu.Lock()
	f.lastWritten[key] = sha256.Sum256(value)
	f.mu.Unlock()

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Watch reports keys whose files were changed by another process. Events
// are debounced per key and writes made through this File are ignored.
func (f *File) Watch(ctx context.Context, onChange func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(f.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", f.dir, err)
	}
	f.logger.Infow("Watching data directory", "dir", f.dir)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(f.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if key, ok := keyFromPath(event.Name); ok {
				pending[key] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warnw("File watcher error", "error", err)

		case <-ticker.C:
			for key, at := range pending {
				if time.Since(at) < f.debounce {
					continue
				}
				delete(pending, key)
				if f.isOwnWrite(key) {
					continue
				}
				f.logger.Debugw("External change detected", "key", key)
				onChange(key)
			}
		}
	}
}

func (f *File) isOwnWrite(key string) bool {
	path, err := f.path(key)
	if err != nil {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.lastWritten[key]
	return ok && last == sha256.Sum256(data)
}

func keyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(name, fileExt), true
}
