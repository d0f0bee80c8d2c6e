package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/prianik/storefront/pkg/logger"
)

// File persists the cart record as one JSON file on local disk.
type File struct {
	path   string
	logger *logger.Logger
}

func NewFile(path string, logg *logger.Logger) *File {
	return &File{path: path, logger: logg}
}

func (f *File) Load(ctx context.Context) ([]byte, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.warn(ctx, "cart slot unreadable, starting empty", err)
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (f *File) Save(ctx context.Context, record []byte) {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			f.warn(ctx, "cart slot directory not writable, save skipped", err)
			return
		}
	}
	if err := os.WriteFile(f.path, record, 0o600); err != nil {
		f.warn(ctx, "cart slot not writable, save skipped", err)
	}
}

func (f *File) Available() bool { return true }

func (f *File) warn(ctx context.Context, msg string, err error) {
	if f.logger == nil {
		return
	}
	f.logger.Warn(f.logger.WithField(ctx, "error", err.Error()), msg)
}
