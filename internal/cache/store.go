package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// Store reads and writes cache files. A cache file is valid until deleted;
// there is no TTL or staleness check.
type Store struct {
	dirPerm  fs.FileMode
	filePerm fs.FileMode
}

// Info describes a cache file on disk.
type Info struct {
	Path    string    `json:"path"`
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time,omitempty"`
	Rows    int       `json:"rows"`
}

// NewStore creates a Store with default permissions.
func NewStore() *Store {
	return &Store{dirPerm: 0o755, filePerm: 0o644}
}

// Exists reports whether a regular file is present at path.
func (s *Store) Exists(path string) (bool, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "cache: stat %s", path)
	}
	if fi.IsDir() {
		return false, eris.Errorf("cache: %s is a directory", path)
	}
	return true, nil
}

// Read deserializes the cache file at path. Parse failures are reported as
// *model.CacheCorruptError.
func (s *Store) Read(path string, hasHeader bool) (model.RowSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cache: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rows, err := Decode(f, hasHeader)
	if err != nil {
		corrupt := &model.CacheCorruptError{Path: path, Err: err}
		var le *lineError
		if errors.As(err, &le) {
			corrupt.Line = le.line
			corrupt.Err = le.err
		}
		return nil, corrupt
	}

	zap.L().Debug("cache: read", zap.String("path", path), zap.Int("rows", len(rows)))
	return rows, nil
}

// Write persists rows to path. Parent directories are created as needed and
// the file is replaced atomically via a temp file and rename.
func (s *Store) Write(path string, rows model.RowSet, hasHeader bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.dirPerm); err != nil {
		return eris.Wrapf(err, "cache: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "cache: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := Encode(tmp, rows, hasHeader); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "cache: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "cache: close temp file")
	}
	if err := os.Chmod(tmpName, s.filePerm); err != nil {
		return eris.Wrap(err, "cache: chmod temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "cache: rename into %s", path)
	}

	zap.L().Info("cache: wrote", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

// Remove deletes the cache file. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return eris.Wrapf(err, "cache: remove %s", path)
	}
	return nil
}

// Stat describes the cache file, parsing it to count rows.
func (s *Store) Stat(path string, hasHeader bool) (Info, error) {
	info := Info{Path: path}
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, eris.Wrapf(err, "cache: stat %s", path)
	}
	info.Exists = true
	info.Size = fi.Size()
	info.ModTime = fi.ModTime()

	rows, err := s.Read(path, hasHeader)
	if err != nil {
		return info, err
	}
	info.Rows = len(rows)
	return info, nil
}
