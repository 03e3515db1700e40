package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// FileStore keeps every key in a single JSON document on disk, so state
// survives restarts of the process that owns the file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

const filePerm = 0o600

var _ Backend = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.read()
	if err != nil {
		return "", err
	}

	v, ok := d[key]
	if !ok {
		return "", ErrNotFound
	}

	return v, nil
}

func (f *FileStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.read()
	if err != nil {
		return err
	}

	d[key] = value

	return f.write(d)
}

func (f *FileStore) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.read()
	if err != nil {
		return err
	}

	if _, ok := d[key]; !ok {
		return nil
	}

	delete(d, key)

	return f.write(d)
}

func (f *FileStore) Ping(context.Context) error {
	return errors.Wrap(os.MkdirAll(filepath.Dir(f.path), 0o700), "file store directory")
}

func (f *FileStore) read() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}

	if err != nil {
		return nil, errors.Wrapf(err, "read %s", f.path)
	}

	d := make(map[string]string)
	if len(b) == 0 {
		return d, nil
	}

	if err := json.Unmarshal(b, &d); err != nil {
		return nil, errors.Wrapf(err, "decode %s", f.path)
	}

	return d, nil
}

// write replaces the document via rename so readers never observe a partial file.
func (f *FileStore) write(d map[string]string) error {
	b, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "chmod temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}

	return errors.Wrapf(os.Rename(tmp.Name(), f.path), "replace %s", f.path)
}
