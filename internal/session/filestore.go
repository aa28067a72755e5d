package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var errBadKey = errors.New("key is not a relative path under the store root")

// fileStore keeps one file per key under root. The identity record names the
// signed-in user, so files are private to the owner.
type fileStore struct {
	root string
}

func NewFileStore(root string) Store {
	return &fileStore{root: root}
}

func (s *fileStore) Load(_ context.Context, keys ...string) ([]Entry, error) {
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		p, err := s.resolve(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
		data, err := os.ReadFile(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		case err != nil:
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		out = append(out, Entry{Key: key, Value: data})
	}
	return out, nil
}

func (s *fileStore) Save(_ context.Context, entries ...Entry) error {
	for _, e := range entries {
		p, err := s.resolve(e.Key)
		if err == nil {
			err = replaceFile(p, e.Value)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, e.Key, err)
		}
	}
	return nil
}

func (s *fileStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		p, err := s.resolve(key)
		if err != nil {
			return fmt.Errorf("session: delete %s: %w", key, err)
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("session: delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *fileStore) resolve(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", errBadKey, key)
	}
	return filepath.Join(s.root, rel), nil
}

// replaceFile writes data next to path, syncs it and renames it over path, so
// a reader sees either the old record or the new one.
func replaceFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
