// Package filestore persists a kvstore.Store as a single JSON object on
// disk, the on-disk counterpart of a browser profile's localStorage.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-bidagri-client/kvstore"
	"github.com/rs/zerolog/log"
)

var _ kvstore.Store = (*FileStore)(nil)

// FileStore keeps every value in memory and rewrites the whole file on each
// mutation. Writes go to a temporary file that is renamed into place, so a
// reader never sees a half-written file.
type FileStore struct {
	path   string
	values map[string]string
	lock   sync.RWMutex
}

// Open loads the store at path, creating the parent directory with mode
// 0700. A missing file is an empty store. An unparsable file is logged and
// treated as empty; it is overwritten by the next mutation.
func Open(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", filepath.Dir(path), err)
	}

	fs := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("reading store %s: %w", path, err)
	}

	if len(data) == 0 {
		return fs, nil
	}

	if err := json.Unmarshal(data, &fs.values); err != nil {
		log.Err(err).Str("path", path).Msg("Store file corrupt, starting empty")
		fs.values = make(map[string]string)
	}
	return fs, nil
}

// Path returns the file backing the store.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Get(key string) (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	v, ok := fs.values[key]
	return v, ok
}

func (fs *FileStore) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	previous, existed := fs.values[key]
	fs.values[key] = value
	if err := fs.flush(); err != nil {
		if existed {
			fs.values[key] = previous
		} else {
			delete(fs.values, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) Remove(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	previous, existed := fs.values[key]
	if !existed {
		return nil
	}
	delete(fs.values, key)
	if err := fs.flush(); err != nil {
		fs.values[key] = previous
		return err
	}
	return nil
}

func (fs *FileStore) Keys() []string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	keys := make([]string, 0, len(fs.values))
	for k := range fs.values {
		keys = append(keys, k)
	}
	return keys
}

// flush must be called with the write lock held.
func (fs *FileStore) flush() error {
	data, err := json.MarshalIndent(fs.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}
	data = append(data, '\n')

	tmp := fmt.Sprintf("%s.%s.tmp", fs.path, uuid.New().String())
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing store %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing store %s: %w", fs.path, err)
	}
	return nil
}
