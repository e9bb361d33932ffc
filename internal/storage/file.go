package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	json "github.com/goccy/go-json"
)

const fileFormatVersion = 1

type fileDocument struct {
	Version int               `json:"version"`
	Entries map[string][]byte `json:"entries"`
}

// FileStore keeps the whole key space in memory and rewrites one compressed
// file on every mutation, so a crash never leaves a half-written document behind.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	data       map[string][]byte
	compressor CompressorInterface
}

func NewFileStore(path string, compressor CompressorInterface) (*FileStore, error) {
	fs := &FileStore{
		path:       path,
		data:       make(map[string][]byte),
		compressor: compressor,
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := fs.compressor.Decompress(raw)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", fs.path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(decompressed, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", fs.path, err)
	}
	if doc.Version > fileFormatVersion {
		return fmt.Errorf("store file %s has unsupported version %d", fs.path, doc.Version)
	}
	if doc.Entries != nil {
		fs.data = doc.Entries
	}
	return nil
}

func (fs *FileStore) Get(key string) ([]byte, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	val, ok := fs.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(val), true, nil
}

func (fs *FileStore) Set(key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, had := fs.data[key]
	fs.data[key] = slices.Clone(value)
	if err := fs.flush(); err != nil {
		if had {
			fs.data[key] = prev
		} else {
			delete(fs.data, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, had := fs.data[key]
	if !had {
		return nil
	}
	delete(fs.data, key)
	if err := fs.flush(); err != nil {
		fs.data[key] = prev
		return err
	}
	return nil
}

// flush must be called with mu held.
func (fs *FileStore) flush() error {
	jsonData, err := json.Marshal(fileDocument{Version: fileFormatVersion, Entries: fs.data})
	if err != nil {
		return err
	}
	data, err := fs.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fs.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fs.path)
}

func (fs *FileStore) Close() error {
	fs.compressor.Close()
	return nil
}
