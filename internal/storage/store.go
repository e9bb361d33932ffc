// Package storage is the key-value port every service keeps its durable state in.
// Keys are independent records: there are no transactions spanning keys, and
// concurrent writers to one key follow last-write-wins.
package storage

import (
	"fmt"

	json "github.com/goccy/go-json"
)

type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// Load decodes the JSON value under key into dst. It reports false when the key is absent.
func Load(s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func Save(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, raw)
}
