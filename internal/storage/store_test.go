package storage

import (
	"context"
	"creatorstats/internal/structures"
	"creatorstats/internal/testutil"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budget struct {
	Count int       `json:"count"`
	Last  time.Time `json:"lastCall"`
	Date  string    `json:"date"`
}

// exerciseStore checks the port contract every backend must honor.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("youtubeConfig", []byte(`{"apiKey":"k"}`)))
	val, ok, err := s.Get("youtubeConfig")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"apiKey":"k"}`, string(val))

	require.NoError(t, s.Set("youtubeConfig", []byte(`{"apiKey":"k2"}`)))
	val, _, _ = s.Get("youtubeConfig")
	assert.Equal(t, `{"apiKey":"k2"}`, string(val), "writes overwrite")

	require.NoError(t, s.Remove("youtubeConfig"))
	_, ok, err = s.Get("youtubeConfig")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Remove("never-set"), "removing an absent key is not an error")
}

func TestMemoryStore_Contract(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	s := NewMemoryStore()
	raw := []byte("abc")
	require.NoError(t, s.Set("k", raw))
	raw[0] = 'x'

	val, _, _ := s.Get("k")
	assert.Equal(t, "abc", string(val))
}

func TestFileStore_Contract(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store.db"), &testutil.MockCompressor{})
	require.NoError(t, err)
	exerciseStore(t, fs)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")
	comp, err := NewZstdCompressor()
	require.NoError(t, err)

	fs, err := NewFileStore(path, comp)
	require.NoError(t, err)
	in := budget{Count: 2, Last: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Date: "2024-03-01"}
	require.NoError(t, Save(fs, "youtubeApiTracking", in))
	require.NoError(t, fs.Close())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	comp2, err := NewZstdCompressor()
	require.NoError(t, err)
	reopened, err := NewFileStore(path, comp2)
	require.NoError(t, err)
	defer reopened.Close()

	var out budget
	ok, err := Load(reopened, "youtubeApiTracking", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Count, out.Count)
	assert.True(t, in.Last.Equal(out.Last))
}

func TestFileStore_FailedWriteRollsBack(t *testing.T) {
	comp := &testutil.MockCompressor{}
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store.db"), comp)
	require.NoError(t, err)
	require.NoError(t, fs.Set("k", []byte("v1")))

	comp.CompressFn = func([]byte) ([]byte, error) { return nil, errors.New("disk full") }
	assert.Error(t, fs.Set("k", []byte("v2")))
	assert.Error(t, fs.Set("other", []byte("x")))

	val, ok, _ := fs.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v1", string(val))
	_, ok, _ = fs.Get("other")
	assert.False(t, ok)
}

func TestFileStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileStore(path, &testutil.MockCompressor{})
	assert.Error(t, err)
}

func TestSQLiteStore_Contract(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "store.sqlite"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.sqlite")
	s, err := NewSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Set("youtube_historical_data", []byte(`{"dailyStats":[]}`)))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	val, ok, err := reopened.Get("youtube_historical_data")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"dailyStats":[]}`, string(val))
}

func TestLoad_InvalidJSON(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set("k", []byte("{")))

	var out budget
	ok, err := Load(s, "k", &out)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestNewStoreProvider_Drivers(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		driver string
		path   string
	}{
		{"memory", ""},
		{"file", filepath.Join(dir, "store.db")},
		{"sqlite", filepath.Join(dir, "store.sqlite")},
	}
	for _, tc := range cases {
		t.Run(tc.driver, func(t *testing.T) {
			conf := &structures.Config{Storage: structures.StorageConfig{Driver: tc.driver, Path: tc.path}}
			metrics := testutil.NewMockMetrics()
			s, cleanup, err := NewStoreProvider(conf, &testutil.MockLogger{}, metrics)
			require.NoError(t, err)
			defer cleanup()

			require.NoError(t, s.Set("k", []byte("v")))
			val, ok, err := s.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", string(val))
		})
	}
}

func TestNewStoreProvider_UnknownDriver(t *testing.T) {
	conf := &structures.Config{Storage: structures.StorageConfig{Driver: "redis"}}
	_, _, err := NewStoreProvider(conf, &testutil.MockLogger{}, testutil.NewMockMetrics())
	assert.Error(t, err)
}
