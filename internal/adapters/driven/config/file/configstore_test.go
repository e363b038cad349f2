package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv() []string { return nil }

func newTestStore(t *testing.T, dir string, env ...string) *ConfigStore {
	t.Helper()
	store, err := newConfigStore(dir, func() []string { return env })
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndTypedGetters(t *testing.T) {
	store := newTestStore(t, t.TempDir())

	require.NoError(t, store.Set("vector.collection", "solar_ppa_collection"))
	require.NoError(t, store.Set("index.batch_size", 20))
	require.NoError(t, store.Set("llm.temperature", 0.1))
	require.NoError(t, store.Set("metrics.enabled", true))
	require.NoError(t, store.Set("ingest.extensions", []string{".pdf"}))

	assert.Equal(t, "solar_ppa_collection", store.GetString("vector.collection"))
	assert.Equal(t, 20, store.GetInt("index.batch_size"))
	assert.InDelta(t, 0.1, store.GetFloat("llm.temperature"), 1e-12)
	assert.True(t, store.GetBool("metrics.enabled"))
	assert.Equal(t, []string{".pdf"}, store.GetStringSlice("ingest.extensions"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store := newTestStore(t, tmpDir)

	require.NoError(t, store.Set("embedding.model", "bge-m3"))
	require.NoError(t, store.Set("embedding.dimensions", 1024))
	require.NoError(t, store.Set("chat.top_k", 5))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.Contains(t, string(raw), "bge-m3")

	reloaded := newTestStore(t, tmpDir)
	assert.Equal(t, "bge-m3", reloaded.GetString("embedding.model"))
	assert.Equal(t, 1024, reloaded.GetInt("embedding.dimensions"))
	assert.Equal(t, 5, reloaded.GetInt("chat.top_k"))
}

func TestConfigStore_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	store := newTestStore(t, tmpDir)
	require.NoError(t, store.Set("index.batch_size", 20))

	overridden := newTestStore(t, tmpDir,
		"LEXRAG_INDEX_BATCH_SIZE=8",
		"LEXRAG_LLM_TEMPERATURE=0.3",
		"LEXRAG_NOSECTION=1",
		"UNRELATED=1",
	)

	assert.Equal(t, 8, overridden.GetInt("index.batch_size"))
	assert.InDelta(t, 0.3, overridden.GetFloat("llm.temperature"), 1e-12)
	_, ok := overridden.Get("nosection")
	assert.False(t, ok)

	require.NoError(t, overridden.Set("chat.top_k", 4))
	plain := newTestStore(t, tmpDir)
	assert.Equal(t, 20, plain.GetInt("index.batch_size"), "overrides are never written back")
	assert.Equal(t, 4, plain.GetInt("chat.top_k"))
}

func TestConfigStore_Keys(t *testing.T) {
	store := newTestStore(t, t.TempDir(), "LEXRAG_CHAT_TOP_K=3")
	require.NoError(t, store.Set("vector.backend", "sqlite"))
	require.NoError(t, store.Set("chat.top_k", 5))

	assert.Equal(t, []string{"chat.top_k", "vector.backend"}, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t, t.TempDir())

	require.NoError(t, store.Set("test.key", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store := newTestStore(t, tmpDir)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "k.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := newConfigStore("/dev/null/cannot/create/dirs", noEnv)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create config directory")
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := newConfigStore(tmpDir, noEnv)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	require.NoError(t, store.Set("test.key", "value"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err := store.Set("another.key", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write config")
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newTestStore(t, t.TempDir())

	err := store.Set("bad.channel", make(chan int))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	got := envOverrides([]string{
		"LEXRAG_PATHS_SOURCE_DIR=/contracts",
		"LEXRAG_LLM_API_KEY=gsk",
		"LEXRAG_=x",
		"LEXRAG_FOO=bar",
		"HOME=/root",
		"garbage",
	})
	assert.Equal(t, map[string]any{
		"paths.source_dir": "/contracts",
		"llm.api_key":      "gsk",
	}, got)
}

func TestNestAndFlatten(t *testing.T) {
	flat := map[string]any{
		"a.b":   int64(1),
		"a.c.d": "x",
		"e":     true,
	}
	nested := nestMap(flat)
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": int64(1),
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}, nested)
	assert.Equal(t, flat, flattenMap(nested, ""))
}

func TestNestMap_LeafAndTableConflict(t *testing.T) {
	nested := nestMap(map[string]any{"a": 1, "a.b": 2})
	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["a.b"])
}
