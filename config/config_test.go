package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.NBest)
	assert.Equal(t, SourceLocal, cfg.Dictionary.Source)
	assert.True(t, cfg.Dictionary.Verify)
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"kk.toml": `
nbest = 5
need_typo_correction = true

[log]
level = "debug"

[dictionary]
source = "minio"
bucket = "dicts"
endpoint = "localhost:9000"

[costs]
matrix = "matrix.bin"
`,
		"kk.yaml": `
nbest: 5
need_typo_correction: true
log:
  level: debug
dictionary:
  source: minio
  bucket: dicts
  endpoint: localhost:9000
costs:
  matrix: matrix.bin
`,
		"kk.json": `{"nbest": 5, "need_typo_correction": true, "log": {"level": "debug"},
 "dictionary": {"source": "minio", "bucket": "dicts", "endpoint": "localhost:9000"},
 "costs": {"matrix": "matrix.bin"}}`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 5, cfg.NBest)
			assert.True(t, cfg.NeedTypoCorrection)
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, "text", cfg.Log.Format)
			assert.Equal(t, SourceMinIO, cfg.Dictionary.Source)
			assert.Equal(t, "dicts", cfg.Dictionary.Bucket)
			assert.Equal(t, "matrix.bin", cfg.Costs.Matrix)
			assert.Equal(t, int64(64<<20), cfg.Dictionary.CacheBytes)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("KANAKANJI_NBEST", "3")
	t.Setenv("KANAKANJI_LOG_FORMAT", "JSON")
	t.Setenv("KANAKANJI_DICTIONARY_SOURCE", "S3")
	t.Setenv("KANAKANJI_DICTIONARY_BUCKET", "dicts")
	t.Setenv("KANAKANJI_DICTIONARY_CACHE_BYTES", "1024")
	t.Setenv("KANAKANJI_DICTIONARY_VERIFY", "false")
	t.Setenv("KANAKANJI_MAX_WORD_LENGTH", "many")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 3, cfg.NBest)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, SourceS3, cfg.Dictionary.Source)
	assert.Equal(t, "dicts", cfg.Dictionary.Bucket)
	assert.Equal(t, int64(1024), cfg.Dictionary.CacheBytes)
	assert.False(t, cfg.Dictionary.Verify)
	assert.Equal(t, 0, cfg.MaxWordLength)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NBest = 0
	cfg.Log.Level = "loud"
	cfg.Dictionary.Source = SourceMinIO

	err := cfg.Validate()
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"nbest", "log.level", "dictionary.bucket", "dictionary.endpoint"}, fields)
}

func TestSave_RoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "kk"+ext)
			cfg := DefaultConfig()
			cfg.NBest = 7
			cfg.UserDict.Path = "user.db"
			require.NoError(t, Save(cfg, path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

// replace swaps the file atomically so a reload never sees it half written.
func replace(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestLoader_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kk.toml")
	require.NoError(t, os.WriteFile(path, []byte("nbest = 4\n"), 0o644))

	l := NewLoader(path)
	l.debounce = 10 * time.Millisecond
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.NBest)

	changed := make(chan *Config, 1)
	l.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	require.NoError(t, l.Watch())
	defer l.Close()

	replace(t, path, "nbest = 9\n")
	select {
	case c := <-changed:
		assert.Equal(t, 9, c.NBest)
		assert.Equal(t, 9, l.Config().NBest)
	case err := <-l.Errors():
		t.Fatalf("reload failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}

func TestLoader_InvalidReloadKeepsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kk.toml")
	require.NoError(t, os.WriteFile(path, []byte("nbest = 4\n"), 0o644))

	l := NewLoader(path)
	l.debounce = 10 * time.Millisecond
	_, err := l.Load()
	require.NoError(t, err)
	require.NoError(t, l.Watch())
	defer l.Close()

	replace(t, path, "nbest = 0\n")
	select {
	case err := <-l.Errors():
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload error")
	}
	assert.Equal(t, 4, l.Config().NBest)
}

func TestLoader_ReloadNotifiesAllCallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kk.toml")
	require.NoError(t, os.WriteFile(path, []byte("nbest = 4\n"), 0o644))

	l := NewLoader(path)
	defer l.Close()
	_, err := l.Load()
	require.NoError(t, err)

	var got []int
	l.OnChange(func(c *Config) { got = append(got, c.NBest) })
	l.OnChange(func(c *Config) { got = append(got, c.NBest*10) })

	require.NoError(t, os.WriteFile(path, []byte("nbest = 6\n"), 0o644))
	l.reload()

	assert.Equal(t, []int{6, 60}, got)
	assert.Equal(t, 6, l.Config().NBest)
}
