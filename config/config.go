// Package config handles configuration loading and validation for kanakanji.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Dictionary sources.
const (
	SourceLocal  = "local"
	SourceMemory = "memory"
	SourceS3     = "s3"
	SourceMinIO  = "minio"
)

// Config is the engine configuration.
type Config struct {
	// NBest is the number of paths kept per lattice node.
	NBest int `toml:"nbest" json:"nbest" yaml:"nbest"`
	// NeedTypoCorrection asks the cost provider for typo-corrected lookups.
	NeedTypoCorrection bool `toml:"need_typo_correction" json:"need_typo_correction" yaml:"need_typo_correction"`
	// MaxWordLength limits words to this many characters. Zero means no limit.
	MaxWordLength int `toml:"max_word_length" json:"max_word_length" yaml:"max_word_length"`

	Log        LogConfig        `toml:"log" json:"log" yaml:"log"`
	Dictionary DictionaryConfig `toml:"dictionary" json:"dictionary" yaml:"dictionary"`
	Costs      CostsConfig      `toml:"costs" json:"costs" yaml:"costs"`
	UserDict   UserDictConfig   `toml:"userdict" json:"userdict" yaml:"userdict"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level" yaml:"level"`
	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`
}

// DictionaryConfig locates the published dictionary.
type DictionaryConfig struct {
	// Source is local, memory, s3 or minio.
	Source string `toml:"source" json:"source" yaml:"source"`
	// Path is the local root directory.
	Path     string `toml:"path" json:"path" yaml:"path"`
	Bucket   string `toml:"bucket" json:"bucket" yaml:"bucket"`
	Prefix   string `toml:"prefix" json:"prefix" yaml:"prefix"`
	Endpoint string `toml:"endpoint" json:"endpoint" yaml:"endpoint"`
	Region   string `toml:"region" json:"region" yaml:"region"`
	// CommitTable is the DynamoDB table holding the CURRENT pointer on S3.
	CommitTable string `toml:"commit_table" json:"commit_table" yaml:"commit_table"`
	AccessKey   string `toml:"access_key" json:"access_key" yaml:"access_key"`
	SecretKey   string `toml:"secret_key" json:"secret_key" yaml:"secret_key"`
	UseSSL      bool   `toml:"use_ssl" json:"use_ssl" yaml:"use_ssl"`
	// CacheBytes is the shard cache budget. Zero disables the cache.
	CacheBytes int64 `toml:"cache_bytes" json:"cache_bytes" yaml:"cache_bytes"`
	// IOBytesPerSec limits remote shard fetches. Zero means unlimited.
	IOBytesPerSec int64 `toml:"io_bytes_per_sec" json:"io_bytes_per_sec" yaml:"io_bytes_per_sec"`
	// Verify checks artifact checksums on load.
	Verify bool `toml:"verify" json:"verify" yaml:"verify"`
}

// CostsConfig locates the scoring tables. Empty paths score zero.
type CostsConfig struct {
	Matrix   string `toml:"matrix" json:"matrix" yaml:"matrix"`
	Semantic string `toml:"semantic" json:"semantic" yaml:"semantic"`
	Clause   string `toml:"clause" json:"clause" yaml:"clause"`
}

// UserDictConfig locates the user dictionary. An empty path disables it.
type UserDictConfig struct {
	Path string `toml:"path" json:"path" yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		NBest: 10,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Dictionary: DictionaryConfig{
			Source:     SourceLocal,
			Path:       "dict",
			CacheBytes: 64 << 20,
			Verify:     true,
		},
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// ApplyEnvOverrides overrides fields from KANAKANJI_* environment variables.
// Malformed numbers and booleans are ignored and left to Validate.
func (c *Config) ApplyEnvOverrides() {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, err := strconv.Atoi(os.Getenv(name)); err == nil {
			*dst = v
		}
	}
	num64 := func(name string, dst *int64) {
		if v, err := strconv.ParseInt(os.Getenv(name), 10, 64); err == nil {
			*dst = v
		}
	}
	flag := func(name string, dst *bool) {
		if v, err := strconv.ParseBool(os.Getenv(name)); err == nil {
			*dst = v
		}
	}

	num("KANAKANJI_NBEST", &c.NBest)
	flag("KANAKANJI_NEED_TYPO_CORRECTION", &c.NeedTypoCorrection)
	num("KANAKANJI_MAX_WORD_LENGTH", &c.MaxWordLength)

	str("KANAKANJI_LOG_LEVEL", &c.Log.Level)
	str("KANAKANJI_LOG_FORMAT", &c.Log.Format)

	str("KANAKANJI_DICTIONARY_SOURCE", &c.Dictionary.Source)
	str("KANAKANJI_DICTIONARY_PATH", &c.Dictionary.Path)
	str("KANAKANJI_DICTIONARY_BUCKET", &c.Dictionary.Bucket)
	str("KANAKANJI_DICTIONARY_PREFIX", &c.Dictionary.Prefix)
	str("KANAKANJI_DICTIONARY_ENDPOINT", &c.Dictionary.Endpoint)
	str("KANAKANJI_DICTIONARY_REGION", &c.Dictionary.Region)
	str("KANAKANJI_DICTIONARY_COMMIT_TABLE", &c.Dictionary.CommitTable)
	str("KANAKANJI_DICTIONARY_ACCESS_KEY", &c.Dictionary.AccessKey)
	str("KANAKANJI_DICTIONARY_SECRET_KEY", &c.Dictionary.SecretKey)
	flag("KANAKANJI_DICTIONARY_USE_SSL", &c.Dictionary.UseSSL)
	num64("KANAKANJI_DICTIONARY_CACHE_BYTES", &c.Dictionary.CacheBytes)
	num64("KANAKANJI_DICTIONARY_IO_BYTES_PER_SEC", &c.Dictionary.IOBytesPerSec)
	flag("KANAKANJI_DICTIONARY_VERIFY", &c.Dictionary.Verify)

	str("KANAKANJI_COSTS_MATRIX", &c.Costs.Matrix)
	str("KANAKANJI_COSTS_SEMANTIC", &c.Costs.Semantic)
	str("KANAKANJI_COSTS_CLAUSE", &c.Costs.Clause)

	str("KANAKANJI_USERDICT_PATH", &c.UserDict.Path)

	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Dictionary.Source = strings.ToLower(c.Dictionary.Source)
}
