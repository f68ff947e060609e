// Package config loads and writes the sineshade TOML configuration file.
//
// The file has four sections:
//
//	[shading]   transform parameters (lines, width, height, sample_freq, ...)
//	[output]    rendering options (formats, precision, stroke_width, ...)
//	[cache]     artifact cache backend and its connection settings
//	[server]    HTTP API settings
//
// Every key is optional; missing keys keep the values from [Default].
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sineshade/pkg/cache"
	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/pipeline"
	"github.com/matzehuels/sineshade/pkg/sinusoid"
)

const (
	appName  = "sineshade"
	fileName = "config.toml"
)

// Server defaults.
const (
	DefaultAddr        = ":8080"
	DefaultMaxUploadMB = 16
)

// DefaultCacheTTL is the artifact lifetime written by [Default].
var DefaultCacheTTL = cache.ArtifactTTL.String()

// Config is the decoded configuration file.
type Config struct {
	Shading sinusoid.Config `toml:"shading"`
	Output  Output          `toml:"output"`
	Cache   Cache           `toml:"cache"`
	Server  Server          `toml:"server"`
}

// Output holds rendering options shared by the CLI and the server.
type Output struct {
	Formats        []string `toml:"formats"`
	Precision      int      `toml:"precision"`
	StrokeWidth    float64  `toml:"stroke_width"`
	Scale          float64  `toml:"scale"`
	MaxDimension   int      `toml:"max_dimension"`
	XMLDeclaration bool     `toml:"xml_declaration"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir,omitempty"`
	RedisURL        string `toml:"redis_url,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
	TTL             string `toml:"ttl"`

	// Prefix namespaces every key, so deployments can share one redis or
	// mongo backend.
	Prefix string `toml:"prefix,omitempty"`
}

// Server configures `sineshade serve`.
type Server struct {
	Addr        string `toml:"addr"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Shading: sinusoid.DefaultConfig(),
		Output: Output{
			Formats:      []string{pipeline.DefaultFormat},
			Precision:    pipeline.DefaultPrecision,
			StrokeWidth:  pipeline.DefaultStrokeWidth,
			Scale:        pipeline.DefaultScale,
			MaxDimension: pipeline.DefaultMaxDimension,
		},
		Cache: Cache{
			Backend:         cache.BackendFile,
			MongoDatabase:   cache.DefaultMongoDatabase,
			MongoCollection: cache.DefaultMongoCollection,
			TTL:             DefaultCacheTTL,
		},
		Server: Server{
			Addr:        DefaultAddr,
			MaxUploadMB: DefaultMaxUploadMB,
		},
	}
}

// Dir returns the configuration directory using the XDG standard
// (~/.config/sineshade/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the path of the configuration file in [Dir].
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads path on top of [Default] and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault is like [Load] but returns [Default] when path does not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Write encodes cfg as TOML to path, creating parent directories.
func Write(path string, cfg Config) error {
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create config directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	return nil
}

// Encode returns cfg as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Shading.Validate(); err != nil {
		return err
	}
	opts := c.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if !slices.Contains([]string{"", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone}, c.Cache.Backend) {
		return errors.Invalid("cache.backend", "must be one of file, redis, mongo, none, got %q", c.Cache.Backend)
	}
	if _, err := c.Cache.ArtifactTTL(); err != nil {
		return err
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.Invalid("server.max_upload_mb", "must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// PipelineOptions converts the shading and output sections.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		Shading:        c.Shading,
		Formats:        slices.Clone(c.Output.Formats),
		StrokeWidth:    c.Output.StrokeWidth,
		Scale:          c.Output.Scale,
		MaxDimension:   c.Output.MaxDimension,
		XMLDeclaration: c.Output.XMLDeclaration,
	}
	opts.SetPrecision(c.Output.Precision)
	return opts
}

// CacheOptions converts the cache section. defaultDir is used when the file
// backend has no directory configured.
func (c Config) CacheOptions(defaultDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             dir,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// Keyer returns the cache keyer, scoped by Prefix when it is set.
func (c Cache) Keyer() cache.Keyer {
	if c.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Prefix)
}

// ArtifactTTL parses the ttl value. An empty value means cache.ArtifactTTL.
func (c Cache) ArtifactTTL() (time.Duration, error) {
	if c.TTL == "" {
		return cache.ArtifactTTL, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, errors.Invalid("cache.ttl", "%v", err)
	}
	if d <= 0 {
		return 0, errors.Invalid("cache.ttl", "must be positive, got %s", c.TTL)
	}
	return d, nil
}

// MaxUploadBytes returns the server request body limit in bytes.
func (s Server) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}
