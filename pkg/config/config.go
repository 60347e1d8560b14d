// Package config loads hicluster settings from a TOML file.
//
// Every field has a default mirroring the command line defaults, so a file
// only needs the keys it changes:
//
//	resolution = 400000
//	size_threshold = 10
//	chromosomes = ["1", "2", "X"]
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
// Command line flags override file values.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/hicluster/pkg/bpgraph"
	"github.com/matzehuels/hicluster/pkg/contact"
	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/pipeline"
	"github.com/matzehuels/hicluster/pkg/source"
	"github.com/matzehuels/hicluster/pkg/store"
)

// DefaultFile is looked up in the working directory when no file is named.
const DefaultFile = "hicluster.toml"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds every setting of the tool.
type Config struct {
	Resolution    int64         `toml:"resolution" validate:"gt=0"`
	SizeThreshold int           `toml:"size_threshold" validate:"gte=0"`
	MinDistance   int64         `toml:"min_distance" validate:"gte=0"`
	ZeroThreshold float64       `toml:"zero_threshold" validate:"gt=0,lte=1"`
	Workers       int           `toml:"workers" validate:"gte=0"`
	UnitTimeout   time.Duration `toml:"unit_timeout" validate:"gte=0"`
	Chromosomes   []string      `toml:"chromosomes" validate:"dive,required"`

	Cache  CacheConfig  `toml:"cache"`
	Mongo  MongoConfig  `toml:"mongo"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the matrix and unit cache.
type CacheConfig struct {
	Backend string      `toml:"backend" validate:"oneof=file redis none"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the result store. An empty URI disables it.
type MongoConfig struct {
	URI        string `toml:"uri" validate:"omitempty,uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `toml:"addr" validate:"required"`
	RequestTimeout time.Duration `toml:"request_timeout" validate:"gte=0"`
	Metrics        bool          `toml:"metrics"`
}

// Default returns the built-in settings.
func Default() Config {
	chroms := source.DefaultChromosomes()
	for i, c := range chroms {
		chroms[i] = strings.TrimPrefix(c, "chr")
	}
	return Config{
		Resolution:    pipeline.DefaultResolution,
		SizeThreshold: pipeline.DefaultSizeThreshold,
		MinDistance:   bpgraph.DefaultMinDistance,
		ZeroThreshold: contact.DefaultZeroThreshold,
		Chromosomes:   chroms,
		Cache:         CacheConfig{Backend: CacheFile},
		Mongo:         MongoConfig{Database: store.DefaultDatabase},
		Server:        ServerConfig{Addr: ":8080", RequestTimeout: 5 * time.Minute, Metrics: true},
	}
}

// Find returns the config file to load: explicit when set, otherwise
// DefaultFile if it exists, otherwise "".
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, hcerrors.Wrap(hcerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, err
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads TOML from r over the defaults. Unknown keys are an error so
// typos do not pass silently. name is used in messages.
func Decode(r io.Reader, name string) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, hcerrors.Wrap(hcerrors.ErrCodeInvalidConfig, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, hcerrors.New(hcerrors.ErrCodeInvalidConfig, "%s: unknown keys %s", name, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

var validate = validator.New()

// Validate checks field ranges, the cache backend and the chromosome names.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return hcerrors.Wrap(hcerrors.ErrCodeInvalidConfig, formatValidationError(err), "invalid config")
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return hcerrors.New(hcerrors.ErrCodeInvalidConfig, "invalid config: cache.redis.addr is required for the redis backend")
	}
	for _, ch := range c.Chromosomes {
		if err := hcerrors.ValidateChromosomeName(ch); err != nil {
			return err
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", e.Namespace())
	case "oneof":
		return fmt.Errorf("%s: must be one of %s", e.Namespace(), e.Param())
	case "gt", "gte", "lte":
		return fmt.Errorf("%s: out of range (%s %s)", e.Namespace(), e.Tag(), e.Param())
	default:
		return fmt.Errorf("%s: validation failed (%s)", e.Namespace(), e.Tag())
	}
}

// PipelineOptions returns the detection options described by c.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Chromosomes:   c.Chromosomes,
		SizeThreshold: c.SizeThreshold,
		Uncapped:      c.SizeThreshold == 0,
		MinDistance:   c.MinDistance,
		Workers:       c.Workers,
		UnitTimeout:   c.UnitTimeout,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
