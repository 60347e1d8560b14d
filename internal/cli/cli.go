// Package cli implements the hicluster command-line interface.
//
// # Commands
//
//   - detect: find breakpoint clusters for every sample and chromosome
//   - normalize: dump the normalized contact matrix of one chromosome
//   - score: look up normalized scores of breakpoint pairs
//   - graph: render the breakpoint graph of one sample and chromosome
//   - serve: expose a loaded dataset over HTTP
//   - convert: convert reports between CSV, JSON and YAML
//   - config: show or initialize the config file
//   - cache: manage the matrix and cluster cache
//
// Every command reads settings from hicluster.toml (or --config) and lets
// flags override them. --verbose switches logging to debug level; loggers
// travel to library code through the options structs.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hicluster/pkg/buildinfo"
	"github.com/matzehuels/hicluster/pkg/cache"
	"github.com/matzehuels/hicluster/pkg/config"
	"github.com/matzehuels/hicluster/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "hicluster"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "hicluster finds clustered SV breakpoints in Hi-C contact space",
		Long: `hicluster detects clusters of structural-variant breakpoints that lie
unusually close together in 3-D contact space. It normalizes Hi-C contact
matrices, joins breakpoints with strong contact evidence and extracts the
densest breakpoint cluster of every sample and chromosome.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")

	root.AddCommand(c.detectCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := config.Find(c.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Backends
// =============================================================================

// newCache opens the configured cache backend, or a NullCache when noCache
// is set. Lookups are reported to the cache hooks.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.cfg.Cache.Redis.Addr,
			Password: c.cfg.Cache.Redis.Password,
			DB:       c.cfg.Cache.Redis.DB,
			Prefix:   c.cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return cache.Instrument(rc), nil
	}

	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Instrument(fc), nil
}

// newStore connects to MongoDB when a URI is configured. It returns nil
// otherwise.
func (c *CLI) newStore(ctx context.Context, uri string) (store.Store, error) {
	if uri == "" {
		uri = c.cfg.Mongo.URI
	}
	if uri == "" {
		return nil, nil
	}
	s, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:        uri,
		Database:   c.cfg.Mongo.Database,
		Collection: c.cfg.Mongo.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}
	return s, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/hicluster/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
