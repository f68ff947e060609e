// Package cli implements the sineshade command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sineshade/pkg/buildinfo"
	"github.com/matzehuels/sineshade/pkg/cache"
	"github.com/matzehuels/sineshade/pkg/config"
	"github.com/matzehuels/sineshade/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sineshade"

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

	// status receives transient terminal output such as the spinner.
	status io.Writer

	// stdout receives artifacts rendered to "-".
	stdout io.Writer

	// configPath is set by --config; empty selects config.DefaultPath.
	configPath string

	// cfg is loaded before any subcommand runs.
	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		status: w,
		stdout: os.Stdout,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerDebugHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Sineshade turns images into sinusoid line art",
		Long: `Sineshade draws an image as rows of frequency-modulated sine waves: dark
regions become dense oscillations and light regions stretch out, producing a
single-stroke vector drawing suitable for plotters and engravers.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sineshade/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuneCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// annotationNoConfig marks commands that must run without a readable config
// file, such as "config init" writing the first one.
const annotationNoConfig = "sineshade/no-config"

// loadConfig reads the config file. A missing default file is not an error;
// a missing file named by --config is.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[annotationNoConfig] == "true" {
		return nil
	}
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
		c.Logger.Debug("loaded config", "path", c.configPath)
		return nil
	}

	path, err := config.DefaultPath()
	if err != nil {
		c.Logger.Debug("no config directory", "error", err)
		return nil
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// resolvedConfigPath returns the file the CLI reads its config from.
func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ca, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	ttl, err := c.cfg.Cache.ArtifactTTL()
	if err != nil {
		ca.Close()
		return nil, err
	}
	r := pipeline.NewRunner(ca, c.cfg.Cache.Keyer(), c.Logger)
	r.TTL = ttl
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && c.cfg.Cache.Dir == "" && isFileBackend(c.cfg.Cache.Backend) {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.cfg.CacheOptions(dir))
}

func isFileBackend(backend string) bool {
	return backend == "" || backend == cache.BackendFile
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sineshade/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
