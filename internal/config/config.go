package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"filemerge/internal/model"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	PlaceholderOutputDir = "/output/directory/here"
	DefaultConfigFile    = "filemerge.yaml"
)

var PlaceholderSourceDirs = []string{"/source/dir/one", "/source/dir/two"}

// ErrConfiguration marks a config that must be fixed before anything is touched.
var ErrConfiguration = errors.New("configuration error")

type Config struct {
	SourceDirs    []string           `mapstructure:"source_dirs" yaml:"source_dirs"`
	OutputDir     string             `mapstructure:"output_dir" yaml:"output_dir"`
	Mode          model.TransferMode `mapstructure:"mode" yaml:"mode"`
	ReadOnly      bool               `mapstructure:"read_only" yaml:"read_only"`
	Workers       int                `mapstructure:"workers" yaml:"workers"`
	HashAlgorithm string             `mapstructure:"hash_algorithm" yaml:"hash_algorithm"`
	IgnoreList    []string           `mapstructure:"ignore_list" yaml:"ignore_list"`
	CacheDir      string             `mapstructure:"cache_dir" yaml:"cache_dir"`
	HashCacheFile string             `mapstructure:"hash_cache_file" yaml:"hash_cache_file"`
	PlanCacheFile string             `mapstructure:"plan_cache_file" yaml:"plan_cache_file"`
	DBPath        string             `mapstructure:"db_path" yaml:"db_path"`
	WatchSources  bool               `mapstructure:"watch_sources" yaml:"watch_sources"`
	AutoConfirm   bool               `mapstructure:"auto_confirm" yaml:"auto_confirm"`
}

var Default = Config{
	SourceDirs:    PlaceholderSourceDirs,
	OutputDir:     PlaceholderOutputDir,
	Mode:          model.ModeCopy,
	ReadOnly:      false,
	Workers:       0,
	HashAlgorithm: "xxh3",
	IgnoreList:    []string{".DS_Store", "Thumbs.db", "*.filemerge.tmp"},
	CacheDir:      ".",
	HashCacheFile: "cache_hashes.json",
	PlanCacheFile: "cache_movequeue.json",
	DBPath:        "filemerge.db",
	WatchSources:  true,
	AutoConfirm:   false,
}

// Load reads the config file at path (or DefaultConfigFile when empty).
// A missing file yields the defaults, which Validate rejects as placeholders.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("source_dirs", Default.SourceDirs)
	v.SetDefault("output_dir", Default.OutputDir)
	v.SetDefault("mode", string(Default.Mode))
	v.SetDefault("read_only", Default.ReadOnly)
	v.SetDefault("workers", Default.Workers)
	v.SetDefault("hash_algorithm", Default.HashAlgorithm)
	v.SetDefault("ignore_list", Default.IgnoreList)
	v.SetDefault("cache_dir", Default.CacheDir)
	v.SetDefault("hash_cache_file", Default.HashCacheFile)
	v.SetDefault("plan_cache_file", Default.PlanCacheFile)
	v.SetDefault("db_path", Default.DBPath)
	v.SetDefault("watch_sources", Default.WatchSources)
	v.SetDefault("auto_confirm", Default.AutoConfirm)

	v.SetEnvPrefix("FILEMERGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, notFound := errors.AsType[viper.ConfigFileNotFoundError](err)
		if !notFound && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// WriteDefault writes a placeholder config for the operator to edit.
// It reports false when a config already exists at path.
func WriteDefault(path string) (bool, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(Default)
	if err != nil {
		return false, fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}

	return true, nil
}

// Validate checks the config and resolves every directory to an absolute path
// with symlinks evaluated, so aliases of the same directory compare equal.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" || c.OutputDir == PlaceholderOutputDir {
		return fmt.Errorf("%w: output_dir is not set", ErrConfiguration)
	}

	if len(c.SourceDirs) == 0 {
		return fmt.Errorf("%w: source_dirs is empty", ErrConfiguration)
	}

	out, err := resolvePath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: invalid output_dir: %v", ErrConfiguration, err)
	}
	c.OutputDir = out

	seen := make(map[string]bool, len(c.SourceDirs))
	for i, dir := range c.SourceDirs {
		if strings.TrimSpace(dir) == "" || slices.Contains(PlaceholderSourceDirs, dir) {
			return fmt.Errorf("%w: source_dirs[%d] is not set", ErrConfiguration, i)
		}

		abs, err := resolvePath(dir)
		if err != nil {
			return fmt.Errorf("%w: invalid source dir %q: %v", ErrConfiguration, dir, err)
		}

		if abs == out {
			return fmt.Errorf("%w: output_dir %q is also a source dir", ErrConfiguration, out)
		}

		if seen[abs] {
			return fmt.Errorf("%w: source dir %q listed twice", ErrConfiguration, abs)
		}
		seen[abs] = true

		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: source dir %q is not a directory", ErrConfiguration, abs)
		}

		c.SourceDirs[i] = abs
	}

	switch c.Mode {
	case model.ModeCopy, model.ModeMove:
	case "":
		c.Mode = model.ModeCopy
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrConfiguration, c.Mode)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrConfiguration)
	}

	return nil
}

// resolvePath makes path absolute and evaluates symlinks. A path that does not
// exist yet is resolved through its deepest existing ancestor.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}

	resolvedParent, err := resolvePath(parent)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}

func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c *Config) HashCachePath() string {
	return filepath.Join(c.CacheDir, c.HashCacheFile)
}

func (c *Config) PlanCachePath() string {
	return filepath.Join(c.CacheDir, c.PlanCacheFile)
}
