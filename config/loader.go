package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/webhost/logger"
)

// FileSystem abstracts file lookups so tests can fake them.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFS struct{}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv sets variables from a dotenv file without overriding the process
// environment.
func (osFS) LoadEnv(path string) error { return godotenv.Load(path) }

// Files are the resolved configuration inputs of a host.
type Files struct {
	Config string
	Env    string
}

// LoaderConfig holds the loader inputs. Empty fields are searched or
// defaulted.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix namespaces environment overrides: with "ORDERS" the key
	// server.port reads ORDERS_SERVER_PORT.
	EnvPrefix string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets the filesystem used to find and read files.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit YAML file; it must exist.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit dotenv file.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix namespaces environment overrides.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// SearchDirs lists the directories searched for the files of app, nearest
// first.
func SearchDirs(app string) []string {
	return []string{filepath.Join("cmd", app), filepath.Join("config", app), "config", "."}
}

// ResolveFiles finds the YAML and dotenv files of app. Explicit paths win;
// otherwise the first config.yml (or config.yaml) and the first .env.<app>
// (or .env) found in SearchDirs are used.
func ResolveFiles(app string, lc LoaderConfig) Files {
	fs := lc.FileSystem
	if fs == nil {
		fs = osFS{}
	}
	files := Files{Config: lc.ConfigFile, Env: lc.EnvFile}
	if files.Config == "" {
		files.Config = firstExisting(fs, SearchDirs(app), "config.yml", "config.yaml")
	}
	if files.Env == "" {
		files.Env = firstExisting(fs, SearchDirs(app), ".env."+app, ".env")
	}
	return files
}

func firstExisting(fs FileSystem, dirs []string, names ...string) string {
	for _, dir := range dirs {
		for _, name := range names {
			if p := filepath.Join(dir, name); fs.Exists(p) {
				return p
			}
		}
	}
	return ""
}

// Load reads the configuration of app into cfg and returns the merged tree.
//
// Layers, lowest first: the values already in cfg, the YAML file, the
// environment (after the dotenv file is applied). Environment variables are
// named after the key path with dots replaced by underscores, so
// server.max_body_size reads SERVER_MAX_BODY_SIZE. The returned Root also
// holds keys cfg does not declare.
func Load(app string, cfg interface{}, opts ...LoaderOption) (*Root, error) {
	lc := LoaderConfig{FileSystem: osFS{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = osFS{}
	}
	if lc.ConfigFile != "" && !lc.FileSystem.Exists(lc.ConfigFile) {
		return nil, fmt.Errorf("config: file %s not found", lc.ConfigFile)
	}
	files := ResolveFiles(app, lc)

	if files.Env != "" {
		if err := lc.FileSystem.LoadEnv(files.Env); err != nil {
			logger.Warn("Env file not loaded", map[string]interface{}{
				"file":  files.Env,
				"error": err.Error(),
			})
		}
	}

	v := viper.New()
	if lc.EnvPrefix != "" {
		v.SetEnvPrefix(lc.EnvPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := declareKeys(v, cfg); err != nil {
		return nil, err
	}

	if files.Config != "" {
		v.SetConfigFile(files.Config)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", files.Config, err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", app, err)
	}
	logger.Debug("Configuration loaded", map[string]interface{}{
		"application": app,
		"file":        files.Config,
		"env_file":    files.Env,
	})
	return NewRoot(v), nil
}

// declareKeys registers every key of cfg with v: current values become
// defaults and each key is bound to its environment variable. viper only
// consults the environment for keys it knows about when decoding.
func declareKeys(v *viper.Viper, cfg interface{}) error {
	var tree map[string]interface{}
	if err := mapstructure.Decode(cfg, &tree); err != nil {
		return fmt.Errorf("config: inspect %T: %w", cfg, err)
	}
	return walkKeys("", tree, func(key string, val interface{}) error {
		if val != nil {
			v.SetDefault(key, val)
		}
		return v.BindEnv(key)
	})
}

func walkKeys(prefix string, tree map[string]interface{}, fn func(string, interface{}) error) error {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			if err := walkKeys(key, sub, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return nil
}
