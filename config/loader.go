package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file operations of the loader for tests.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config.yml and .env files for a program.
type Resolver struct {
	FileSystem FileSystem
	// Dirs lists extra directories searched before the defaults.
	Dirs []string
}

// Resolve returns explicit paths unchanged and searches for the missing ones.
func (r *Resolver) Resolve(program string, explicit ResolvedFiles) ResolvedFiles {
	out := explicit
	dirs := r.searchDirs(program)
	if out.ConfigFile == "" {
		out.ConfigFile = r.first(dirs, "config.yml", "config.yaml")
	}
	if out.EnvFile == "" {
		out.EnvFile = r.first(dirs, ".env."+program, ".env")
	}
	return out
}

func (r *Resolver) searchDirs(program string) []string {
	dirs := append([]string{}, r.Dirs...)
	for _, prefix := range []string{".", "..", "../.."} {
		dirs = append(dirs, filepath.Join(prefix, "cmd", program))
	}
	dirs = append(dirs, "./config", ".")
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+strings.TrimSuffix(program, "-mockapi")))
	}
	return dirs
}

// first returns the first existing file, trying names in order within each dir.
func (r *Resolver) first(dirs []string, names ...string) string {
	for _, name := range names {
		for _, dir := range dirs {
			p := filepath.Join(dir, name)
			if r.FileSystem.Exists(p) {
				return p
			}
		}
	}
	return ""
}

type loaderOptions struct {
	fs    FileSystem
	files ResolvedFiles
	dirs  []string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*loaderOptions)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(o *loaderOptions) { o.fs = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.files.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.files.EnvFile = path }
}

// WithSearchDir adds a directory searched before the default locations.
func WithSearchDir(dir string) LoaderOption {
	return func(o *loaderOptions) { o.dirs = append(o.dirs, dir) }
}

// LoadConfig loads configuration for program into cfg. The YAML file is read
// first, then the .env file is loaded into the process environment, then
// every environment variable is bound over the file values.
func LoadConfig(program string, cfg any, opts ...LoaderOption) error {
	o := loaderOptions{fs: OSFileSystem{}}
	for _, opt := range opts {
		opt(&o)
	}

	resolver := &Resolver{FileSystem: o.fs, Dirs: o.dirs}
	files := resolver.Resolve(program, o.files)

	v := viper.New()
	if files.ConfigFile != "" && o.fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && o.fs.Exists(files.EnvFile) {
		if err := o.fs.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", program, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each dotted variant of its key.
// Empty values count as unset and leave file values in place.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" || value == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an UPPER_SNAKE variable to the keys it may mean:
// the flat key, and every split of its parts into a dotted prefix and an
// underscore-joined leaf.
//
//	API_BASE_URL -> [api_base_url, api.base_url, api.base.url]
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{lower}
	seen := map[string]bool{lower: true}
	for i := 1; i < len(parts); i++ {
		for j := i; j < len(parts); j++ {
			// parts[:i] nest, parts[i:j] form one section, parts[j:] the leaf.
			segs := append([]string{}, parts[:i]...)
			if j > i {
				segs = append(segs, strings.Join(parts[i:j], "_"))
			}
			segs = append(segs, strings.Join(parts[j:], "_"))
			key := strings.Join(segs, ".")
			if !seen[key] {
				seen[key] = true
				variants = append(variants, key)
			}
		}
	}
	return variants
}
