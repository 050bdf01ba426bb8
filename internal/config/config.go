// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Makepad-fr/tasktracker/internal/store"
	"github.com/Makepad-fr/tasktracker/internal/store/jsonstore"
)

// ErrFlags wraps root flag parse errors. The flag package has already
// printed those, along with the usage text, to the flag set's output.
var ErrFlags = errors.New("parsing flags")

// Source records where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceFile     Source = "config flag file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultFile        = jsonstore.DefaultFileName
	DefaultOnMalformed = string(store.MalformedFail)
	DefaultTheme       = "classic"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// Environment variable names.
const (
	EnvFile        = "TASKTRACKER_FILE"
	EnvOnMalformed = "TASKTRACKER_ON_MALFORMED"
	EnvTheme       = "TASKTRACKER_THEME"
	EnvLogLevel    = "TASKTRACKER_LOG_LEVEL"
	EnvLogFormat   = "TASKTRACKER_LOG_FORMAT"
)

// Config holds the full configuration for one invocation.
type Config struct {
	// Path of the backing task file.
	File string `toml:"file"`
	// What to do with an unparseable task file: fail or reset.
	OnMalformed string `toml:"on_malformed"`

	// Output
	Theme string `toml:"theme"`
	Group bool   `toml:"group"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// ConfigFile is the file passed with --config, if any.
	ConfigFile string `toml:"-"`
	// Sources maps each toml key to where its value came from.
	Sources map[string]Source `toml:"-"`
}

// Fields lists the configurable keys in display order.
func Fields() []string {
	return []string{"file", "on_malformed", "theme", "group", "log_level", "log_format"}
}

// Value returns the string form of a configurable key.
func (c *Config) Value(key string) string {
	switch key {
	case "file":
		return c.File
	case "on_malformed":
		return c.OnMalformed
	case "theme":
		return c.Theme
	case "group":
		return fmt.Sprintf("%t", c.Group)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	}
	return ""
}

// MalformedPolicy returns the validated store policy.
func (c *Config) MalformedPolicy() store.MalformedPolicy {
	p, err := store.ParseMalformedPolicy(c.OnMalformed)
	if err != nil {
		return store.MalformedFail
	}
	return p
}

// Load builds the configuration from, in increasing priority:
// 1. Defaults
// 2. User config file (XDG config dir or ~/.tasktracker/config.toml)
// 3. Project config file (tasktracker.toml or .tasktracker.toml in the working dir)
// 4. Environment variables
// 5. CLI flags
//
// A --config flag replaces steps 2 and 3 with the named file.
// Flags are registered on fs and parsed from args; fs.Args() holds the rest.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{Sources: make(map[string]Source)}
	setDefaults(cfg)

	flags := registerFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFlags, err)
	}

	if *flags.config != "" {
		cfg.ConfigFile = *flags.config
		if err := loadConfigFile(cfg, cfg.ConfigFile, SourceFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", cfg.ConfigFile, err)
		}
	} else {
		if path := findUserConfigFile(); path != "" {
			if err := loadConfigFile(cfg, path, SourceUserFile); err != nil {
				return nil, fmt.Errorf("loading user config file %s: %w", path, err)
			}
		}
		if path := findProjectConfigFile(); path != "" {
			if err := loadConfigFile(cfg, path, SourceProjFile); err != nil {
				return nil, fmt.Errorf("loading project config file %s: %w", path, err)
			}
		}
	}

	loadFromEnv(cfg)
	applyFlags(cfg, fs, flags)

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.File = DefaultFile
	cfg.OnMalformed = DefaultOnMalformed
	cfg.Theme = DefaultTheme
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	for _, key := range Fields() {
		cfg.Sources[key] = SourceDefault
	}
}

// loadConfigFile overlays the keys present in a TOML file.
func loadConfigFile(cfg *Config, path string, source Source) error {
	var fileCfg Config
	md, err := toml.DecodeFile(path, &fileCfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	set := func(key string, apply func()) {
		if md.IsDefined(key) {
			apply()
			cfg.Sources[key] = source
		}
	}
	set("file", func() { cfg.File = fileCfg.File })
	set("on_malformed", func() { cfg.OnMalformed = fileCfg.OnMalformed })
	set("theme", func() { cfg.Theme = fileCfg.Theme })
	set("group", func() { cfg.Group = fileCfg.Group })
	set("log_level", func() { cfg.LogLevel = fileCfg.LogLevel })
	set("log_format", func() { cfg.LogFormat = fileCfg.LogFormat })
	return nil
}

func loadFromEnv(cfg *Config) {
	set := func(env, key string, field *string) {
		if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
			cfg.Sources[key] = SourceEnv
		}
	}
	set(EnvFile, "file", &cfg.File)
	set(EnvOnMalformed, "on_malformed", &cfg.OnMalformed)
	set(EnvTheme, "theme", &cfg.Theme)
	set(EnvLogLevel, "log_level", &cfg.LogLevel)
	set(EnvLogFormat, "log_format", &cfg.LogFormat)
}

type flagValues struct {
	config      *string
	file        *string
	onMalformed *string
	theme       *string
	group       *bool
	logLevel    *string
	logFormat   *string
}

func registerFlags(fs *flag.FlagSet, cfg *Config) flagValues {
	return flagValues{
		config:      fs.String("config", "", "Path to a TOML config file (skips user and project files)"),
		file:        fs.String("file", "", "Path to the task file (default "+DefaultFile+")"),
		onMalformed: fs.String("on-malformed", "", "What to do with an unreadable task file: fail|reset"),
		theme:       fs.String("theme", "", "Output theme: classic|neon|mono"),
		group:       fs.Bool("group", false, "Group list output by status"),
		logLevel:    fs.String("log-level", "", "Log level: debug|info|warn|error"),
		logFormat:   fs.String("log-format", "", "Log format: text|json|logfmt"),
	}
}

// applyFlags copies only the flags that were set explicitly.
func applyFlags(cfg *Config, fs *flag.FlagSet, f flagValues) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "file":
			cfg.File = *f.file
		case "on-malformed":
			cfg.OnMalformed = *f.onMalformed
		case "theme":
			cfg.Theme = *f.theme
		case "group":
			cfg.Group = *f.group
		case "log-level":
			cfg.LogLevel = *f.logLevel
		case "log-format":
			cfg.LogFormat = *f.logFormat
		default:
			return
		}
		cfg.Sources[strings.ReplaceAll(fl.Name, "-", "_")] = SourceFlag
	})
}

func finalizeConfig(cfg *Config) error {
	cfg.File = expandHome(strings.TrimSpace(cfg.File))
	if cfg.File == "" {
		return fmt.Errorf("file must not be empty")
	}
	if _, err := store.ParseMalformedPolicy(cfg.OnMalformed); err != nil {
		return err
	}
	cfg.OnMalformed = strings.ToLower(strings.TrimSpace(cfg.OnMalformed))

	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	switch cfg.Theme {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("theme must be classic, neon or mono, got %q", cfg.Theme)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", cfg.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format must be text, json or logfmt, got %q", cfg.LogFormat)
	}
	return nil
}
