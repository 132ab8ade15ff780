// Package config loads the dashboard definition: the tasks to run, the apps
// that can be launched into the main pane, and the panel layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the dashboard looks for its configuration.
const DefaultPath = "config/tasks.toml"

// Layout kinds.
const (
	KindLinearLayout = "linearlayout"
	KindTextView     = "textview"
	KindPanel        = "panel"
)

// Builtin task sources, collected in-process instead of by a command.
const (
	BuiltinCPU       = "cpu"
	BuiltinMemory    = "memory"
	BuiltinDisk      = "disk"
	BuiltinHost      = "host"
	BuiltinNetwork   = "network"
	BuiltinProcesses = "processes"
	BuiltinDocker    = "docker"
	BuiltinTemps     = "temperatures"
)

// Config is the whole dashboard definition.
type Config struct {
	Settings Settings `toml:"settings" yaml:"settings"`
	Tasks    []Task   `toml:"tasks" yaml:"tasks"`
	// Widgets is an older name for Tasks. Load merges it into Tasks.
	Widgets []Task `toml:"widgets" yaml:"widgets"`
	Apps    []App  `toml:"apps" yaml:"apps"`
	Layout  Layout `toml:"layout" yaml:"layout"`
}

// Settings holds process-wide options.
type Settings struct {
	LogFile   string `toml:"log_file" yaml:"log_file"`     // Log destination (default: log/hex.log)
	LogLevel  string `toml:"log_level" yaml:"log_level"`   // debug, info, warn or error (default: info)
	HistoryDB string `toml:"history_db" yaml:"history_db"` // DuckDB file for run history; empty disables it
	Console   bool   `toml:"console" yaml:"console"`       // Reserve the bottom row for the console (default: true)
}

// Task is a command run on a fixed period whose output fills a panel.
type Task struct {
	ID          string `toml:"id" yaml:"id"`
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	Path        string `toml:"path" yaml:"path"`
	Command     string `toml:"command" yaml:"command"`
	Period      string `toml:"period" yaml:"period"`
	Builtin     string `toml:"builtin" yaml:"builtin"`
}

// App is a long-running program started on demand in the main pane.
type App struct {
	ID          string `toml:"id" yaml:"id"`
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	Path        string `toml:"path" yaml:"path"`
	Command     string `toml:"command" yaml:"command"`
}

// Layout describes one node of the panel tree.
type Layout struct {
	Kind        string   `toml:"kind" yaml:"kind"`
	LayoutID    string   `toml:"layout_id" yaml:"layout_id"`
	Main        bool     `toml:"main" yaml:"main"`
	Children    []Layout `toml:"children" yaml:"children"`
	Orientation string   `toml:"orientation" yaml:"orientation"`
	Width       *int     `toml:"width" yaml:"width"`
	Height      *int     `toml:"height" yaml:"height"`
	TaskID      string   `toml:"task_id" yaml:"task_id"`
	Visible     *bool    `toml:"visible" yaml:"visible"`
}

// Default returns a Config with default settings and nothing to run.
func Default() Config {
	return Config{
		Settings: Settings{
			LogFile:  filepath.Join("log", "hex.log"),
			LogLevel: "info",
			Console:  true,
		},
	}
}

// WithLogFile returns a copy of the config with a different log destination.
func (c Config) WithLogFile(path string) Config {
	c.Settings.LogFile = path
	return c
}

// WithLogLevel returns a copy of the config with a different log level.
func (c Config) WithLogLevel(level string) Config {
	c.Settings.LogLevel = level
	return c
}

// WithHistoryDB returns a copy of the config recording runs to path.
func (c Config) WithHistoryDB(path string) Config {
	c.Settings.HistoryDB = path
	return c
}

// WithConsole returns a copy of the config with the console row shown or hidden.
func (c Config) WithConsole(enabled bool) Config {
	c.Settings.Console = enabled
	return c
}

// WithTasks returns a copy of the config with its tasks replaced.
func (c Config) WithTasks(tasks []Task) Config {
	c.Tasks = tasks
	return c
}

// WithLayout returns a copy of the config with its layout replaced.
func (c Config) WithLayout(l Layout) Config {
	c.Layout = l
	return c
}

// Task returns the task with the given id.
func (c Config) Task(id string) (Task, bool) {
	for _, t := range c.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// App returns the app with the given id.
func (c Config) App(id string) (App, bool) {
	for _, a := range c.Apps {
		if a.ID == id {
			return a, true
		}
	}
	return App{}, false
}

// Load reads and validates the configuration at path. Files ending in
// .yaml or .yml are YAML; everything else is TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Decode(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Format is a configuration file syntax.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return TOML
	}
}

// Decode parses data on top of the defaults without validating it.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := Default()

	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return nil, err
	}

	cfg.Tasks = append(cfg.Tasks, cfg.Widgets...)
	cfg.Widgets = nil
	return &cfg, nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
