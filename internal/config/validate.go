package config

import (
	"fmt"
	"slices"

	"hex/internal/updates"
)

var (
	logLevels = []string{"debug", "info", "warn", "error"}
	builtins  = []string{BuiltinCPU, BuiltinMemory, BuiltinDisk, BuiltinHost, BuiltinNetwork, BuiltinProcesses, BuiltinDocker, BuiltinTemps}
)

// IsBuiltin reports whether name is a known builtin source.
func IsBuiltin(name string) bool {
	return slices.Contains(builtins, name)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c Config) Validate() error {
	if !slices.Contains(logLevels, c.Settings.LogLevel) {
		return &ConfigError{Field: "settings.log_level", Message: fmt.Sprintf("must be one of %v", logLevels)}
	}
	if len(c.Tasks) == 0 && len(c.Apps) == 0 {
		return &ConfigError{Field: "tasks", Message: "must define at least one task or app"}
	}

	seen := map[string]bool{updates.System: true, updates.Console: true}
	claim := func(field, id string) error {
		if id == "" {
			return &ConfigError{Field: field + ".id", Message: "must not be empty"}
		}
		if seen[id] {
			return &ConfigError{Field: field + ".id", Message: fmt.Sprintf("%q is reserved or already used", id)}
		}
		seen[id] = true
		return nil
	}

	for i, t := range c.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if err := claim(field, t.ID); err != nil {
			return err
		}
		switch {
		case t.Builtin != "" && !IsBuiltin(t.Builtin):
			return &ConfigError{Field: field + ".builtin", Message: fmt.Sprintf("must be one of %v", builtins)}
		case t.Builtin == "" && t.Command == "":
			return &ConfigError{Field: field + ".command", Message: "must not be empty"}
		}
		interval, err := t.Interval()
		if err != nil {
			return &ConfigError{Field: field + ".period", Message: err.Error()}
		}
		if interval <= 0 {
			return &ConfigError{Field: field + ".period", Message: "must be positive"}
		}
	}

	for i, a := range c.Apps {
		field := fmt.Sprintf("apps[%d]", i)
		if err := claim(field, a.ID); err != nil {
			return err
		}
		if a.Command == "" {
			return &ConfigError{Field: field + ".command", Message: "must not be empty"}
		}
	}

	if err := c.Layout.validate("layout"); err != nil {
		return err
	}
	if n := c.Layout.Mains(); n > 1 {
		return &ConfigError{Field: "layout", Message: fmt.Sprintf("has %d main textviews, at most one is allowed", n)}
	}
	return nil
}

func (l Layout) validate(field string) error {
	switch l.Kind {
	case KindLinearLayout:
		if l.Orientation != "vertical" && l.Orientation != "horizontal" {
			return &ConfigError{Field: field + ".orientation", Message: "must be vertical or horizontal"}
		}
	case KindTextView:
		if len(l.Children) > 0 {
			return &ConfigError{Field: field + ".children", Message: "textview cannot have children"}
		}
	case "":
		return &ConfigError{Field: field + ".kind", Message: "must not be empty"}
	default:
		return &ConfigError{Field: field + ".kind", Message: fmt.Sprintf("unknown layout kind %q", l.Kind)}
	}

	if l.Main && l.Kind != KindTextView {
		return &ConfigError{Field: field + ".main", Message: "only a textview can be main"}
	}
	if l.Width != nil && *l.Width < 0 {
		return &ConfigError{Field: field + ".width", Message: "must not be negative"}
	}
	if l.Height != nil && *l.Height < 0 {
		return &ConfigError{Field: field + ".height", Message: "must not be negative"}
	}

	for i, c := range l.Children {
		if err := c.validate(fmt.Sprintf("%s.children[%d]", field, i)); err != nil {
			return err
		}
	}
	return nil
}
