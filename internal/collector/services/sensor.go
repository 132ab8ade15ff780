package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Sensor is a builtin task source. Collect returns the panel text for one
// run.
type Sensor interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Collect(ctx context.Context) (string, error)
}

var registry = map[string]func() Sensor{
	"cpu":          func() Sensor { return NewCPUSensor() },
	"memory":       func() Sensor { return NewMemSensor() },
	"disk":         func() Sensor { return NewDiskSensor() },
	"host":         func() Sensor { return NewHostSensor() },
	"network":      func() Sensor { return NewNetSensor() },
	"processes":    func() Sensor { return NewProcessSensor(defaultProcessCount) },
	"docker":       func() Sensor { return NewDockerSensor() },
	"temperatures": func() Sensor { return NewPhysicalSensor() },
}

// New returns the sensor registered under name.
func New(name string) (Sensor, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin %q", name)
	}
	return factory(), nil
}

// Names lists the registered sensors in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// humanBytes formats n with a binary unit suffix.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// bar draws pct as a gauge of width cells.
func bar(pct float64, width int) string {
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))
	return "[" + strings.Repeat("|", filled) + strings.Repeat(" ", width-filled) + "]"
}
