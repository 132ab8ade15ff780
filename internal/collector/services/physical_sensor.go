package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/sensors"
)

// PhysicalSensor reports hardware temperatures.
type PhysicalSensor struct{}

func NewPhysicalSensor() *PhysicalSensor {
	return &PhysicalSensor{}
}

func (s *PhysicalSensor) Name() string {
	return "temperatures"
}

func (s *PhysicalSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *PhysicalSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *PhysicalSensor) Collect(ctx context.Context) (string, error) {
	data, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(data) == 0 {
		return "", fmt.Errorf("failed to get temperatures: %w", err)
	}

	if len(data) == 0 {
		return "no temperature sensors\n", nil
	}
	var b strings.Builder
	for _, t := range data {
		fmt.Fprintf(&b, "%-24s %5.1f°C\n", t.SensorKey, t.Temperature)
	}
	return b.String(), nil
}
