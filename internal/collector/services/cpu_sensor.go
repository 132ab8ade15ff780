package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
)

const gaugeWidth = 20

type CPUSensor struct{}

func NewCPUSensor() *CPUSensor {
	return &CPUSensor{}
}

func (s *CPUSensor) Name() string {
	return "cpu"
}

func (s *CPUSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Disconnect(ctx context.Context) error {
	return nil
}

// Collect shows the total load followed by one gauge per core.
func (s *CPUSensor) Collect(ctx context.Context) (string, error) {
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(total) == 0 {
		return "", fmt.Errorf("failed to get total cpu percent: %w", err)
	}

	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return "", fmt.Errorf("failed to get per-core cpu percent: %w", err)
	}

	info, err := cpu.InfoWithContext(ctx)
	model := "Unknown"
	if err == nil && len(info) > 0 {
		model = info[0].ModelName
	}

	cores, _ := cpu.CountsWithContext(ctx, true)

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d cores)\n", model, cores)
	fmt.Fprintf(&b, "all %s %5.1f%%\n", bar(total[0], gaugeWidth), total[0])
	for i, pct := range perCore {
		fmt.Fprintf(&b, "%3d %s %5.1f%%\n", i, bar(pct, gaugeWidth), pct)
	}
	return b.String(), nil
}
