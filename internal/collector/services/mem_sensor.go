package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/mem"
)

type MemSensor struct{}

func NewMemSensor() *MemSensor {
	return &MemSensor{}
}

func (s *MemSensor) Name() string {
	return "memory"
}

func (s *MemSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *MemSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *MemSensor) Collect(ctx context.Context) (string, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get virtual memory: %w", err)
	}

	// Swap falls back to what the virtual memory stat reports.
	swapPct := 0.0
	swapTotal := v.SwapTotal
	swapUsed := v.SwapTotal - v.SwapFree
	if swapStat, err := mem.SwapMemoryWithContext(ctx); err == nil && swapStat != nil {
		swapPct = swapStat.UsedPercent
		swapTotal = swapStat.Total
		swapUsed = swapStat.Used
	}

	var b strings.Builder
	fmt.Fprintf(&b, "mem  %s %5.1f%%\n", bar(v.UsedPercent, gaugeWidth), v.UsedPercent)
	fmt.Fprintf(&b, "     %s / %s (%s available)\n", humanBytes(v.Used), humanBytes(v.Total), humanBytes(v.Available))
	fmt.Fprintf(&b, "     cached %s  buffers %s\n", humanBytes(v.Cached), humanBytes(v.Buffers))
	fmt.Fprintf(&b, "swap %s %5.1f%%\n", bar(swapPct, gaugeWidth), swapPct)
	fmt.Fprintf(&b, "     %s / %s\n", humanBytes(swapUsed), humanBytes(swapTotal))
	return b.String(), nil
}
