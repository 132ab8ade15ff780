package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

type DiskSensor struct {
	// all includes pseudo filesystems.
	all bool
}

func NewDiskSensor() *DiskSensor {
	return &DiskSensor{}
}

func (s *DiskSensor) Name() string {
	return "disk"
}

func (s *DiskSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *DiskSensor) Disconnect(ctx context.Context) error {
	return nil
}

// Collect lists usage per mounted partition and the I/O totals per device.
func (s *DiskSensor) Collect(ctx context.Context) (string, error) {
	partitions, err := disk.PartitionsWithContext(ctx, s.all)
	if err != nil {
		return "", fmt.Errorf("failed to get partitions: %w", err)
	}

	var b strings.Builder
	for _, p := range partitions {
		u, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		fmt.Fprintf(&b, "%-16s %s %5.1f%% %s/%s\n",
			p.Mountpoint, bar(u.UsedPercent, 10), u.UsedPercent, humanBytes(u.Used), humanBytes(u.Total))
	}

	ioCounters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		// Not every platform exposes counters; usage alone is still useful.
		return b.String(), nil
	}

	names := make([]string, 0, len(ioCounters))
	for name := range ioCounters {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c := ioCounters[name]
		fmt.Fprintf(&b, "%-16s read %s  write %s\n", name, humanBytes(c.ReadBytes), humanBytes(c.WriteBytes))
	}
	return b.String(), nil
}
