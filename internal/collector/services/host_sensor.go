package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

type HostSensor struct{}

func NewHostSensor() *HostSensor {
	return &HostSensor{}
}

func (s *HostSensor) Name() string {
	return "host"
}

func (s *HostSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Collect(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get host info: %w", err)
	}

	uptime := time.Duration(info.Uptime) * time.Second

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", info.Hostname)
	fmt.Fprintf(&b, "%s %s (%s)\n", info.Platform, info.PlatformVersion, info.OS)
	fmt.Fprintf(&b, "kernel %s %s\n", info.KernelVersion, info.KernelArch)
	if info.VirtualizationSystem != "" {
		fmt.Fprintf(&b, "virt %s (%s)\n", info.VirtualizationSystem, info.VirtualizationRole)
	}
	fmt.Fprintf(&b, "up %s, %d procs\n", uptime.String(), info.Procs)
	return b.String(), nil
}
