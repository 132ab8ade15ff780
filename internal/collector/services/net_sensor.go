package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/net"
)

type NetSensor struct{}

func NewNetSensor() *NetSensor {
	return &NetSensor{}
}

func (s *NetSensor) Name() string {
	return "network"
}

func (s *NetSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *NetSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *NetSensor) Collect(ctx context.Context) (string, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return "", fmt.Errorf("failed to get net io counters: %w", err)
	}

	var b strings.Builder
	for _, c := range counters {
		fmt.Fprintf(&b, "%-10s tx %-9s rx %-9s", c.Name, humanBytes(c.BytesSent), humanBytes(c.BytesRecv))
		if errs := c.Errin + c.Errout; errs > 0 {
			fmt.Fprintf(&b, " err %d", errs)
		}
		if drops := c.Dropin + c.Dropout; drops > 0 {
			fmt.Fprintf(&b, " drop %d", drops)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
