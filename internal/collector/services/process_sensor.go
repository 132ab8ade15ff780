package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

const defaultProcessCount = 10

type processInfo struct {
	pid    int32
	name   string
	cpu    float64
	memory float32
}

// ProcessSensor lists the busiest processes by CPU.
type ProcessSensor struct {
	top int
}

func NewProcessSensor(top int) *ProcessSensor {
	if top <= 0 {
		top = defaultProcessCount
	}
	return &ProcessSensor{top: top}
}

func (s *ProcessSensor) Name() string {
	return "processes"
}

func (s *ProcessSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *ProcessSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *ProcessSensor) Collect(ctx context.Context) (string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list processes: %w", err)
	}

	infos := make([]processInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpuPct, _ := p.CPUPercentWithContext(ctx)
		memPct, _ := p.MemoryPercentWithContext(ctx)
		infos = append(infos, processInfo{pid: p.Pid, name: name, cpu: cpuPct, memory: memPct})
	}

	slices.SortFunc(infos, func(a, b processInfo) int {
		return cmp.Or(cmp.Compare(b.cpu, a.cpu), cmp.Compare(a.pid, b.pid))
	})
	if len(infos) > s.top {
		infos = infos[:s.top]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%7s %6s %6s  %s\n", "PID", "CPU%", "MEM%", "NAME")
	for _, p := range infos {
		fmt.Fprintf(&b, "%7d %6.1f %6.1f  %s\n", p.pid, p.cpu, p.memory, p.name)
	}
	return b.String(), nil
}
