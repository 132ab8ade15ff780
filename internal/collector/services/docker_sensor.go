package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/docker"
)

type container struct {
	name     string
	image    string
	status   string
	running  bool
	memUsage uint64
	memLimit uint64
}

// DockerSensor lists containers from cgroups, falling back to the docker
// CLI where cgroups are not readable.
type DockerSensor struct{}

func NewDockerSensor() *DockerSensor {
	return &DockerSensor{}
}

func (s *DockerSensor) Name() string {
	return "docker"
}

func (s *DockerSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *DockerSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *DockerSensor) Collect(ctx context.Context) (string, error) {
	containers, available := s.collect(ctx)
	if !available {
		return "docker unavailable\n", nil
	}
	if len(containers) == 0 {
		return "no containers\n", nil
	}

	var b strings.Builder
	for _, c := range containers {
		state := c.status
		switch {
		case state != "":
		case c.running:
			state = "running"
		default:
			state = "stopped"
		}
		fmt.Fprintf(&b, "%-20s %-12s %s", c.name, state, c.image)
		if c.memLimit > 0 {
			fmt.Fprintf(&b, " mem %s/%s", humanBytes(c.memUsage), humanBytes(c.memLimit))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (s *DockerSensor) collect(ctx context.Context) ([]container, bool) {
	// gopsutil's docker module does not see Docker Desktop on macOS.
	if runtime.GOOS == "darwin" {
		return s.collectViaCLI(ctx)
	}

	stats, err := docker.GetDockerStatWithContext(ctx)
	if err != nil {
		return s.collectViaCLI(ctx)
	}

	containers := make([]container, 0, len(stats))
	for _, st := range stats {
		c := container{
			name:    st.Name,
			image:   st.Image,
			status:  st.Status,
			running: st.Running,
		}
		if c.running {
			if mem, err := docker.CgroupMemDockerWithContext(ctx, st.ContainerID); err == nil {
				c.memUsage = mem.MemUsageInBytes
				c.memLimit = mem.MemLimitInBytes
			}
		}
		containers = append(containers, c)
	}
	return containers, true
}

func (s *DockerSensor) collectViaCLI(ctx context.Context) ([]container, bool) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := exec.CommandContext(checkCtx, "docker", "info", "--format", "{{.ServerVersion}}").Run(); err != nil {
		return nil, false
	}

	listCtx, listCancel := context.WithTimeout(ctx, 10*time.Second)
	defer listCancel()

	output, err := exec.CommandContext(listCtx, "docker", "ps", "-a", "--format", "{{json .}}").Output()
	if err != nil {
		// Daemon is up but listing failed, usually permissions.
		return nil, true
	}

	var containers []container
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line == "" {
			continue
		}

		var info struct {
			Names  string `json:"Names"`
			Image  string `json:"Image"`
			Status string `json:"Status"`
			State  string `json:"State"`
		}
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			continue
		}

		containers = append(containers, container{
			name:    info.Names,
			image:   info.Image,
			status:  info.Status,
			running: info.State == "running",
		})
	}
	return containers, true
}
