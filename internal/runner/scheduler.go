package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"hex/internal/collector/services"
	"hex/internal/config"
	"hex/internal/updates"
	"hex/internal/vt100"
)

// ErrUnknownTask is returned for ids that name neither a task nor an app.
var ErrUnknownTask = errors.New("unknown task")

// ErrStopped is returned for console commands that arrive after Stop.
var ErrStopped = errors.New("scheduler stopped")

// Recorder stores finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, r Result) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder records every run to r.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithApps makes apps startable from the console. Their output streams to
// target, a pty of the given size.
func WithApps(apps []config.App, target string, size vt100.CharDims) Option {
	return func(s *Scheduler) {
		for _, a := range apps {
			s.apps[a.ID] = a
		}
		s.appTarget = target
		s.appSize = size
	}
}

type job struct {
	task     config.Task
	interval time.Duration
	cmd      Command
	sensor   services.Sensor
}

func newJob(t config.Task) (*job, error) {
	interval, err := t.Interval()
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	j := &job{
		task:     t,
		interval: interval,
		cmd:      Command{ID: t.ID, Path: t.Path, Line: t.Command},
	}
	if t.Builtin != "" {
		if j.sensor, err = services.New(t.Builtin); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
	}
	return j, nil
}

func (j *job) run(ctx context.Context, extra []string) (Result, error) {
	if j.sensor == nil {
		return j.cmd.Run(ctx, extra...)
	}

	res := Result{TaskID: j.task.ID, StartedAt: time.Now()}
	text, err := j.sensor.Collect(ctx)
	res.Duration = time.Since(res.StartedAt)
	if err != nil {
		res.ExitCode = 1
		res.Output = err.Error()
		return res, err
	}
	res.Output = text
	return res, nil
}

func newJobs(tasks []config.Task) (map[string]*job, []string, error) {
	jobs := make(map[string]*job, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, t := range tasks {
		j, err := newJob(t)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := jobs[t.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate task %s", t.ID)
		}
		jobs[t.ID] = j
		order = append(order, t.ID)
	}
	return jobs, order, nil
}

// Scheduler runs every task in its own loop: run, send the output, then
// sleep out the rest of the period.
type Scheduler struct {
	sink      updates.Sink
	recorder  Recorder
	logger    *slog.Logger
	apps      map[string]config.App
	appTarget string
	appSize   vt100.CharDims

	mu        sync.Mutex
	jobs      map[string]*job
	order     []string
	last      map[string]Result
	app       *App
	ctx       context.Context
	cancel    context.CancelFunc
	genCancel context.CancelFunc
	running   bool
	stopped   bool
	wg        sync.WaitGroup
}

// NewScheduler creates a scheduler for tasks that sends output to sink.
func NewScheduler(tasks []config.Task, sink updates.Sink, opts ...Option) (*Scheduler, error) {
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	jobs, order, err := newJobs(tasks)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		sink:   sink,
		logger: slog.Default(),
		apps:   make(map[string]config.App),
		jobs:   jobs,
		order:  order,
		last:   make(map[string]Result),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start launches one loop per task.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.stopped = false
	s.spawnLocked()
	return nil
}

func (s *Scheduler) spawnLocked() {
	gen, cancel := context.WithCancel(s.ctx)
	s.genCancel = cancel
	for _, id := range s.order {
		s.wg.Add(1)
		go s.loop(gen, s.jobs[id])
	}
}

// Stop ends every loop and any running app, and waits for them. Console
// commands are refused from then on.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	app := s.app
	s.cancel = nil
	s.genCancel = nil
	s.app = nil
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if app != nil {
		app.Close()
	}
	s.wg.Wait()
}

// Reload replaces the task definitions. Running loops are restarted with
// the new set; last outputs are kept.
func (s *Scheduler) Reload(tasks []config.Task) error {
	jobs, order, err := newJobs(tasks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genCancel != nil {
		s.genCancel()
	}
	s.jobs, s.order = jobs, order
	if s.running {
		s.spawnLocked()
	}
	s.logger.Info("tasks reloaded", "count", len(order))
	return nil
}

// Tasks returns the current task definitions in configuration order.
func (s *Scheduler) Tasks() []config.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]config.Task, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.jobs[id].task)
	}
	return tasks
}

// Last returns the most recent result of a task.
func (s *Scheduler) Last(id string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[id]
	return r, ok
}

// RunOnce runs a task immediately with extra arguments and sends its
// output like a scheduled run would.
func (s *Scheduler) RunOnce(ctx context.Context, id string, extra ...string) (Result, error) {
	s.mu.Lock()
	j, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return s.execute(ctx, j, extra), nil
}

// Dispatch handles a console line "<id> args...". Tasks run once in the
// background with the arguments appended; apps start in the main pane.
func (s *Scheduler) Dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	id, args := fields[0], fields[1:]

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	_, isTask := s.jobs[id]
	app, isApp := s.apps[id]
	if s.running {
		ctx = s.ctx
	}
	if isTask {
		// Added under mu so Stop cannot already be waiting.
		s.wg.Add(1)
	}
	s.mu.Unlock()

	switch {
	case isTask:
		s.logger.Info("running manual command", "task", id, "args", args)
		go func() {
			defer s.wg.Done()
			if _, err := s.RunOnce(ctx, id, args...); err != nil {
				s.logger.Warn("manual command failed", "task", id, "error", err)
			}
		}()
		return nil
	case isApp:
		return s.startApp(ctx, app, args)
	default:
		s.logger.Warn("could not find command", "task", id)
		return fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
}

func (s *Scheduler) startApp(ctx context.Context, a config.App, args []string) error {
	if s.appTarget == "" {
		return errors.New("no main pane to run apps in")
	}
	if len(args) > 0 {
		a.Command += " " + strings.Join(args, " ")
	}

	app, err := StartApp(ctx, a, s.appSize, s.appTarget, s.sink)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		app.Close()
		return ErrStopped
	}
	previous := s.app
	s.app = app
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("started app", "app", a.ID, "pane", s.appTarget)
	go func() {
		defer s.wg.Done()
		if err := app.Err(); err != nil {
			s.logger.Info("app exited", "app", app.ID(), "error", err)
		} else {
			s.logger.Info("app exited", "app", app.ID())
		}
	}()
	if previous != nil {
		previous.Close()
	}
	return nil
}

// Apps lists the ids of startable apps.
func (s *Scheduler) Apps() []string {
	return slices.Sorted(maps.Keys(s.apps))
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	if j.sensor != nil {
		if err := j.sensor.Connect(ctx); err != nil {
			s.logger.Error("builtin connect failed", "task", j.task.ID, "error", err)
			return
		}
		defer j.sensor.Disconnect(context.Background())
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		started := time.Now()
		s.execute(ctx, j, nil)
		timer.Reset(max(0, j.interval-time.Since(started)))
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job, extra []string) Result {
	res, err := j.run(ctx, extra)
	if ctx.Err() != nil {
		return res
	}
	if err != nil {
		s.logger.Error("task failed", "task", j.task.ID, "error", err)
	}
	s.logger.Debug("task ran", "task", j.task.ID, "duration", res.Duration, "exit_code", res.ExitCode)

	s.mu.Lock()
	s.last[j.task.ID] = res
	s.mu.Unlock()

	s.sink.Send(updates.One(j.task.ID, res.Output))

	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, res); err != nil {
			s.logger.Warn("record run failed", "task", j.task.ID, "error", err)
		}
	}
	return res
}
