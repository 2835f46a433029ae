package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// ScheduleTime is a time of day the reconciliation batch fires.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// String returns the time in HH:MM format.
func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses an HH:MM time of day.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	var hour, minute int
	_, err := fmt.Sscanf(s, "%d:%d", &hour, &minute)
	if err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}

	if hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid hour: %d (must be 0-23)", hour)
	}
	if minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid minute: %d (must be 0-59)", minute)
	}

	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// Scheduler fires the reconciliation batch at fixed times of day and
// feeds the resulting jobs through the worker pool.
type Scheduler struct {
	workerPool    *WorkerPool
	scheduleTimes []ScheduleTime
	runOnStartup  bool
	jobProvider   func(context.Context) ([]Job, error)

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	lastRunDate string
	mu          sync.RWMutex
}

// SchedulerConfig holds scheduler and worker pool settings.
type SchedulerConfig struct {
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
	JobProvider   func(context.Context) ([]Job, error)
}

// NewScheduler creates a scheduler; at least one schedule time is required.
func NewScheduler(config SchedulerConfig) (*Scheduler, error) {
	scheduleTimes := make([]ScheduleTime, 0, len(config.ScheduleTimes))
	for _, timeStr := range config.ScheduleTimes {
		st, err := ParseScheduleTime(timeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule time %q: %w", timeStr, err)
		}
		scheduleTimes = append(scheduleTimes, st)
	}

	if len(scheduleTimes) == 0 {
		return nil, fmt.Errorf("at least one schedule time is required")
	}

	workerPool := NewWorkerPool(config.WorkerCount, config.JobDelay, config.QueueSize)
	ctx, cancel := context.WithCancel(context.Background())

	log.Printf("Reconciler scheduled at %v (%d workers, %v between jobs)",
		config.ScheduleTimes, config.WorkerCount, config.JobDelay)

	return &Scheduler{
		workerPool:    workerPool,
		scheduleTimes: scheduleTimes,
		runOnStartup:  config.RunOnStartup,
		jobProvider:   config.JobProvider,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start launches the scheduler and worker pool.
func (s *Scheduler) Start() {
	s.workerPool.Start()

	if s.runOnStartup {
		log.Println("Reconciler: running initial audit on startup")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runJobs()
		}()
	}

	s.wg.Add(1)
	go s.scheduleLoop()

	log.Println("Reconciler started")
}

func (s *Scheduler) scheduleLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case now := <-ticker.C:
			if s.shouldRun(now) {
				log.Printf("Reconciler: triggered at %s", now.Format("15:04"))
				s.runJobs()
			}
		}
	}
}

// shouldRun reports whether now matches a schedule time. The per-minute key
// in lastRunDate keeps a slow tick from firing the same minute twice.
func (s *Scheduler) shouldRun(now time.Time) bool {
	currentHour := now.Hour()
	currentMinute := now.Minute()
	currentKey := fmt.Sprintf("%s-%02d:%02d", now.Format("2006-01-02"), currentHour, currentMinute)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRunDate == currentKey {
		return false
	}

	for _, st := range s.scheduleTimes {
		if currentHour == st.Hour && currentMinute == st.Minute {
			s.lastRunDate = currentKey
			return true
		}
	}

	return false
}

// runJobs asks the provider for the audit batch and hands it to the pool.
func (s *Scheduler) runJobs() {
	if s.jobProvider == nil {
		log.Println("Reconciler: no job provider configured")
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	jobs, err := s.jobProvider(ctx)
	if err != nil {
		log.Printf("Reconciler: failed to build job batch: %v", err)
		return
	}

	if len(jobs) == 0 {
		log.Println("Reconciler: nothing to audit")
		return
	}

	log.Printf("Reconciler: submitting %d audit jobs", len(jobs))
	s.workerPool.SubmitBatch(jobs)
}

// Shutdown stops the scheduling loop, then drains the worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Println("Reconciler: timeout waiting for scheduling loop to stop")
	}

	s.workerPool.ShutdownWithTimeout(timeout)

	log.Println("Reconciler: shutdown complete")
}

// TriggerNow runs the audit batch immediately, outside the schedule.
func (s *Scheduler) TriggerNow() {
	log.Println("Reconciler: manual trigger")
	go s.runJobs()
}

// GetNextScheduledTime returns the next time the batch will fire, rolling
// over to the first schedule time tomorrow when today's have passed.
func (s *Scheduler) GetNextScheduledTime() time.Time {
	now := time.Now()

	for _, st := range s.scheduleTimes {
		scheduledTime := time.Date(now.Year(), now.Month(), now.Day(), st.Hour, st.Minute, 0, 0, now.Location())
		if scheduledTime.After(now) {
			return scheduledTime
		}
	}

	if len(s.scheduleTimes) > 0 {
		st := s.scheduleTimes[0]
		tomorrow := now.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), st.Hour, st.Minute, 0, 0, now.Location())
	}

	return time.Time{}
}

// GetScheduleTimes returns the configured times of day.
func (s *Scheduler) GetScheduleTimes() []ScheduleTime {
	return s.scheduleTimes
}
