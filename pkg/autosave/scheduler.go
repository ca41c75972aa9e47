package autosave

import (
	"sync"
	"time"
)

// Task is a scheduled callback. Stop reports whether it prevented the call.
type Task interface {
	Stop() bool
}

// Scheduler arms delayed callbacks.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func()) Task
}

// TimerScheduler schedules with time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(delay time.Duration, fn func()) Task {
	return time.AfterFunc(delay, fn)
}

// ManualScheduler runs callbacks only when Fire is called. It lets tests and
// batch drivers decide when a debounced save happens.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *manualTask) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.fired = true
	return true
}

func (s *ManualScheduler) AfterFunc(delay time.Duration, fn func()) Task {
	task := &manualTask{delay: delay, fn: fn}
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	return task
}

// Pending counts armed tasks that were neither stopped nor fired.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, task := range s.tasks {
		task.mu.Lock()
		if !task.stopped && !task.fired {
			n++
		}
		task.mu.Unlock()
	}
	return n
}

// LastDelay returns the delay of the most recently armed task.
func (s *ManualScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return 0
	}
	return s.tasks[len(s.tasks)-1].delay
}

// Fire runs every pending task in arming order and returns how many ran.
func (s *ManualScheduler) Fire() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	ran := 0
	for _, task := range tasks {
		if task.claim() {
			task.fn()
			ran++
		}
	}
	return ran
}
