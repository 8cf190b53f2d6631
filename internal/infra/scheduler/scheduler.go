// Package scheduler implements an in-memory intake queue for batch
// processing of unassigned tasks. It is not on the single-task
// assign/complete path (§4.5, §4.7 run synchronously against the
// store); it exists for a background worker or CLI command that wants
// to auto-assign many pending tasks in priority order without
// starving low-priority ones, and without overloading the bandit and
// storage layer when a large backlog shows up at once.
package scheduler

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/infra/metrics"
)

// Config configures the intake queue.
type Config struct {
	MaxQueueDepth      int           // not consulted by Enqueue; BackPressureHard is the depth that rejects everything (default 10_000)
	BackPressureSoft   int           // reject the lowest-urgency class at this depth (default 1_000)
	BackPressureMedium int           // reject everything but the highest-urgency class (default 5_000)
	BackPressureHard   int           // reject everything (default 10_000)
	StarvationInterval time.Duration // boost a class every N in queue (default 60s)
}

// DefaultConfig returns production intake-queue defaults.
func DefaultConfig() Config {
	return Config{
		MaxQueueDepth:      10_000,
		BackPressureSoft:   1_000,
		BackPressureMedium: 5_000,
		BackPressureHard:   10_000,
		StarvationInterval: 60 * time.Second,
	}
}

// Priority classes mirror domain.Task.Priority (1..5, 5 = most urgent).
const (
	minPriority = 1
	maxPriority = 5
)

// QueuedTask wraps a task id awaiting assignment.
type QueuedTask struct {
	TaskID   string
	Priority int
	QueuedAt time.Time
}

// EffectivePriority applies a starvation-prevention age boost: every
// starvationInterval spent in queue raises the task's effective
// priority by one class, capped at maxPriority, so an old low-priority
// task eventually outranks a freshly queued high-priority one.
func (qt QueuedTask) EffectivePriority(starvationInterval time.Duration) int {
	if starvationInterval <= 0 {
		return qt.Priority
	}
	age := time.Since(qt.QueuedAt)
	boost := int(age / starvationInterval)
	effective := qt.Priority + boost
	if effective > maxPriority {
		effective = maxPriority
	}
	return effective
}

// BackPressureLevel indicates intake load severity.
type BackPressureLevel int

const (
	BPNone   BackPressureLevel = iota // accepting all tasks
	BPSoft                            // rejecting the lowest-urgency class
	BPMedium                          // rejecting all but the highest-urgency class
	BPHard                            // rejecting everything
)

// String returns a human-readable back-pressure level.
func (bp BackPressureLevel) String() string {
	switch bp {
	case BPNone:
		return "NONE"
	case BPSoft:
		return "SOFT"
	case BPMedium:
		return "MEDIUM"
	case BPHard:
		return "HARD"
	default:
		return "UNKNOWN"
	}
}

// Scheduler is an in-memory priority intake queue for unassigned tasks.
type Scheduler struct {
	mu     sync.Mutex
	config Config

	// One queue per priority class, indexed by priority-1 (0..4).
	queues [maxPriority][]QueuedTask

	totalEnqueued atomic.Int64
	totalDequeued atomic.Int64
	totalRejected atomic.Int64
}

// NewScheduler creates a new intake queue.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{config: cfg}
}

// Enqueue adds a task to its priority class queue. Returns an error if
// back-pressure rejects the task at the current load level.
func (s *Scheduler) Enqueue(taskID string, priority int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	depth := s.queueDepthLocked()
	bp := s.backPressureLevelLocked(depth)

	switch bp {
	case BPHard:
		s.totalRejected.Add(1)
		metrics.IntakeRejections.Inc()
		return domain.ErrIntakeQueueSaturated
	case BPMedium:
		if priority < maxPriority {
			s.totalRejected.Add(1)
			metrics.IntakeRejections.Inc()
			return domain.ErrIntakeQueueBackPressure
		}
	case BPSoft:
		if priority <= minPriority {
			s.totalRejected.Add(1)
			metrics.IntakeRejections.Inc()
			return domain.ErrIntakeQueueBackPressure
		}
	}

	pClass := clampPriority(priority)
	s.queues[pClass-1] = append(s.queues[pClass-1], QueuedTask{
		TaskID:   taskID,
		Priority: pClass,
		QueuedAt: time.Now(),
	})
	s.totalEnqueued.Add(1)
	metrics.IntakeQueueDepth.Set(float64(depth + 1))
	return nil
}

// Dequeue removes and returns the task with the best effective
// priority across all classes, or nil if the queue is empty.
func (s *Scheduler) Dequeue() *QueuedTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	bestClass, bestIdx := -1, -1
	bestEffective := math.MinInt

	for c := 0; c < maxPriority; c++ {
		for i, qt := range s.queues[c] {
			eff := qt.EffectivePriority(s.config.StarvationInterval)
			if eff > bestEffective {
				bestEffective = eff
				bestClass = c
				bestIdx = i
			}
		}
	}

	if bestIdx < 0 {
		return nil
	}

	qt := s.queues[bestClass][bestIdx]
	s.queues[bestClass] = append(s.queues[bestClass][:bestIdx], s.queues[bestClass][bestIdx+1:]...)
	s.totalDequeued.Add(1)
	metrics.IntakeQueueDepth.Set(float64(s.queueDepthLocked()))
	return &qt
}

// Stats summarizes current intake queue state.
type Stats struct {
	QueueDepth    int               `json:"queue_depth"`
	BackPressure  BackPressureLevel `json:"back_pressure"`
	QueueByClass  [maxPriority]int  `json:"queue_by_class"`
	TotalEnqueued int64             `json:"total_enqueued"`
	TotalDequeued int64             `json:"total_dequeued"`
	TotalRejected int64             `json:"total_rejected"`
}

// Stats returns current intake queue statistics.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	depth := s.queueDepthLocked()
	bp := s.backPressureLevelLocked(depth)
	var byClass [maxPriority]int
	for i := 0; i < maxPriority; i++ {
		byClass[i] = len(s.queues[i])
	}
	s.mu.Unlock()

	return Stats{
		QueueDepth:    depth,
		BackPressure:  bp,
		QueueByClass:  byClass,
		TotalEnqueued: s.totalEnqueued.Load(),
		TotalDequeued: s.totalDequeued.Load(),
		TotalRejected: s.totalRejected.Load(),
	}
}

// QueueDepth returns total tasks across all priority classes.
func (s *Scheduler) QueueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queueDepthLocked()
}

// BackPressureLevel returns the current back-pressure level.
func (s *Scheduler) BackPressureLevel() BackPressureLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backPressureLevelLocked(s.queueDepthLocked())
}

func (s *Scheduler) queueDepthLocked() int {
	total := 0
	for i := 0; i < maxPriority; i++ {
		total += len(s.queues[i])
	}
	return total
}

func (s *Scheduler) backPressureLevelLocked(depth int) BackPressureLevel {
	switch {
	case depth >= s.config.BackPressureHard:
		return BPHard
	case depth >= s.config.BackPressureMedium:
		return BPMedium
	case depth >= s.config.BackPressureSoft:
		return BPSoft
	default:
		return BPNone
	}
}

func clampPriority(p int) int {
	if p < minPriority {
		return minPriority
	}
	if p > maxPriority {
		return maxPriority
	}
	return p
}
