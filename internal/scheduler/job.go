package scheduler

import (
	"context"
	"sync"
	"time"
)

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes the job; ctx is cancelled when the scheduler stops
	Run(ctx context.Context) error

	// Schedule is a cron expression with a leading seconds field,
	// e.g. "0 30 18 * * 1-5", or a descriptor such as "@daily"
	Schedule() string
}

// JobResult is the outcome of one run
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

const maxHistory = 100

// JobHistory keeps the latest results of one job
type JobHistory struct {
	mu      sync.Mutex
	results []JobResult
}

// AddResult appends a result, dropping the oldest past maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append(h.results, result)
	if len(h.results) > maxHistory {
		h.results = h.results[len(h.results)-maxHistory:]
	}
}

// Latest returns up to n of the most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > len(h.results) {
		n = len(h.results)
	}
	return append([]JobResult(nil), h.results[len(h.results)-n:]...)
}

// Failed returns all failed results
func (h *JobHistory) Failed() []JobResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	failed := make([]JobResult, 0)
	for _, result := range h.results {
		if !result.Success {
			failed = append(failed, result)
		}
	}
	return failed
}

// SuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) SuccessRate() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.results) == 0 {
		return 0.0
	}

	successCount := 0
	for _, result := range h.results {
		if result.Success {
			successCount++
		}
	}
	return float64(successCount) / float64(len(h.results))
}
