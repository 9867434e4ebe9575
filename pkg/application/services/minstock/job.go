package minstock

import (
	"sync"
	"time"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
)

// DefaultErrorCap bounds the failed item ids a job keeps
const DefaultErrorCap = 100

// Phase is the lifecycle stage of the batch job
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
	PhaseError
)

// String method for Phase enum
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// JobStatus is a point-in-time view of the batch job
type JobStatus struct {
	ID           string        `json:"id,omitempty"`
	Phase        Phase         `json:"phase"`
	Total        int           `json:"total"`
	Processed    int           `json:"processed"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	FailedItems  []string      `json:"failed_items,omitempty"`
	ErrorMessage string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at,omitempty"`
	FinishedAt   time.Time     `json:"finished_at,omitempty"`
	ETA          time.Duration `json:"eta"`
}

// Running reports whether the job is in progress
func (s JobStatus) Running() bool {
	return s.Phase == PhaseRunning
}

// JobState is the idle -> running -> completed|error state machine of the single batch job.
// A finished job may be started again.
type JobState struct {
	mu       sync.Mutex
	status   JobStatus
	clock    shared.Clock
	errorCap int
}

// NewJobState creates an idle job state
func NewJobState(clock shared.Clock, errorCap int) *JobState {
	if clock == nil {
		clock = shared.SystemClock
	}
	if errorCap <= 0 {
		errorCap = DefaultErrorCap
	}
	return &JobState{clock: clock, errorCap: errorCap}
}

// TryStart moves the job to running. While a job runs it returns the running status and false.
func (j *JobState) TryStart(id string) (JobStatus, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Phase == PhaseRunning {
		return j.snapshotLocked(), false
	}
	j.status = JobStatus{
		ID:        id,
		Phase:     PhaseRunning,
		StartedAt: j.clock(),
	}
	return j.snapshotLocked(), true
}

// SetTotal records the number of items the job will process
func (j *JobState) SetTotal(total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status.Total = total
}

// Record adds the outcome of a processed sub-batch. Failed ids past the cap are counted
// but not kept.
func (j *JobState) Record(succeeded int, failedIDs []string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.status.Succeeded += succeeded
	j.status.Failed += len(failedIDs)
	j.status.Processed += succeeded + len(failedIDs)
	for _, id := range failedIDs {
		if len(j.status.FailedItems) >= j.errorCap {
			break
		}
		j.status.FailedItems = append(j.status.FailedItems, id)
	}
}

// Complete moves a running job to completed
func (j *JobState) Complete() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Phase != PhaseRunning {
		return
	}
	j.status.Phase = PhaseCompleted
	j.status.FinishedAt = j.clock()
}

// Fail moves a running job to error with the message of err
func (j *JobState) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Phase != PhaseRunning {
		return
	}
	j.status.Phase = PhaseError
	j.status.ErrorMessage = err.Error()
	j.status.FinishedAt = j.clock()
}

// Snapshot returns a copy of the current status with a throughput-based ETA
func (j *JobState) Snapshot() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshotLocked()
}

func (j *JobState) snapshotLocked() JobStatus {
	s := j.status
	s.FailedItems = append([]string(nil), j.status.FailedItems...)
	s.ETA = 0

	if s.Phase == PhaseRunning && s.Processed > 0 && s.Total > s.Processed {
		elapsed := j.clock().Sub(s.StartedAt)
		perItem := elapsed / time.Duration(s.Processed)
		s.ETA = perItem * time.Duration(s.Total-s.Processed)
	}
	return s
}
