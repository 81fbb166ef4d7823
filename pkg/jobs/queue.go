package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the lifecycle state of a queued job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusRetrying  Status = "retrying"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job represents a queued background task.
type Job struct {
	ID   string
	Type string
	// Owner identifies who may inspect the job state.
	Owner    string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// State is the observable record of a job.
type State struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Owner     string    `json:"-"`
	Status    Status    `json:"status"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error,omitempty"`
	Result    any       `json:"result,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Handler processes a job. The returned value is kept as the job result.
type Handler func(context.Context, Job) (any, error)

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// StateTTL bounds how long finished job states stay queryable.
	StateTTL time.Duration
	Logger   *zap.Logger
}

// Queue is an in-memory job dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	stateTTL   time.Duration
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool

	statesMu sync.RWMutex
	states   map[string]*State
	now      func() time.Time
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		stateTTL:   cfg.StateTTL,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
		states:     make(map[string]*State),
		now:        time.Now,
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a job onto the queue and returns its id.
func (q *Queue) Enqueue(job Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	q.setState(job, StatusQueued, nil, nil)
	if err := q.push(job); err != nil {
		q.statesMu.Lock()
		delete(q.states, job.ID)
		q.statesMu.Unlock()
		return "", err
	}
	return job.ID, nil
}

// Status reports the last known state of a job.
func (q *Queue) Status(id string) (State, bool) {
	q.statesMu.RLock()
	defer q.statesMu.RUnlock()
	state, ok := q.states[id]
	if !ok {
		return State{}, false
	}
	return *state, true
}

func (q *Queue) push(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = q.now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s is full", q.name)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.setState(job, StatusRunning, nil, nil)
			result, err := q.handler(q.ctx, job)
			if err != nil {
				q.handleFailure(job, err)
				continue
			}
			q.setState(job, StatusSucceeded, result, nil)
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	if job.Attempt > q.maxRetries {
		q.setState(job, StatusFailed, nil, err)
		q.logger.Sugar().Errorw("job exceeded retries", "queue", q.name, "job_id", job.ID, "type", job.Type, "error", err)
		return
	}
	q.setState(job, StatusRetrying, nil, err)
	q.logger.Sugar().Warnw("job failed, retrying", "queue", q.name, "job_id", job.ID, "type", job.Type, "attempt", job.Attempt, "error", err)

	go func(j Job) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
			if err := q.push(j); err != nil {
				q.setState(j, StatusFailed, nil, err)
				q.logger.Sugar().Errorw("failed to requeue job", "queue", q.name, "job_id", j.ID, "error", err)
			}
		}
	}(job)
}

func (q *Queue) setState(job Job, status Status, result any, err error) {
	now := q.now().UTC()

	q.statesMu.Lock()
	defer q.statesMu.Unlock()

	state := &State{ID: job.ID, Type: job.Type, Owner: job.Owner, Status: status, Attempts: job.Attempt, Result: result, UpdatedAt: now}
	if err != nil {
		state.Error = err.Error()
	}
	if status == StatusQueued {
		q.evictExpiredLocked(now)
	}
	q.states[job.ID] = state
}

func (q *Queue) evictExpiredLocked(now time.Time) {
	for id, state := range q.states {
		finished := state.Status == StatusSucceeded || state.Status == StatusFailed
		if finished && now.Sub(state.UpdatedAt) > q.stateTTL {
			delete(q.states, id)
		}
	}
}
