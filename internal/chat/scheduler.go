package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs delayed reply simulation and other side-effect tasks on a
// fixed-size worker pool shared across all conversations. Scheduling never
// blocks the caller; a slow reply for one conversation never blocks sends to
// others.
type Scheduler struct {
	dir     Directory
	delay   time.Duration
	workers int
	logger  *zap.Logger

	jobs   chan func(context.Context)
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewScheduler creates a scheduler with the given pool size and backlog depth.
func NewScheduler(dir Directory, delay time.Duration, workers, queueDepth int, logger *zap.Logger) *Scheduler {
	if workers <= 0 {
		workers = 4
	}
	if queueDepth <= 0 {
		queueDepth = 64
	}
	return &Scheduler{
		dir:     dir,
		delay:   delay,
		workers: workers,
		logger:  logger,
		jobs:    make(chan func(context.Context), queueDepth),
	}
}

// Start spawns the worker pool.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.ctx, s.cancel = ctx, cancel
	s.mu.Unlock()
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	s.logger.Info("scheduler started",
		zap.Int("workers", s.workers),
		zap.Duration("reply_delay", s.delay))
}

// Stop refuses new work, cancels in-flight delays and waits for the workers.
// A reply abandoned mid-delay appends nothing; completed appends stay
// consistent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// Schedule enqueues a simulated correspondent reply to the given incoming
// text. After the typing delay, the reply is synthesized from the contact's
// reply rule, appended to conv, and done is invoked. Append and callback are
// atomic from the caller's view: on shutdown mid-delay, neither happens.
func (s *Scheduler) Schedule(conv *Conversation, incoming string, done func()) {
	s.submit(func(ctx context.Context) {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		text, err := s.dir.Reply(conv.ContactID(), incoming)
		if err != nil {
			// Reported, not retried: the user's own message is already
			// appended and stays.
			s.logger.Error("reply synthesis failed",
				zap.Error(err), zap.Int64("contact", conv.ContactID()))
			return
		}
		msg, err := NewMessage(conv.ContactID(), text, "", "")
		if err != nil {
			s.logger.Error("reply rejected",
				zap.Error(err), zap.Int64("contact", conv.ContactID()))
			return
		}
		conv.Append(msg)
		if done != nil {
			done()
		}
	})
}

// Submit runs an arbitrary side-effect task on the pool.
func (s *Scheduler) Submit(task func(context.Context)) {
	s.submit(task)
}

func (s *Scheduler) submit(job func(context.Context)) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.logger.Warn("scheduler stopped, task dropped")
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	select {
	case s.jobs <- job:
	default:
		// Backlog full: park the hand-off in a goroutine so the caller
		// still returns immediately and the task is not lost.
		s.logger.Warn("scheduler backlog full, parking task")
		go func() {
			if ctx == nil {
				s.jobs <- job
				return
			}
			select {
			case s.jobs <- job:
			case <-ctx.Done():
			}
		}()
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.run(ctx, job)
		}
	}
}

// run executes one task with panic isolation: a panicking task is logged and
// its reply dropped, but the pool keeps serving.
func (s *Scheduler) run(ctx context.Context, job func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked", zap.Any("panic", r))
		}
	}()
	job(ctx)
}
