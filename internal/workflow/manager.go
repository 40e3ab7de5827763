package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/stage"
)

// Manager drives queued jobs through the pipeline with one worker goroutine.
type Manager struct {
	cfg           *config.Config
	store         *queue.Store
	logger        *slog.Logger
	handlers      []stage.Handler
	pollInterval  time.Duration
	retryInterval time.Duration
	stageTimeout  time.Duration
	wake          chan struct{}

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastErr   error
	lastJobID string
}

// NewManager constructs a workflow manager. Handlers must cover the pipeline
// stages in traversal order; registration is validated at (*Manager).Start.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, handlers ...stage.Handler) *Manager {
	managerLogger := logger
	if managerLogger != nil {
		managerLogger = managerLogger.With(logging.String(logging.FieldComponent, "workflow"))
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		logger:        managerLogger,
		handlers:      handlers,
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		stageTimeout:  time.Duration(cfg.Workflow.StageTimeout) * time.Second,
		wake:          make(chan struct{}, 1),
	}
}

func (m *Manager) validateHandlers() error {
	want := queue.PipelineStages()
	if len(m.handlers) != len(want) {
		return fmt.Errorf("workflow needs %d stage handlers, have %d", len(want), len(m.handlers))
	}
	for i, handler := range m.handlers {
		if handler == nil {
			return errors.New("workflow stage handler is nil")
		}
		if handler.Name() != want[i] {
			return fmt.Errorf("workflow stage %d is %q, want %q", i, handler.Name(), want[i])
		}
	}
	return nil
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.validateHandlers(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the worker to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Notify wakes the worker so a freshly submitted job is picked up without
// waiting out the poll interval.
func (m *Manager) Notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	m.recoverInterrupted(ctx, logger)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.NextQueued(ctx)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to fetch next queued job",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
			m.sleep(ctx, m.retryInterval)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx)
			continue
		}

		if err := m.processJob(ctx, logger, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
		}
	}
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context) {
	timer := time.NewTimer(m.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-m.wake:
	case <-timer.C:
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(id string) {
	m.mu.Lock()
	m.lastJobID = id
	m.mu.Unlock()
}
