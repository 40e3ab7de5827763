package workflow

import (
	"context"

	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastJobID   string
	QueueStats  map[queue.Status]int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastJobID := m.lastJobID
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil && m.logger != nil {
		m.logger.Warn("failed to read queue stats", logging.Error(err))
	}

	health := make(map[string]stage.Health, len(m.handlers))
	for _, handler := range m.handlers {
		if handler == nil {
			continue
		}
		health[string(handler.Name())] = handler.HealthCheck(ctx)
	}

	summary := StatusSummary{
		Running:     running,
		LastJobID:   lastJobID,
		QueueStats:  stats,
		StageHealth: health,
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	return summary
}
