package api

import (
	"path/filepath"
	"time"

	"podforge/internal/queue"
	"podforge/internal/workflow"
)

// FromJob converts a queue record to its API representation.
func FromJob(job *queue.Job) Podcast {
	if job == nil {
		return Podcast{}
	}
	dto := Podcast{
		ID:           job.ID,
		Topic:        job.Topic,
		Hosts:        []string{job.Hosts[0], job.Hosts[1]},
		Status:       string(job.Status),
		Progress:     job.Progress,
		CurrentStage: string(job.CurrentStage),
		Error:        job.ErrorMessage,
		StartTime:    formatTimePtr(job.StartedAt),
		EndTime:      formatTimePtr(job.FinishedAt),
		Updates:      fromUpdates(job.Updates),
		Results:      fromResults(job.Results),
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// FromJobs converts a slice of queue records into API DTOs.
func FromJobs(jobs []*queue.Job) []Podcast {
	out := make([]Podcast, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

func fromUpdates(updates []queue.Update) []UpdateEntry {
	out := make([]UpdateEntry, 0, len(updates))
	for _, update := range updates {
		out = append(out, UpdateEntry{
			Time:    update.Time.UTC().Format(time.RFC3339),
			Stage:   string(update.Stage),
			Message: update.Message,
		})
	}
	return out
}

func fromResults(results queue.Results) Results {
	out := Results{
		Research: Research{
			Sources: make([]Source, 0, len(results.Research.Sources)),
			Topics:  results.Research.Topics,
		},
		Summary: results.Summary,
		Script:  results.Script,
	}
	if out.Research.Topics == nil {
		out.Research.Topics = []string{}
	}
	for _, source := range results.Research.Sources {
		out.Research.Sources = append(out.Research.Sources, Source{Title: source.Title, URL: source.URL})
	}
	if results.AudioPath != "" {
		// Clients resolve audio through the audio endpoint, not the raw path.
		out.AudioURL = "/audio/" + filepath.Base(results.AudioPath)
	}
	return out
}

// FromStatusSummary converts workflow diagnostics to the wire shape.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:     summary.Running,
		LastError:   summary.LastError,
		LastJobID:   summary.LastJobID,
		QueueStats:  make(map[string]int, len(summary.QueueStats)),
		StageHealth: make(map[string]StageHealth, len(summary.StageHealth)),
	}
	for st, count := range summary.QueueStats {
		status.QueueStats[string(st)] = count
	}
	for name, health := range summary.StageHealth {
		status.StageHealth[name] = StageHealth{Ready: health.Ready, Detail: health.Detail}
	}
	return status
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
