package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/services"
	"podforge/internal/stage"
)

func (m *Manager) processJob(ctx context.Context, logger *slog.Logger, job *queue.Job) error {
	jobCtx := services.WithJobID(ctx, job.ID)
	jobLogger := logging.WithContext(jobCtx, logger)
	m.setLastJob(job.ID)

	if _, err := m.store.Update(ctx, job.ID, func(j *queue.Job) error {
		if j.Status != queue.StatusQueued {
			return fmt.Errorf("job is %s, not queued", j.Status)
		}
		now := time.Now().UTC()
		j.Status = queue.StatusRunning
		j.CurrentStage = queue.StageResearch
		j.StartedAt = &now
		j.AppendUpdate(queue.StageResearch, "Starting podcast creation process")
		return nil
	}); err != nil {
		jobLogger.Error("failed to claim queued job", logging.Error(err))
		return err
	}
	jobLogger.Info("started podcast generation", logging.String("topic", job.Topic))

	artifact := stage.Artifact{}
	for i, handler := range m.handlers {
		final := i == len(m.handlers)-1
		name := handler.Name()
		stageCtx := services.WithStage(jobCtx, string(name))
		stageLogger := logging.WithContext(stageCtx, logger)

		if _, err := m.store.Update(ctx, job.ID, func(j *queue.Job) error {
			j.CurrentStage = name
			j.AppendUpdate(name, stageStartMessage(name))
			return nil
		}); err != nil {
			stageLogger.Error("failed to record stage start", logging.Error(err))
			return err
		}

		out, err := m.runStage(stageCtx, handler, job, artifact)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				// Daemon shutdown mid-stage. The job stays running and is
				// re-queued on the next start.
				return context.Canceled
			}
			message := services.FailureMessage(err)
			stageLogger.Error("stage failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "stage_failed"),
			)
			if _, updateErr := m.store.Update(ctx, job.ID, func(j *queue.Job) error {
				j.SetFailed(message)
				return nil
			}); updateErr != nil {
				stageLogger.Error("failed to record job failure", logging.Error(updateErr))
			}
			return err
		}
		artifact = out

		// The final stage's progress hits 100 in the same write that marks
		// the job completed, so readers never see 100 on a running job.
		if _, err := m.store.Update(ctx, job.ID, func(j *queue.Job) error {
			j.Progress = queue.ProgressForStage(name)
			applyStageResults(j, name, artifact)
			j.AppendUpdate(name, stageDoneMessage(name, artifact))
			if final {
				now := time.Now().UTC()
				j.Status = queue.StatusCompleted
				j.CurrentStage = queue.StageComplete
				j.FinishedAt = &now
				j.AppendUpdate(queue.StageComplete, "Podcast creation completed successfully")
			}
			return nil
		}); err != nil {
			stageLogger.Error("failed to record stage completion", logging.Error(err))
			return err
		}
		stageLogger.Info("stage completed", logging.Int("progress", queue.ProgressForStage(name)))
	}
	jobLogger.Info("podcast generation completed", logging.String("audio_path", artifact.AudioPath))
	return nil
}

func (m *Manager) runStage(ctx context.Context, handler stage.Handler, job *queue.Job, input stage.Artifact) (stage.Artifact, error) {
	if m.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.stageTimeout)
		defer cancel()
	}
	return handler.Run(ctx, job.Clone(), input)
}

// recoverInterrupted re-queues jobs left running by an earlier process so
// they are picked up again instead of staying stuck.
func (m *Manager) recoverInterrupted(ctx context.Context, logger *slog.Logger) {
	running, err := m.store.Running(ctx)
	if err != nil {
		logger.Warn("failed to check for interrupted jobs", logging.Error(err))
		return
	}
	if running == nil {
		return
	}
	if _, err := m.store.Update(ctx, running.ID, func(j *queue.Job) error {
		j.Status = queue.StatusQueued
		j.CurrentStage = ""
		j.Progress = 0
		j.StartedAt = nil
		j.AppendUpdate("", "Generation was interrupted; job re-queued")
		return nil
	}); err != nil {
		logger.Warn("failed to re-queue interrupted job",
			logging.Error(err),
			logging.String(logging.FieldJobID, running.ID),
		)
		return
	}
	logger.Info("re-queued interrupted job", logging.String(logging.FieldJobID, running.ID))
}

func applyStageResults(j *queue.Job, name queue.Stage, artifact stage.Artifact) {
	switch name {
	case queue.StageResearch:
		j.Results.Research = artifact.Research
	case queue.StageSummarize:
		j.Results.Summary = artifact.Summary
	case queue.StageScript:
		j.Results.Script = artifact.Script
	case queue.StageVoice:
		j.Results.AudioPath = artifact.AudioPath
	}
}

func stageStartMessage(name queue.Stage) string {
	switch name {
	case queue.StageResearch:
		return "Starting research on trending topics"
	case queue.StageSummarize:
		return "Summarizing research findings"
	case queue.StageScript:
		return "Writing the podcast script"
	case queue.StageVoice:
		return "Generating podcast audio"
	default:
		return "Starting " + string(name)
	}
}

func stageDoneMessage(name queue.Stage, artifact stage.Artifact) string {
	switch name {
	case queue.StageResearch:
		return fmt.Sprintf("Research completed, found %d trending topics", len(artifact.Research.Topics))
	case queue.StageSummarize:
		return "Summary completed"
	case queue.StageScript:
		return "Script completed"
	case queue.StageVoice:
		return fmt.Sprintf("Audio generated and saved to %s", artifact.AudioPath)
	default:
		return string(name) + " completed"
	}
}
