package voice

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/services"
	"podforge/internal/services/tts"
	"podforge/internal/stage"
)

// DefaultNarrator is the catalog voice used for episode audio.
const DefaultNarrator = "adam"

// AudioFileName returns the audio file name for a job.
func AudioFileName(jobID string) string {
	return "podcast_" + jobID + ".mp3"
}

// Handler renders the script to audio.
type Handler struct {
	cfg      *config.Config
	logger   *slog.Logger
	synth    tts.Synthesizer
	narrator string
}

// New constructs the voice stage handler using default dependencies.
func New(cfg *config.Config, logger *slog.Logger) *Handler {
	client := tts.NewClient(tts.Config{
		APIKey:            cfg.TTS.APIKey,
		BaseURL:           cfg.TTS.BaseURL,
		Stability:         cfg.TTS.Stability,
		Clarity:           cfg.TTS.Clarity,
		RequestsPerMinute: cfg.TTS.RequestsPerMinute,
	})
	return NewWithSynthesizer(cfg, logger, client)
}

// NewWithSynthesizer allows injecting the synthesizer (used in tests).
func NewWithSynthesizer(cfg *config.Config, logger *slog.Logger, synth tts.Synthesizer) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "voice"))
	}
	return &Handler{cfg: cfg, logger: stageLogger, synth: synth, narrator: DefaultNarrator}
}

func (h *Handler) Name() queue.Stage {
	return queue.StageVoice
}

func (h *Handler) Run(ctx context.Context, job *queue.Job, input stage.Artifact) (stage.Artifact, error) {
	logger := logging.WithContext(ctx, h.logger)
	script := strings.TrimSpace(input.Script)
	if script == "" {
		return input, services.Wrap(
			services.ErrValidation,
			string(queue.StageVoice),
			"validate inputs",
			"no script present for audio generation; the script stage must run first",
			nil,
		)
	}
	outputPath := filepath.Join(h.cfg.Paths.AudioDir, AudioFileName(job.ID))
	logger.Info("starting audio generation",
		logging.String("output_path", outputPath),
		logging.String(logging.FieldVoice, h.narrator),
		logging.Int("script_chars", len(script)),
	)

	result, err := h.synth.Synthesize(ctx, tts.Request{
		Text:       script,
		Voice:      h.narrator,
		OutputPath: outputPath,
	})
	if err != nil {
		return input, services.Wrap(
			services.ErrExternalService,
			string(queue.StageVoice),
			"synthesize",
			"audio synthesis failed",
			err,
		)
	}
	input.AudioPath = result.AudioPath

	logger.Info("audio generation completed",
		logging.String("audio_path", result.AudioPath),
		logging.String("metadata_path", result.MetadataPath),
		logging.Bool("simulated", result.Simulated),
	)
	return input, nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	name := string(h.Name())
	type configured interface{ Configured() bool }
	if c, ok := h.synth.(configured); ok && !c.Configured() {
		return stage.Health{Name: name, Ready: true, Detail: "no TTS key; audio is simulated"}
	}
	return stage.Healthy(name)
}
