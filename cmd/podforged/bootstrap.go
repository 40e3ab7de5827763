package main

import (
	"log/slog"

	"podforge/internal/config"
	"podforge/internal/research"
	"podforge/internal/scriptwriter"
	"podforge/internal/services/tts"
	"podforge/internal/stage"
	"podforge/internal/summarize"
	"podforge/internal/voice"
	"podforge/internal/voices"
)

func pipelineHandlers(cfg *config.Config, logger *slog.Logger) []stage.Handler {
	return []stage.Handler{
		research.New(cfg, logger),
		summarize.New(cfg, logger),
		scriptwriter.New(cfg, logger),
		voice.New(cfg, logger),
	}
}

func newPreviewCache(cfg *config.Config, logger *slog.Logger) *voices.Previews {
	client := tts.NewClient(tts.Config{
		APIKey:            cfg.TTS.APIKey,
		BaseURL:           cfg.TTS.BaseURL,
		Stability:         cfg.TTS.Stability,
		Clarity:           cfg.TTS.Clarity,
		RequestsPerMinute: cfg.TTS.RequestsPerMinute,
	})
	return voices.NewPreviews(cfg, logger, client)
}
