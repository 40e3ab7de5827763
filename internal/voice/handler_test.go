package voice_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/services"
	"podforge/internal/services/tts"
	"podforge/internal/stage"
	"podforge/internal/voice"
)

func newHandler(t *testing.T) (*voice.Handler, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.AudioDir = t.TempDir()
	client := tts.NewClient(tts.Config{})
	return voice.NewWithSynthesizer(&cfg, logging.NewNop(), client), &cfg
}

func TestRunWritesAudioAndMetadata(t *testing.T) {
	handler, cfg := newHandler(t)
	job := &queue.Job{ID: "abc123", Topic: "Tides"}
	input := stage.Artifact{Script: "Alex: Welcome.\nJamie: Hello."}

	out, err := handler.Run(context.Background(), job, input)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	wantAudio := filepath.Join(cfg.Paths.AudioDir, "podcast_abc123.mp3")
	if out.AudioPath != wantAudio {
		t.Fatalf("audio path = %q, want %q", out.AudioPath, wantAudio)
	}
	if _, err := os.Stat(wantAudio); err != nil {
		t.Fatalf("audio file missing: %v", err)
	}
	if _, err := os.Stat(tts.MetadataPath(wantAudio)); err != nil {
		t.Fatalf("metadata file missing: %v", err)
	}
}

func TestRunRequiresScript(t *testing.T) {
	handler, _ := newHandler(t)
	job := &queue.Job{ID: "abc123"}

	_, err := handler.Run(context.Background(), job, stage.Artifact{Script: "   "})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

type failingSynth struct{}

func (failingSynth) Synthesize(ctx context.Context, req tts.Request) (tts.Result, error) {
	return tts.Result{}, errors.New("disk full")
}

func TestRunWrapsSynthesisFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.AudioDir = t.TempDir()
	handler := voice.NewWithSynthesizer(&cfg, logging.NewNop(), failingSynth{})
	job := &queue.Job{ID: "abc123"}

	_, err := handler.Run(context.Background(), job, stage.Artifact{Script: "Alex: Hi."})
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
}

func TestHealthCheckReportsSimulatedMode(t *testing.T) {
	handler, _ := newHandler(t)
	health := handler.HealthCheck(context.Background())
	if !health.Ready {
		t.Fatalf("health = %+v", health)
	}
	if health.Detail == "" {
		t.Fatal("expected simulated-mode detail without a TTS key")
	}
}

func TestAudioFileName(t *testing.T) {
	if got := voice.AudioFileName("xyz"); got != "podcast_xyz.mp3" {
		t.Fatalf("AudioFileName = %q", got)
	}
}
