package voices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/services"
	"podforge/internal/services/tts"
)

// PreviewEntry records one cached voice preview.
type PreviewEntry struct {
	Voice        string    `json:"voice"`
	AudioPath    string    `json:"audio_path"`
	MetadataPath string    `json:"metadata_path"`
	Simulated    bool      `json:"simulated,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Previews generates and caches voice preview clips. Successful previews are
// remembered across restarts via a JSON index; failures are never cached.
type Previews struct {
	audioDir string
	path     string
	logger   *slog.Logger
	synth    tts.Synthesizer
	group    singleflight.Group

	mu      sync.RWMutex
	entries map[string]PreviewEntry
}

// NewPreviews creates the preview cache backed by cfg's audio directory and
// cache path, loading any existing index from disk.
func NewPreviews(cfg *config.Config, logger *slog.Logger, synth tts.Synthesizer) *Previews {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "voicepreviews")

	p := &Previews{
		audioDir: cfg.Paths.AudioDir,
		path:     cfg.PreviewCachePath(),
		logger:   logger,
		synth:    synth,
		entries:  make(map[string]PreviewEntry),
	}
	if err := p.load(); err != nil {
		logger.Warn("failed to load preview cache",
			logging.String(logging.FieldEventType, "preview_cache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty; previews regenerate on demand"),
		)
	}
	return p
}

// PreviewText is the sample line synthesized for a voice.
func PreviewText(voice string) string {
	return fmt.Sprintf(
		"Hi! This is the %s voice. I could be the host of your next podcast episode.",
		titleCaser.String(voice),
	)
}

// Generate returns the preview for the named voice, synthesizing it on first
// use. Concurrent calls for the same voice share one synthesis.
func (p *Previews) Generate(ctx context.Context, name string) (PreviewEntry, error) {
	var empty PreviewEntry
	normalized := Normalize(name)
	if !Known(normalized) {
		return empty, services.Wrap(
			services.ErrUnknownVoice,
			"",
			"voice_preview",
			fmt.Sprintf("unknown voice %q", name),
			nil,
		)
	}

	if entry, ok := p.cached(normalized); ok {
		return entry, nil
	}

	result, err, shared := p.group.Do(normalized, func() (any, error) {
		// Re-check under the flight: a racing caller may have finished.
		if entry, ok := p.cached(normalized); ok {
			return entry, nil
		}
		return p.synthesize(ctx, normalized)
	})
	if err != nil {
		return empty, err
	}
	entry := result.(PreviewEntry)
	if shared {
		p.logger.Debug("preview request coalesced", logging.String(logging.FieldVoice, normalized))
	}
	return entry, nil
}

func (p *Previews) cached(voice string) (PreviewEntry, bool) {
	p.mu.RLock()
	entry, ok := p.entries[voice]
	p.mu.RUnlock()
	if !ok {
		return PreviewEntry{}, false
	}
	// A stale index entry whose audio file vanished forces regeneration.
	if _, err := os.Stat(entry.AudioPath); err != nil {
		return PreviewEntry{}, false
	}
	return entry, true
}

func (p *Previews) synthesize(ctx context.Context, voice string) (PreviewEntry, error) {
	var empty PreviewEntry
	outputPath := filepath.Join(p.audioDir, "preview_"+voice+".mp3")
	result, err := p.synth.Synthesize(ctx, tts.Request{
		Text:       PreviewText(voice),
		Voice:      voice,
		OutputPath: outputPath,
	})
	if err != nil {
		return empty, services.Wrap(
			services.ErrExternalService,
			"",
			"voice_preview",
			fmt.Sprintf("preview synthesis failed for %q", voice),
			err,
		)
	}
	entry := PreviewEntry{
		Voice:        voice,
		AudioPath:    result.AudioPath,
		MetadataPath: result.MetadataPath,
		Simulated:    result.Simulated,
		GeneratedAt:  time.Now().UTC(),
	}

	p.mu.Lock()
	p.entries[voice] = entry
	saveErr := p.save()
	p.mu.Unlock()
	if saveErr != nil {
		// The preview itself succeeded; a persistence failure only costs a
		// regeneration after restart.
		p.logger.Warn("failed to persist preview cache",
			logging.Error(saveErr),
			logging.String(logging.FieldVoice, voice),
		)
	}

	p.logger.Info("generated voice preview",
		logging.String(logging.FieldVoice, voice),
		logging.String("audio_path", entry.AudioPath),
		logging.Bool("simulated", entry.Simulated),
	)
	return entry, nil
}

// Count returns the number of cached previews.
func (p *Previews) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

func (p *Previews) load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read preview cache: %w", err)
	}
	entries := make(map[string]PreviewEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode preview cache: %w", err)
	}
	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
	return nil
}

// save persists the index with a tmp file and rename. Callers hold p.mu.
func (p *Previews) save() error {
	data, err := json.MarshalIndent(p.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preview cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write preview cache: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace preview cache: %w", err)
	}
	return nil
}
