package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"podforge/internal/services"
)

const (
	defaultBaseURL        = "https://api.elevenlabs.io/v1"
	defaultHTTPTimeout    = 60 * time.Second
	defaultStability      = 0.7
	defaultClarity        = 0.75
	defaultRequestsPerMin = 30

	modelID          = "eleven_monolingual_v1"
	audioSuffix      = ".mp3"
	metadataSuffix   = "_metadata.json"
	simulatedTTSNote = "simulated synthesis; no upstream audio was generated"
)

// simulatedMP3Header is the minimal frame header written in place of real
// audio when synthesis is simulated.
var simulatedMP3Header = []byte{
	0xFF, 0xFB, 0x90, 0x44, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// voiceIDs maps the lower-case catalog names to upstream voice identifiers.
var voiceIDs = map[string]string{
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"antoni": "ErXwobaYiN019PkySvjV",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"elli":   "MF3mGyEYCl7XYWbV9V6O",
	"josh":   "TxGEqnHWrfWFTfGW9XjX",
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"sam":    "yoZ06aMxZJJ28mfd3POQ",
}

// VoiceNames returns the catalog voice names in sorted order.
func VoiceNames() []string {
	names := make([]string, 0, len(voiceIDs))
	for name := range voiceIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveVoice maps a voice name (case-insensitive) or raw upstream ID to the
// upstream voice identifier. Unknown names resolve to themselves when they
// already look like an upstream ID; otherwise ErrUnknownVoice is returned.
func ResolveVoice(name string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return "", services.Wrap(services.ErrUnknownVoice, "", "resolve_voice", "voice name required", nil)
	}
	if id, ok := voiceIDs[trimmed]; ok {
		return id, nil
	}
	return "", services.Wrap(services.ErrUnknownVoice, "", "resolve_voice", fmt.Sprintf("unknown voice %q", name), nil)
}

// KnownVoice reports whether name is in the voice catalog.
func KnownVoice(name string) bool {
	_, ok := voiceIDs[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Config captures the runtime settings required to talk to the TTS service.
type Config struct {
	APIKey            string
	BaseURL           string
	Stability         float64
	Clarity           float64
	RequestsPerMinute int
}

// Request describes one synthesis invocation.
type Request struct {
	Text       string
	Voice      string
	OutputPath string
}

// Result reports where synthesis wrote its artifacts.
type Result struct {
	AudioPath    string
	MetadataPath string
	Simulated    bool
}

// Metadata is the JSON document written next to every generated audio file.
type Metadata struct {
	Success     bool    `json:"success"`
	TextLength  int     `json:"text_length"`
	VoiceID     string  `json:"voice_id"`
	Stability   float64 `json:"stability"`
	Clarity     float64 `json:"clarity"`
	GeneratedAt string  `json:"generated_at"`
	OutputPath  string  `json:"output_path"`
	Simulated   bool    `json:"simulated,omitempty"`
	Note        string  `json:"note,omitempty"`
}

// MetadataPath derives the metadata sibling path for an audio file.
func MetadataPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, audioSuffix) + metadataSuffix
}

// Synthesizer is the synthesis contract consumed by the voice stage and the
// preview cache.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
}

// Client talks to the ElevenLabs API, falling back to simulated synthesis
// when no key is configured or the upstream call fails.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time

	invocations atomic.Int64
	apiCalls    atomic.Int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the time source used for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a TTS client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Stability <= 0 {
		cfg.Stability = defaultStability
	}
	if cfg.Clarity <= 0 {
		cfg.Clarity = defaultClarity
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMin
	}
	client := &Client{
		cfg: Config{
			APIKey:            strings.TrimSpace(cfg.APIKey),
			BaseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Stability:         cfg.Stability,
			Clarity:           cfg.Clarity,
			RequestsPerMinute: perMinute,
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Configured reports whether an API key is present. When false the client
// operates purely in simulated mode.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Invocations returns how many synthesis requests have completed, simulated
// or not. Useful for asserting cache behavior in tests.
func (c *Client) Invocations() int64 {
	return c.invocations.Load()
}

// APICalls returns how many upstream HTTP requests were attempted.
func (c *Client) APICalls() int64 {
	return c.apiCalls.Load()
}

// Synthesize converts text to speech, writing the audio file and its metadata
// sibling. On upstream failure it falls back to simulated output instead of
// returning an error, so callers only see errors for invalid input or local
// filesystem problems.
func (c *Client) Synthesize(ctx context.Context, req Request) (Result, error) {
	var empty Result
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return empty, services.Wrap(services.ErrValidation, "", "synthesize", "text required", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return empty, services.Wrap(services.ErrValidation, "", "synthesize", "output path required", nil)
	}
	if !strings.HasSuffix(req.OutputPath, audioSuffix) {
		return empty, services.Wrap(services.ErrValidation, "", "synthesize", "output path must end in .mp3", nil)
	}
	voiceID, err := ResolveVoice(req.Voice)
	if err != nil {
		return empty, err
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return empty, fmt.Errorf("tts synthesize: create output dir: %w", err)
	}

	if !c.Configured() {
		return c.simulate(text, voiceID, req.OutputPath)
	}

	audio, err := c.fetchAudio(ctx, text, voiceID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return empty, err
		}
		return c.simulate(text, voiceID, req.OutputPath)
	}
	if err := writeFileAtomic(req.OutputPath, audio); err != nil {
		return empty, fmt.Errorf("tts synthesize: write audio: %w", err)
	}
	meta := Metadata{
		Success:     true,
		TextLength:  len(text),
		VoiceID:     voiceID,
		Stability:   c.cfg.Stability,
		Clarity:     c.cfg.Clarity,
		GeneratedAt: c.now().Format("2006-01-02 15:04:05"),
		OutputPath:  req.OutputPath,
	}
	metadataPath, err := c.writeMetadata(req.OutputPath, meta)
	if err != nil {
		return empty, err
	}
	c.invocations.Add(1)
	return Result{AudioPath: req.OutputPath, MetadataPath: metadataPath}, nil
}

func (c *Client) fetchAudio(ctx context.Context, text, voiceID string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.apiCalls.Add(1)

	payload := map[string]any{
		"text":     text,
		"model_id": modelID,
		"voice_settings": map[string]float64{
			"stability":        c.cfg.Stability,
			"similarity_boost": c.cfg.Clarity,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts request: encode body: %w", err)
	}
	endpoint := c.cfg.BaseURL + "/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("tts request: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts request: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalService, "", "tts_request",
			fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(body)), nil)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrExternalService, "", "tts_request", "empty audio payload", nil)
	}
	return body, nil
}

func (c *Client) simulate(text, voiceID, outputPath string) (Result, error) {
	var empty Result
	if err := writeFileAtomic(outputPath, simulatedMP3Header); err != nil {
		return empty, fmt.Errorf("tts simulate: write audio: %w", err)
	}
	meta := Metadata{
		Success:     true,
		TextLength:  len(text),
		VoiceID:     voiceID,
		Stability:   c.cfg.Stability,
		Clarity:     c.cfg.Clarity,
		GeneratedAt: c.now().Format("2006-01-02 15:04:05"),
		OutputPath:  outputPath,
		Simulated:   true,
		Note:        simulatedTTSNote,
	}
	metadataPath, err := c.writeMetadata(outputPath, meta)
	if err != nil {
		return empty, err
	}
	c.invocations.Add(1)
	return Result{AudioPath: outputPath, MetadataPath: metadataPath, Simulated: true}, nil
}

func (c *Client) writeMetadata(audioPath string, meta Metadata) (string, error) {
	metadataPath := MetadataPath(audioPath)
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("tts synthesize: encode metadata: %w", err)
	}
	if err := writeFileAtomic(metadataPath, encoded); err != nil {
		return "", fmt.Errorf("tts synthesize: write metadata: %w", err)
	}
	return metadataPath, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	const limit = 160
	runes := []rune(trimmed)
	if len(runes) > limit {
		trimmed = string(runes[:limit]) + "..."
	}
	return trimmed
}
