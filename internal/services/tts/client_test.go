package tts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"podforge/internal/services"
	"podforge/internal/services/tts"
)

func readMetadata(t *testing.T, path string) tts.Metadata {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var meta tts.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	return meta
}

func TestSynthesizeSimulatedWithoutAPIKey(t *testing.T) {
	client := tts.NewClient(tts.Config{})
	out := filepath.Join(t.TempDir(), "episode.mp3")

	result, err := client.Synthesize(context.Background(), tts.Request{
		Text:       "Welcome to the show.",
		Voice:      "rachel",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !result.Simulated {
		t.Fatal("expected simulated result without an api key")
	}
	if result.AudioPath != out {
		t.Fatalf("audio path = %q, want %q", result.AudioPath, out)
	}
	audio, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if len(audio) == 0 || audio[0] != 0xFF || audio[1] != 0xFB {
		t.Fatalf("audio does not start with an MP3 frame header: % x", audio[:min(4, len(audio))])
	}

	if result.MetadataPath != filepath.Join(filepath.Dir(out), "episode_metadata.json") {
		t.Fatalf("metadata path = %q", result.MetadataPath)
	}
	meta := readMetadata(t, result.MetadataPath)
	if !meta.Simulated {
		t.Fatal("metadata not marked simulated")
	}
	if !meta.Success {
		t.Fatal("metadata success = false")
	}
	if meta.VoiceID != "21m00Tcm4TlvDq8ikWAM" {
		t.Fatalf("voice id = %q", meta.VoiceID)
	}
	if meta.TextLength != len("Welcome to the show.") {
		t.Fatalf("text length = %d", meta.TextLength)
	}
}

func TestSynthesizeCallsUpstream(t *testing.T) {
	var gotKey, gotPath string
	var gotBody struct {
		Text          string `json:"text"`
		ModelID       string `json:"model_id"`
		VoiceSettings struct {
			Stability       float64 `json:"stability"`
			SimilarityBoost float64 `json:"similarity_boost"`
		} `json:"voice_settings"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte("real audio bytes"))
	}))
	defer server.Close()

	client := tts.NewClient(tts.Config{
		APIKey:    "tts-key",
		BaseURL:   server.URL,
		Stability: 0.6,
		Clarity:   0.8,
	})
	out := filepath.Join(t.TempDir(), "episode.mp3")

	result, err := client.Synthesize(context.Background(), tts.Request{
		Text:       "Hello listeners.",
		Voice:      "Adam",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if result.Simulated {
		t.Fatal("expected real synthesis")
	}
	if gotKey != "tts-key" {
		t.Fatalf("xi-api-key = %q", gotKey)
	}
	if gotPath != "/text-to-speech/pNInz6obpgDQGcFmaJgB" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody.ModelID != "eleven_monolingual_v1" {
		t.Fatalf("model id = %q", gotBody.ModelID)
	}
	if gotBody.VoiceSettings.Stability != 0.6 || gotBody.VoiceSettings.SimilarityBoost != 0.8 {
		t.Fatalf("voice settings = %+v", gotBody.VoiceSettings)
	}
	audio, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(audio) != "real audio bytes" {
		t.Fatalf("audio = %q", audio)
	}
	meta := readMetadata(t, result.MetadataPath)
	if meta.Simulated {
		t.Fatal("metadata marked simulated for a real synthesis")
	}
}

func TestSynthesizeFallsBackOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := tts.NewClient(tts.Config{APIKey: "tts-key", BaseURL: server.URL})
	out := filepath.Join(t.TempDir(), "episode.mp3")

	result, err := client.Synthesize(context.Background(), tts.Request{
		Text:       "Hello listeners.",
		Voice:      "josh",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !result.Simulated {
		t.Fatal("expected simulated fallback on upstream failure")
	}
	if client.APICalls() != 1 {
		t.Fatalf("api calls = %d, want 1", client.APICalls())
	}
	meta := readMetadata(t, result.MetadataPath)
	if !meta.Simulated {
		t.Fatal("metadata not marked simulated")
	}
}

func TestSynthesizeRejectsUnknownVoice(t *testing.T) {
	client := tts.NewClient(tts.Config{})
	out := filepath.Join(t.TempDir(), "episode.mp3")

	_, err := client.Synthesize(context.Background(), tts.Request{
		Text:       "Hello.",
		Voice:      "morgan",
		OutputPath: out,
	})
	if !errors.Is(err, services.ErrUnknownVoice) {
		t.Fatalf("err = %v, want ErrUnknownVoice", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("audio file should not exist for unknown voice")
	}
}

func TestSynthesizeValidatesInput(t *testing.T) {
	client := tts.NewClient(tts.Config{})
	dir := t.TempDir()

	cases := []struct {
		name string
		req  tts.Request
	}{
		{name: "empty text", req: tts.Request{Voice: "adam", OutputPath: filepath.Join(dir, "a.mp3")}},
		{name: "empty output", req: tts.Request{Text: "hi", Voice: "adam"}},
		{name: "wrong extension", req: tts.Request{Text: "hi", Voice: "adam", OutputPath: filepath.Join(dir, "a.wav")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Synthesize(context.Background(), tc.req)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSynthesizeCountsInvocations(t *testing.T) {
	client := tts.NewClient(tts.Config{})
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		out := filepath.Join(dir, "episode.mp3")
		if _, err := client.Synthesize(context.Background(), tts.Request{Text: "hi", Voice: "sam", OutputPath: out}); err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}
	}
	if client.Invocations() != 3 {
		t.Fatalf("invocations = %d, want 3", client.Invocations())
	}
}

func TestResolveVoice(t *testing.T) {
	if _, err := tts.ResolveVoice("auto"); !errors.Is(err, services.ErrUnknownVoice) {
		t.Fatal("auto should not resolve to an upstream voice")
	}
	id, err := tts.ResolveVoice("  Bella ")
	if err != nil {
		t.Fatalf("ResolveVoice returned error: %v", err)
	}
	if id != "EXAVITQu4vr4xnSDxMaL" {
		t.Fatalf("id = %q", id)
	}
}

func TestVoiceNamesSortedAndComplete(t *testing.T) {
	names := tts.VoiceNames()
	want := []string{"adam", "antoni", "bella", "elli", "josh", "rachel", "sam"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestMetadataPath(t *testing.T) {
	if got := tts.MetadataPath("/audio/podcast_abc.mp3"); got != "/audio/podcast_abc_metadata.json" {
		t.Fatalf("MetadataPath = %q", got)
	}
}
