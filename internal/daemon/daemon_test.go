package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"podforge/internal/api"
	"podforge/internal/config"
	"podforge/internal/daemon"
	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/research"
	"podforge/internal/scriptwriter"
	"podforge/internal/services/tts"
	"podforge/internal/stage"
	"podforge/internal/summarize"
	"podforge/internal/testsupport"
	"podforge/internal/voice"
	"podforge/internal/voices"
	"podforge/internal/workflow"
)

func startDaemon(t *testing.T) (*daemon.Daemon, string, *config.Config) {
	t.Helper()
	return startDaemonWithSynth(t, tts.NewClient(tts.Config{}))
}

func startDaemonWithSynth(t *testing.T, synth tts.Synthesizer) (*daemon.Daemon, string, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	handlers := []stage.Handler{
		research.New(cfg, logger),
		summarize.New(cfg, logger),
		scriptwriter.New(cfg, logger),
		voice.New(cfg, logger),
	}
	manager := workflow.NewManager(cfg, store, logger, handlers...)
	previews := voices.NewPreviews(cfg, logger, synth)

	d, err := daemon.New(cfg, store, logger, manager, previews)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	return d, "http://" + d.Addr(), cfg
}

func getJSON(t *testing.T, url string, target any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if target != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestDaemonServesPodcastLifecycle(t *testing.T) {
	_, base, _ := startDaemon(t)

	payload := bytes.NewBufferString(`{"topic":"Glacier Monitoring","hosts":["Ada","Lin"]}`)
	resp, err := http.Post(base+"/create-podcast", "application/json", payload)
	if err != nil {
		t.Fatalf("POST create-podcast: %v", err)
	}
	var created api.CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	resp.Body.Close()
	if !created.Success || created.JobID == "" {
		t.Fatalf("create response = %+v", created)
	}

	var podcast api.Podcast
	testsupport.WaitFor(t, 15*time.Second, func() bool {
		status := getJSON(t, fmt.Sprintf("%s/api/podcast/%s", base, created.JobID), &podcast)
		return status == http.StatusOK && podcast.Status == string(queue.StatusCompleted)
	}, "podcast did not complete")

	if podcast.Progress != 100 {
		t.Fatalf("progress = %d", podcast.Progress)
	}
	if podcast.Results.AudioURL == "" {
		t.Fatal("audio url missing")
	}

	audioResp, err := http.Get(base + podcast.Results.AudioURL)
	if err != nil {
		t.Fatalf("GET audio: %v", err)
	}
	audioResp.Body.Close()
	if audioResp.StatusCode != http.StatusOK {
		t.Fatalf("audio status = %d", audioResp.StatusCode)
	}

	var list api.PodcastList
	if status := getJSON(t, base+"/api/podcasts", &list); status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if len(list.Podcasts) != 1 {
		t.Fatalf("podcasts = %d", len(list.Podcasts))
	}
}

func TestDaemonRejectsBadSubmissions(t *testing.T) {
	_, base, _ := startDaemon(t)

	resp, err := http.Post(base+"/create-podcast", "application/json", bytes.NewBufferString(`{"hosts":["OnlyOne"]}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(base+"/create-podcast", "application/json", bytes.NewBufferString(`not json`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	if status := getJSON(t, base+"/create-podcast", nil); status != http.StatusMethodNotAllowed {
		t.Fatalf("GET create-podcast status = %d, want 405", status)
	}
}

func TestDaemonServesVoicesAndPreviews(t *testing.T) {
	_, base, _ := startDaemon(t)

	var list api.VoiceList
	if status := getJSON(t, base+"/api/voices", &list); status != http.StatusOK {
		t.Fatalf("voices status = %d", status)
	}
	if len(list.Voices) != 7 {
		t.Fatalf("voices = %d", len(list.Voices))
	}

	var preview api.PreviewResponse
	if status := getJSON(t, base+"/api/voice-preview/rachel", &preview); status != http.StatusOK {
		t.Fatalf("preview status = %d", status)
	}
	if !preview.Success || preview.MetadataPath == "" {
		t.Fatalf("preview = %+v", preview)
	}

	for _, name := range []string{"auto", "morgan"} {
		if status := getJSON(t, base+"/api/voice-preview/"+name, nil); status != http.StatusNotFound {
			t.Fatalf("preview %q status = %d, want 404", name, status)
		}
	}
}

type offlineSynth struct{}

func (offlineSynth) Synthesize(context.Context, tts.Request) (tts.Result, error) {
	return tts.Result{}, fmt.Errorf("synthesizer offline")
}

func TestDaemonReportsPreviewFailureWithSuccessFlag(t *testing.T) {
	_, base, _ := startDaemonWithSynth(t, offlineSynth{})

	resp, err := http.Get(base + "/api/voice-preview/rachel")
	if err != nil {
		t.Fatalf("GET preview: %v", err)
	}
	defer resp.Body.Close()

	var preview api.PreviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		t.Fatalf("decode preview failure: %v", err)
	}
	if preview.Success {
		t.Fatalf("preview = %+v, want success false", preview)
	}
	if preview.Error == "" {
		t.Fatal("failure response missing error message")
	}
	if preview.MetadataPath != "" {
		t.Fatalf("failure response carries metadata path %q", preview.MetadataPath)
	}
}

func TestDaemonRejectsAudioPathTraversal(t *testing.T) {
	_, base, _ := startDaemon(t)

	for _, path := range []string{
		"/audio/..%2Fjobs.db",
		"/audio/.hidden",
		"/audio/",
	} {
		status := getJSON(t, base+path, nil)
		if status != http.StatusNotFound && status != http.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want rejection", path, status)
		}
	}

	if status := getJSON(t, base+"/audio/missing.mp3", nil); status != http.StatusNotFound {
		t.Fatalf("missing audio status = %d, want 404", status)
	}
}

func TestDaemonStatusEndpoint(t *testing.T) {
	_, base, _ := startDaemon(t)

	var status api.DaemonStatus
	if code := getJSON(t, base+"/api/status", &status); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("status = %+v", status)
	}
	if len(status.Workflow.StageHealth) != 4 {
		t.Fatalf("stage health = %d entries, want 4", len(status.Workflow.StageHealth))
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	d, _, cfg := startDaemon(t)
	_ = d

	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	manager := workflow.NewManager(cfg, store, logger,
		research.New(cfg, logger),
		summarize.New(cfg, logger),
		scriptwriter.New(cfg, logger),
		voice.New(cfg, logger),
	)
	second, err := daemon.New(cfg, store, logger, manager, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected lock conflict for second daemon instance")
	}
}
