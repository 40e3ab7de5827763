package summarize_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/stage"
	"podforge/internal/summarize"
)

type fakeClient struct {
	configured bool
	content    string
	err        error
	gotPrompt  string
}

func (f *fakeClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotPrompt = userPrompt
	return f.content, f.err
}

func (f *fakeClient) Configured() bool { return f.configured }

func newHandler(client summarize.CompletionClient) *summarize.Handler {
	cfg := config.Default()
	return summarize.NewWithClient(&cfg, logging.NewNop(), client)
}

func sampleResearch() queue.Research {
	return queue.Research{
		Sources: []queue.Source{{Title: "Reef Recovery Report", URL: "https://example.org/reef"}},
		Topics:  []string{"Coral Bleaching", "Marine Protected Areas"},
	}
}

func TestRunTemplateWithoutLLM(t *testing.T) {
	handler := newHandler(&fakeClient{configured: false})
	job := &queue.Job{ID: "job-1", Topic: "Ocean Conservation"}

	out, err := handler.Run(context.Background(), job, stage.Artifact{Research: sampleResearch()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.Summary, "Ocean Conservation") {
		t.Fatalf("summary missing topic: %q", out.Summary)
	}
	if !strings.Contains(out.Summary, "Coral Bleaching and Marine Protected Areas") {
		t.Fatalf("summary missing research topics: %q", out.Summary)
	}
	if !strings.Contains(out.Summary, "Reef Recovery Report") {
		t.Fatalf("summary missing source: %q", out.Summary)
	}
}

func TestRunUsesLLMContent(t *testing.T) {
	client := &fakeClient{configured: true, content: "  A crisp summary of the episode.  "}
	handler := newHandler(client)
	job := &queue.Job{ID: "job-1", Topic: "Ocean Conservation"}

	out, err := handler.Run(context.Background(), job, stage.Artifact{Research: sampleResearch()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.Summary != "A crisp summary of the episode." {
		t.Fatalf("summary = %q", out.Summary)
	}
	if !strings.Contains(client.gotPrompt, "Coral Bleaching") {
		t.Fatalf("prompt missing research topics: %q", client.gotPrompt)
	}
	if !strings.Contains(client.gotPrompt, "https://example.org/reef") {
		t.Fatalf("prompt missing source url: %q", client.gotPrompt)
	}
}

func TestRunFallsBackWhenLLMFails(t *testing.T) {
	client := &fakeClient{configured: true, err: errors.New("upstream down")}
	handler := newHandler(client)
	job := &queue.Job{ID: "job-1", Topic: "Ocean Conservation"}

	out, err := handler.Run(context.Background(), job, stage.Artifact{Research: sampleResearch()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.Summary, "Ocean Conservation") {
		t.Fatalf("summary = %q", out.Summary)
	}
}

func TestRunFallsBackOnEmptyContent(t *testing.T) {
	client := &fakeClient{configured: true, content: "   "}
	handler := newHandler(client)
	job := &queue.Job{ID: "job-1", Topic: "Ocean Conservation"}

	out, err := handler.Run(context.Background(), job, stage.Artifact{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.Summary == "" {
		t.Fatal("expected a template summary")
	}
}
