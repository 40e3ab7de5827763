package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/queue"
	"podforge/internal/services/llm"
	"podforge/internal/stage"
)

const systemPrompt = `You are a podcast producer. Write a tight episode summary
(2 to 4 paragraphs) that a script writer can expand into a two-host show.
Respond with the summary text only, no headings or preamble.`

// CompletionClient is the LLM surface the summarize stage needs.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Configured() bool
}

// Handler condenses research into an episode summary.
type Handler struct {
	cfg    *config.Config
	logger *slog.Logger
	client CompletionClient
}

// New constructs the summarize stage handler using default dependencies.
func New(cfg *config.Config, logger *slog.Logger) *Handler {
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	return NewWithClient(cfg, logger, client)
}

// NewWithClient allows injecting the completion client (used in tests).
func NewWithClient(cfg *config.Config, logger *slog.Logger, client CompletionClient) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "summarize"))
	}
	return &Handler{cfg: cfg, logger: stageLogger, client: client}
}

func (h *Handler) Name() queue.Stage {
	return queue.StageSummarize
}

func (h *Handler) Run(ctx context.Context, job *queue.Job, input stage.Artifact) (stage.Artifact, error) {
	logger := logging.WithContext(ctx, h.logger)
	topic := strings.TrimSpace(job.Topic)
	if topic == "" {
		topic = queue.DefaultTopic
	}
	logger.Info("starting summarization", logging.String("topic", topic))

	summary := h.summarize(ctx, logger, topic, input.Research)
	input.Summary = summary

	logger.Info("summarization completed", logging.Int("summary_chars", len(summary)))
	return input, nil
}

func (h *Handler) summarize(ctx context.Context, logger *slog.Logger, topic string, research queue.Research) string {
	if h.client == nil || !h.client.Configured() {
		return templateSummary(topic, research)
	}
	content, err := h.client.Complete(ctx, systemPrompt, userPrompt(topic, research))
	if err != nil {
		logger.Warn("llm summarization failed, using template summary", logging.Error(err))
		return templateSummary(topic, research)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return templateSummary(topic, research)
	}
	return content
}

func userPrompt(topic string, research queue.Research) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	if len(research.Topics) > 0 {
		fmt.Fprintf(&b, "Discussion topics: %s\n", strings.Join(research.Topics, "; "))
	}
	if len(research.Sources) > 0 {
		b.WriteString("Sources:\n")
		for _, source := range research.Sources {
			fmt.Fprintf(&b, "- %s (%s)\n", source.Title, source.URL)
		}
	}
	return b.String()
}

func templateSummary(topic string, research queue.Research) string {
	topics := research.Topics
	if len(topics) == 0 {
		topics = []string{topic}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "This episode explores %s.", topic)
	if len(topics) > 1 {
		fmt.Fprintf(&b, " The hosts cover %s.", joinNatural(topics))
	}
	if len(research.Sources) > 0 {
		fmt.Fprintf(&b, " The discussion draws on %d recent sources, including %q.",
			len(research.Sources), research.Sources[0].Title)
	}
	return b.String()
}

func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	name := string(h.Name())
	if h.client == nil || !h.client.Configured() {
		return stage.Health{Name: name, Ready: true, Detail: "no LLM key; summaries use a template"}
	}
	return stage.Healthy(name)
}
