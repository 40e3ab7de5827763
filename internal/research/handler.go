package research

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

const maxSources = 8

const systemPrompt = `You are a podcast researcher. Given a topic, respond with JSON only:
{"sources":[{"title":"...","url":"..."}],"topics":["..."]}
Provide 3 to 5 sources with real-looking titles and 3 to 5 discussion topics.`

// CompletionClient is the LLM surface the research stage needs.
type CompletionClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Configured() bool
}

// Handler discovers sources and topics for a podcast subject.
type Handler struct {
	cfg    *config.Config
	logger *slog.Logger
	client CompletionClient
}

// New constructs the research stage handler using default dependencies.
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
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "research"))
	}
	return &Handler{cfg: cfg, logger: stageLogger, client: client}
}

func (h *Handler) Name() queue.Stage {
	return queue.StageResearch
}

func (h *Handler) Run(ctx context.Context, job *queue.Job, input stage.Artifact) (stage.Artifact, error) {
	logger := logging.WithContext(ctx, h.logger)
	topic := strings.TrimSpace(job.Topic)
	if topic == "" {
		topic = queue.DefaultTopic
	}
	logger.Info("starting research", logging.String("topic", topic))

	research := h.gather(ctx, logger, topic)
	input.Research = research

	logger.Info("research completed",
		logging.Int("sources", len(research.Sources)),
		logging.Int("topics", len(research.Topics)),
	)
	return input, nil
}

func (h *Handler) gather(ctx context.Context, logger *slog.Logger, topic string) queue.Research {
	if h.client == nil || !h.client.Configured() {
		return placeholderResearch(topic)
	}
	userPrompt := fmt.Sprintf("Research the podcast topic %q and list sources and discussion topics.", topic)
	content, err := h.client.CompleteJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.Warn("llm research failed, using placeholder results", logging.Error(err))
		return placeholderResearch(topic)
	}
	var parsed queue.Research
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		logger.Warn("llm research payload unusable, using placeholder results", logging.Error(err))
		return placeholderResearch(topic)
	}
	parsed = tidy(parsed)
	if len(parsed.Topics) == 0 {
		logger.Warn("llm research returned no topics, using placeholder results")
		return placeholderResearch(topic)
	}
	return parsed
}

func tidy(research queue.Research) queue.Research {
	sources := make([]queue.Source, 0, len(research.Sources))
	for _, source := range research.Sources {
		title := strings.TrimSpace(source.Title)
		if title == "" {
			continue
		}
		sources = append(sources, queue.Source{Title: title, URL: strings.TrimSpace(source.URL)})
		if len(sources) == maxSources {
			break
		}
	}
	topics := make([]string, 0, len(research.Topics))
	for _, topic := range research.Topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	return queue.Research{Sources: sources, Topics: topics}
}

// placeholderResearch produces deterministic results so the pipeline works
// without an LLM key. The default topic keeps its canned trending set.
func placeholderResearch(topic string) queue.Research {
	if topic == queue.DefaultTopic {
		return queue.Research{
			Sources: []queue.Source{
				{Title: "AI Developments in 2025", URL: "https://example.com/ai-news"},
				{Title: "New Climate Change Policies", URL: "https://example.com/climate"},
				{Title: "Space Exploration Updates", URL: "https://example.com/space"},
			},
			Topics: []string{"Artificial Intelligence", "Climate Change", "Space Exploration"},
		}
	}
	return queue.Research{
		Sources: []queue.Source{
			{Title: "Research on " + topic, URL: "https://example.com/research"},
		},
		Topics: []string{topic},
	}
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	name := string(h.Name())
	if h.client == nil || !h.client.Configured() {
		return stage.Health{Name: name, Ready: true, Detail: "no LLM key; research is simulated"}
	}
	return stage.Healthy(name)
}
