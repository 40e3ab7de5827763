package scriptwriter

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

const systemPromptTemplate = `You are a podcast script writer. Write a conversational
script for two hosts named %s and %s. Prefix every spoken line with the host's
name and a colon, for example "%s: Welcome back to the show." Alternate
between the hosts, keep the tone friendly, and end with a sign-off.
Respond with the script only.`

// CompletionClient is the LLM surface the script stage needs.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Configured() bool
}

// Handler writes the two-host dialogue script.
type Handler struct {
	cfg    *config.Config
	logger *slog.Logger
	client CompletionClient
}

// New constructs the script stage handler using default dependencies.
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
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "scriptwriter"))
	}
	return &Handler{cfg: cfg, logger: stageLogger, client: client}
}

func (h *Handler) Name() queue.Stage {
	return queue.StageScript
}

func (h *Handler) Run(ctx context.Context, job *queue.Job, input stage.Artifact) (stage.Artifact, error) {
	logger := logging.WithContext(ctx, h.logger)
	topic := strings.TrimSpace(job.Topic)
	if topic == "" {
		topic = queue.DefaultTopic
	}
	hostOne, hostTwo := hosts(job)
	logger.Info("starting script writing",
		logging.String("topic", topic),
		logging.String("host_one", hostOne),
		logging.String("host_two", hostTwo),
	)

	script := h.write(ctx, logger, topic, hostOne, hostTwo, input)
	input.Script = script

	logger.Info("script writing completed",
		logging.Int("script_chars", len(script)),
		logging.Int("lines", len(strings.Split(script, "\n"))),
	)
	return input, nil
}

func hosts(job *queue.Job) (string, string) {
	hostOne := strings.TrimSpace(job.Hosts[0])
	if hostOne == "" {
		hostOne = queue.DefaultHostOne
	}
	hostTwo := strings.TrimSpace(job.Hosts[1])
	if hostTwo == "" {
		hostTwo = queue.DefaultHostTwo
	}
	return hostOne, hostTwo
}

func (h *Handler) write(ctx context.Context, logger *slog.Logger, topic, hostOne, hostTwo string, input stage.Artifact) string {
	if h.client == nil || !h.client.Configured() {
		return templateScript(topic, hostOne, hostTwo, input)
	}
	systemPrompt := fmt.Sprintf(systemPromptTemplate, hostOne, hostTwo, hostOne)
	content, err := h.client.Complete(ctx, systemPrompt, scriptPrompt(topic, input))
	if err != nil {
		logger.Warn("llm script writing failed, using template script", logging.Error(err))
		return templateScript(topic, hostOne, hostTwo, input)
	}
	content = strings.TrimSpace(content)
	if !HasDialogue(content, hostOne, hostTwo) {
		logger.Warn("llm script missing host dialogue, using template script")
		return templateScript(topic, hostOne, hostTwo, input)
	}
	return content
}

func scriptPrompt(topic string, input stage.Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	if input.Summary != "" {
		fmt.Fprintf(&b, "Episode summary:\n%s\n", input.Summary)
	}
	if len(input.Research.Topics) > 0 {
		fmt.Fprintf(&b, "Cover these discussion topics in order: %s\n", strings.Join(input.Research.Topics, "; "))
	}
	return b.String()
}

// HasDialogue reports whether the script contains lines attributed to both
// hosts.
func HasDialogue(script, hostOne, hostTwo string) bool {
	return strings.Contains(script, hostOne+":") && strings.Contains(script, hostTwo+":")
}

// templateScript builds a deterministic alternating dialogue covering the
// research topics, used when no LLM is available.
func templateScript(topic, hostOne, hostTwo string, input stage.Artifact) string {
	topics := input.Research.Topics
	if len(topics) == 0 {
		topics = []string{topic}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: Welcome to the show! I'm %s, and as always I'm joined by %s.\n", hostOne, hostOne, hostTwo)
	fmt.Fprintf(&b, "%s: Great to be here. Today we're talking about %s.\n", hostTwo, topic)
	if input.Summary != "" {
		fmt.Fprintf(&b, "%s: Here's the short version. %s\n", hostOne, input.Summary)
	}
	speakers := [2]string{hostTwo, hostOne}
	for i, item := range topics {
		speaker := speakers[i%2]
		fmt.Fprintf(&b, "%s: Let's dig into %s. There's a lot happening there right now.\n", speaker, item)
	}
	fmt.Fprintf(&b, "%s: That's all the time we have today. Thanks for listening!\n", hostOne)
	fmt.Fprintf(&b, "%s: See you next episode.\n", hostTwo)
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	name := string(h.Name())
	if h.client == nil || !h.client.Configured() {
		return stage.Health{Name: name, Ready: true, Detail: "no LLM key; scripts use a template"}
	}
	return stage.Healthy(name)
}
