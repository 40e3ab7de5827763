package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stage identifies one phase of the generation pipeline.
type Stage string

const (
	StageResearch  Stage = "research"
	StageSummarize Stage = "summarize"
	StageScript    Stage = "script"
	StageVoice     Stage = "voice"
	StageComplete  Stage = "complete"
)

// Default values applied when a submission omits fields, matching the
// placeholders the web form advertises.
const (
	DefaultTopic   = "Current Events"
	DefaultHostOne = "Alex"
	DefaultHostTwo = "Jamie"
)

var allStatuses = []Status{StatusQueued, StatusRunning, StatusCompleted, StatusFailed}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// PipelineStages returns the four executable stages in traversal order.
func PipelineStages() []Stage {
	return []Stage{StageResearch, StageSummarize, StageScript, StageVoice}
}

// ProgressForStage maps each completed stage to its progress ceiling.
func ProgressForStage(stage Stage) int {
	switch stage {
	case StageResearch:
		return 25
	case StageSummarize:
		return 50
	case StageScript:
		return 75
	case StageVoice, StageComplete:
		return 100
	default:
		return 0
	}
}

// StageIndex returns the position of a stage in the traversal order, with
// the empty stage at -1 and complete after voice. Unknown stages report
// -2 so ordering comparisons fail loudly in tests.
func StageIndex(stage Stage) int {
	switch stage {
	case "":
		return -1
	case StageResearch:
		return 0
	case StageSummarize:
		return 1
	case StageScript:
		return 2
	case StageVoice:
		return 3
	case StageComplete:
		return 4
	default:
		return -2
	}
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status never transitions further.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Update is one entry in a job's append-only update log.
type Update struct {
	Time    time.Time `json:"time"`
	Stage   Stage     `json:"stage,omitempty"`
	Message string    `json:"message"`
}

// Source is one reference discovered during the research stage.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Research captures the research stage output persisted with the job.
type Research struct {
	Sources []Source `json:"sources,omitempty"`
	Topics  []string `json:"topics,omitempty"`
}

// Results aggregates the artifacts each stage produced for a job.
type Results struct {
	Research  Research `json:"research"`
	Summary   string   `json:"summary,omitempty"`
	Script    string   `json:"script,omitempty"`
	AudioPath string   `json:"audio_path,omitempty"`
}

// Job represents one podcast generation request persisted in SQLite.
type Job struct {
	ID           string
	Topic        string
	Hosts        [2]string
	Status       Status
	CurrentStage Stage
	Progress     int
	ErrorMessage string
	Updates      []Update
	Results      Results
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// AppendUpdate records a transition message in the job's update log. The
// stage may be empty for lifecycle messages that are not tied to a stage.
func (j *Job) AppendUpdate(stage Stage, message string) {
	j.Updates = append(j.Updates, Update{
		Time:    time.Now().UTC(),
		Stage:   stage,
		Message: message,
	})
}

// SetFailed marks the job failed with the given reason. Progress is frozen
// wherever it stood.
func (j *Job) SetFailed(message string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.FinishedAt = &now
	j.AppendUpdate(j.CurrentStage, message)
}

// Clone returns an independent copy of the job, including its update log,
// so readers are never affected by later mutation.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Updates = make([]Update, len(j.Updates))
	copy(cp.Updates, j.Updates)
	if len(j.Results.Research.Sources) > 0 {
		cp.Results.Research.Sources = append([]Source(nil), j.Results.Research.Sources...)
	}
	if len(j.Results.Research.Topics) > 0 {
		cp.Results.Research.Topics = append([]string(nil), j.Results.Research.Topics...)
	}
	if j.StartedAt != nil {
		started := *j.StartedAt
		cp.StartedAt = &started
	}
	if j.FinishedAt != nil {
		finished := *j.FinishedAt
		cp.FinishedAt = &finished
	}
	return &cp
}
