package api

// Podcast is the wire representation of one generation job.
type Podcast struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"`
	Hosts        []string      `json:"hosts"`
	Status       string        `json:"status"`
	Progress     int           `json:"progress"`
	CurrentStage string        `json:"current_stage"`
	Error        string        `json:"error,omitempty"`
	StartTime    *string       `json:"start_time"`
	EndTime      *string       `json:"end_time"`
	CreatedAt    string        `json:"created_at"`
	Updates      []UpdateEntry `json:"updates"`
	Results      Results       `json:"results"`
}

// UpdateEntry is one progress message in a podcast's update log.
type UpdateEntry struct {
	Time    string `json:"time"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`
}

// Results carries the artifacts each stage produced.
type Results struct {
	Research Research `json:"research"`
	Summary  string   `json:"summary"`
	Script   string   `json:"script"`
	AudioURL string   `json:"audio_url"`
}

// Research is the research stage payload.
type Research struct {
	Sources []Source `json:"sources"`
	Topics  []string `json:"topics"`
}

// Source is one research reference.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PodcastList is the response for the podcast listing endpoint.
type PodcastList struct {
	Podcasts    []Podcast `json:"podcasts"`
	CurrentJob  *string   `json:"current_job"`
	QueueLength int       `json:"queue_length"`
}

// CreateResponse acknowledges a new submission.
type CreateResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// VoiceList is the response for the voice catalog endpoint.
type VoiceList struct {
	Voices []VoiceInfo `json:"voices"`
}

// VoiceInfo describes one catalog voice.
type VoiceInfo struct {
	Name        string `json:"name"`
	VoiceID     string `json:"voice_id"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

// PreviewResponse reports a generated voice preview. Failed synthesis
// keeps the shape with Success false so clients can branch on it.
type PreviewResponse struct {
	Success      bool   `json:"success"`
	MetadataPath string `json:"metadata_path,omitempty"`
	Simulated    bool   `json:"simulated,omitempty"`
	Error        string `json:"error,omitempty"`
}

// DaemonStatus is the response for the daemon status endpoint.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	QueueDBPath  string         `json:"queue_db_path"`
	LockFilePath string         `json:"lock_file_path"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// WorkflowStatus summarizes the pipeline worker.
type WorkflowStatus struct {
	Running     bool                   `json:"running"`
	LastError   string                 `json:"last_error,omitempty"`
	LastJobID   string                 `json:"last_job_id,omitempty"`
	QueueStats  map[string]int         `json:"queue_stats"`
	StageHealth map[string]StageHealth `json:"stage_health"`
}

// StageHealth reports readiness for one pipeline stage.
type StageHealth struct {
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}
