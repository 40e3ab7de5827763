package stage

import (
	"context"

	"podforge/internal/queue"
)

// Artifact carries the accumulated stage outputs for one job as it moves
// through the pipeline. Each stage reads the fields its predecessors
// filled and populates its own.
type Artifact struct {
	Research  queue.Research
	Summary   string
	Script    string
	AudioPath string
}

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	// Name returns the pipeline stage this handler implements.
	Name() queue.Stage
	// Run performs the stage's work. The job is a read-only snapshot;
	// handlers must not mutate store state.
	Run(ctx context.Context, job *queue.Job, input Artifact) (Artifact, error)
	HealthCheck(ctx context.Context) Health
}
