package api

import (
	"context"
	"strings"

	"podforge/internal/queue"
	"podforge/internal/services"
	"podforge/internal/voices"
)

// JobStore abstracts the queue operations the API layer needs.
type JobStore interface {
	Create(ctx context.Context, topic string, hosts []string) (*queue.Job, error)
	GetByID(ctx context.Context, id string) (*queue.Job, error)
	List(ctx context.Context) ([]*queue.Job, error)
	Running(ctx context.Context) (*queue.Job, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
}

// Notifier wakes the workflow worker after a submission.
type Notifier interface {
	Notify()
}

// PodcastService exposes the podcast operations behind the HTTP API.
type PodcastService struct {
	store    JobStore
	notifier Notifier
}

// NewPodcastService constructs a PodcastService. The notifier may be nil.
func NewPodcastService(store JobStore, notifier Notifier) *PodcastService {
	return &PodcastService{store: store, notifier: notifier}
}

// Create validates and enqueues a new podcast job.
func (s *PodcastService) Create(ctx context.Context, topic string, hosts []string) (CreateResponse, error) {
	var empty CreateResponse
	job, err := s.store.Create(ctx, strings.TrimSpace(topic), trimHosts(hosts))
	if err != nil {
		return empty, err
	}
	if s.notifier != nil {
		s.notifier.Notify()
	}
	message := "Podcast creation started"
	if running, err := s.store.Running(ctx); err == nil && running != nil && running.ID != job.ID {
		message = "Podcast added to queue"
	}
	return CreateResponse{Success: true, JobID: job.ID, Message: message}, nil
}

func trimHosts(hosts []string) []string {
	out := make([]string, len(hosts))
	for i, host := range hosts {
		out[i] = strings.TrimSpace(host)
	}
	return out
}

// Get returns one podcast by ID.
func (s *PodcastService) Get(ctx context.Context, id string) (Podcast, error) {
	var empty Podcast
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return empty, err
	}
	if job == nil {
		return empty, services.Wrap(services.ErrNotFound, "", "get_podcast", "podcast not found", nil)
	}
	return FromJob(job), nil
}

// List returns every podcast, newest first, together with the running job ID
// and the number of jobs still waiting.
func (s *PodcastService) List(ctx context.Context) (PodcastList, error) {
	var empty PodcastList
	jobs, err := s.store.List(ctx)
	if err != nil {
		return empty, err
	}
	list := PodcastList{Podcasts: FromJobs(jobs)}
	running, err := s.store.Running(ctx)
	if err != nil {
		return empty, err
	}
	if running != nil {
		id := running.ID
		list.CurrentJob = &id
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return empty, err
	}
	list.QueueLength = stats[queue.StatusQueued]
	return list, nil
}

// Voices returns the static voice catalog.
func (s *PodcastService) Voices() VoiceList {
	catalog := voices.Catalog()
	list := VoiceList{Voices: make([]VoiceInfo, 0, len(catalog))}
	for _, voice := range catalog {
		list.Voices = append(list.Voices, VoiceInfo{
			Name:        voice.Name,
			VoiceID:     voice.VoiceID,
			Gender:      voice.Gender,
			Description: voice.Description,
		})
	}
	return list
}
