package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"podforge/internal/services"
)

const jobColumns = `id, topic, host_one, host_two, status, current_stage, progress,
	error_message, updates_json, results_json, created_at, started_at, finished_at`

// Create inserts a new queued job after applying submission defaults.
// It fails with a validation error unless the host list contains exactly
// two entries once defaults are filled in.
func (s *Store) Create(ctx context.Context, topic string, hosts []string) (*Job, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	pair, err := normalizeHosts(hosts)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.NewString(),
		Topic:     topic,
		Hosts:     pair,
		Status:    StatusQueued,
		Progress:  0,
		CreatedAt: time.Now().UTC(),
	}

	updatesJSON, resultsJSON, err := encodeJobJSON(job)
	if err != nil {
		return nil, err
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            id, topic, host_one, host_two, status, current_stage, progress,
            error_message, updates_json, results_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Topic,
		job.Hosts[0],
		job.Hosts[1],
		string(job.Status),
		string(job.CurrentStage),
		job.Progress,
		job.ErrorMessage,
		updatesJSON,
		resultsJSON,
		job.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return job, nil
}

func normalizeHosts(hosts []string) ([2]string, error) {
	trimmed := make([]string, 0, len(hosts))
	for _, host := range hosts {
		trimmed = append(trimmed, strings.TrimSpace(host))
	}
	switch len(trimmed) {
	case 0:
		return [2]string{DefaultHostOne, DefaultHostTwo}, nil
	case 2:
		pair := [2]string{trimmed[0], trimmed[1]}
		if pair[0] == "" {
			pair[0] = DefaultHostOne
		}
		if pair[1] == "" {
			pair[1] = DefaultHostTwo
		}
		return pair, nil
	default:
		return [2]string{}, services.Wrap(
			services.ErrValidation, "", "create job",
			fmt.Sprintf("exactly two host names are required, got %d", len(trimmed)), nil)
	}
}

// GetByID fetches a job by identifier. It returns nil without error when
// no job matches.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns all jobs, newest first. Ordering uses the rowid insertion
// sequence rather than the created_at text, whose RFC 3339 encoding drops
// trailing fraction zeros and does not sort lexicographically. Jobs are
// never deleted, so rowids stay monotonic.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

// NextQueued returns the oldest queued job, or nil when the queue is empty.
func (s *Store) NextQueued(ctx context.Context) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY rowid LIMIT 1`,
		string(StatusQueued))
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next queued job: %w", err)
	}
	return job, nil
}

// Running returns the currently running job, or nil when no job is active.
// The single-worker design guarantees at most one row matches.
func (s *Store) Running(ctx context.Context) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY rowid LIMIT 1`,
		string(StatusRunning))
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("running job: %w", err)
	}
	return job, nil
}

// Stats returns job counts keyed by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

// Update applies an atomic read-modify-write to one job. The mutator
// receives the current row inside an immediate transaction; no reader
// observes the job mid-mutation. Returning an error from the mutator
// aborts the update.
func (s *Store) Update(ctx context.Context, id string, mutate func(*Job) error) (*Job, error) {
	ctx = ensureContext(ctx)

	var updated *Job
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin update tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
		job, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			return services.Wrap(services.ErrNotFound, "", "update job", fmt.Sprintf("no job with id %s", id), nil)
		}
		if err != nil {
			return fmt.Errorf("load job for update: %w", err)
		}

		if err := mutate(job); err != nil {
			return err
		}

		updatesJSON, resultsJSON, err := encodeJobJSON(job)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE jobs SET status = ?, current_stage = ?, progress = ?, error_message = ?,
                updates_json = ?, results_json = ?, started_at = ?, finished_at = ?
             WHERE id = ?`,
			string(job.Status),
			string(job.CurrentStage),
			job.Progress,
			job.ErrorMessage,
			updatesJSON,
			resultsJSON,
			nullableTime(job.StartedAt),
			nullableTime(job.FinishedAt),
			job.ID,
		)
		if err != nil {
			return fmt.Errorf("persist job update: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit job update: %w", err)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func encodeJobJSON(job *Job) (string, string, error) {
	updates := job.Updates
	if updates == nil {
		updates = []Update{}
	}
	updatesJSON, err := json.Marshal(updates)
	if err != nil {
		return "", "", fmt.Errorf("marshal updates: %w", err)
	}
	resultsJSON, err := json.Marshal(job.Results)
	if err != nil {
		return "", "", fmt.Errorf("marshal results: %w", err)
	}
	return string(updatesJSON), string(resultsJSON), nil
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job          Job
		status       string
		stage        string
		updatesJSON  string
		resultsJSON  string
		createdAtRaw string
		startedAtRaw sql.NullString
		finishedRaw  sql.NullString
	)
	err := row.Scan(
		&job.ID,
		&job.Topic,
		&job.Hosts[0],
		&job.Hosts[1],
		&status,
		&stage,
		&job.Progress,
		&job.ErrorMessage,
		&updatesJSON,
		&resultsJSON,
		&createdAtRaw,
		&startedAtRaw,
		&finishedRaw,
	)
	if err != nil {
		return nil, err
	}

	job.Status = Status(status)
	job.CurrentStage = Stage(stage)

	if err := json.Unmarshal([]byte(updatesJSON), &job.Updates); err != nil {
		return nil, fmt.Errorf("parse updates for job %s: %w", job.ID, err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &job.Results); err != nil {
		return nil, fmt.Errorf("parse results for job %s: %w", job.ID, err)
	}

	if job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtRaw); err != nil {
		return nil, fmt.Errorf("parse created_at for job %s: %w", job.ID, err)
	}
	if startedAtRaw.Valid && startedAtRaw.String != "" {
		started, err := time.Parse(time.RFC3339Nano, startedAtRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse started_at for job %s: %w", job.ID, err)
		}
		job.StartedAt = &started
	}
	if finishedRaw.Valid && finishedRaw.String != "" {
		finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at for job %s: %w", job.ID, err)
		}
		job.FinishedAt = &finished
	}

	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
