// Copyright 2026 Quillstack Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Defaults for job tracking.
const (
	DefaultTTL         = 24 * time.Hour
	defaultPingTimeout = 2 * time.Second
)

// Tracker manages batch job lifecycle: creation, per-document progress, and
// terminal transitions.
type Tracker struct {
	store  Store
	logger *slog.Logger

	// locks serializes the read-modify-write cycle per job ID.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// TrackerOption configures tracker construction.
type TrackerOption func(*trackerConfig)

type trackerConfig struct {
	redisAddr     string
	redisPassword string
	redisDB       int
	ttl           time.Duration
	store         Store
}

// WithRedis points the tracker at a Redis instance.
func WithRedis(addr, password string, db int) TrackerOption {
	return func(c *trackerConfig) {
		c.redisAddr = addr
		c.redisPassword = password
		c.redisDB = db
	}
}

// WithTTL overrides the job record TTL.
func WithTTL(ttl time.Duration) TrackerOption {
	return func(c *trackerConfig) {
		c.ttl = ttl
	}
}

// WithStore injects a Store directly, bypassing Redis setup. Used in tests.
func WithStore(store Store) TrackerOption {
	return func(c *trackerConfig) {
		c.store = store
	}
}

// NewTracker creates a job tracker. If a Redis address is configured but the
// server does not answer a ping within 2 seconds, the tracker logs a warning
// and falls back to an in-process store: ingestion proceeds, but progress does
// not survive restarts.
func NewTracker(ctx context.Context, opts ...TrackerOption) *Tracker {
	cfg := &trackerConfig{ttl: DefaultTTL}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := slog.Default().With("component", "job-tracker")

	store := cfg.store
	if store == nil && cfg.redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
		err := client.Ping(pingCtx).Err()
		cancel()

		if err != nil {
			logger.Warn("redis unreachable, falling back to in-memory job tracking",
				"addr", cfg.redisAddr, "err", err)
			client.Close()
		} else {
			store = newRedisStore(client, cfg.ttl)
			logger.Info("job tracking backed by redis", "addr", cfg.redisAddr)
		}
	}
	if store == nil {
		store = newMemoryStore(cfg.ttl)
	}

	return &Tracker{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex dedicated to jobID, creating it on first use.
func (t *Tracker) lockFor(jobID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[jobID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[jobID] = lock
	}
	return lock
}

// releaseLock drops the mutex for a finished job. Terminal jobs take no
// further serialized updates, so keeping the entry would only leak.
func (t *Tracker) releaseLock(jobID string) {
	t.mu.Lock()
	delete(t.locks, jobID)
	t.mu.Unlock()
}

// CreateJob registers a new processing job expecting total documents.
func (t *Tracker) CreateJob(ctx context.Context, jobID string, total int) (*Job, error) {
	if total <= 0 {
		return nil, ErrInvalidTotal
	}

	now := time.Now().UTC()
	job := &Job{
		JobID:          jobID,
		Status:         StatusProcessing,
		TotalDocuments: total,
		Documents:      make(map[string]DocumentEntry),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := t.store.Put(ctx, job); err != nil {
		return nil, err
	}

	t.logger.Info("job created", "jobID", jobID, "totalDocuments", total)
	return job, nil
}

// GetJob returns the current state of a job.
func (t *Tracker) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return t.store.Get(ctx, jobID)
}

// ReportDocument records the terminal outcome of one document: success when
// docErr is nil, failure otherwise. Reports are idempotent per document, and
// reports against a job that has already finished are ignored. When every
// document has reported, the job transitions to completed.
func (t *Tracker) ReportDocument(ctx context.Context, jobID, documentID, filename string, docErr error) (*Job, error) {
	lock := t.lockFor(jobID)
	lock.Lock()
	defer lock.Unlock()

	job, err := t.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Terminal() {
		t.releaseLock(jobID)
		return job, nil
	}
	if _, reported := job.Documents[documentID]; reported {
		return job, nil
	}

	entry := DocumentEntry{Filename: filename, Status: DocCompleted}
	if docErr != nil {
		entry = DocumentEntry{Filename: filename, Status: DocFailed, Error: docErr.Error()}
		job.FailedDocuments++
	} else {
		job.CompletedDocuments++
	}
	if job.Documents == nil {
		job.Documents = make(map[string]DocumentEntry)
	}
	job.Documents[documentID] = entry
	job.CurrentFile = filename

	if job.CompletedDocuments+job.FailedDocuments >= job.TotalDocuments {
		job.Status = StatusCompleted
		job.CurrentFile = ""
		t.logger.Info("job completed", "jobID", jobID,
			"completed", job.CompletedDocuments, "failed", job.FailedDocuments)
	}
	job.UpdatedAt = time.Now().UTC()

	if err := t.store.Put(ctx, job); err != nil {
		return nil, err
	}
	if job.Terminal() {
		t.releaseLock(jobID)
	}
	return job, nil
}

// MarkJobFailed forces a job into the failed state, recording the reason.
// Unlike document reports, this override applies even to finished jobs.
func (t *Tracker) MarkJobFailed(ctx context.Context, jobID, reason string) (*Job, error) {
	lock := t.lockFor(jobID)
	lock.Lock()
	defer lock.Unlock()

	job, err := t.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job.Status = StatusFailed
	job.Error = reason
	job.UpdatedAt = time.Now().UTC()

	if err := t.store.Put(ctx, job); err != nil {
		return nil, err
	}

	t.releaseLock(jobID)
	t.logger.Warn("job marked failed", "jobID", jobID, "reason", reason)
	return job, nil
}
