package jobs

import (
	"context"
	"sync"
	"time"
)

// Store persists job records with a TTL.
type Store interface {
	// Get returns the job, or ErrJobNotFound if absent or expired.
	Get(ctx context.Context, jobID string) (*Job, error)

	// Put stores the job and resets its TTL.
	Put(ctx context.Context, job *Job) error
}

// memoryStore is the in-process fallback used when Redis is unreachable.
type memoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration

	jobs    map[string]*Job
	expires map[string]time.Time
}

var _ Store = (*memoryStore)(nil)

func newMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{
		ttl:     ttl,
		jobs:    make(map[string]*Job),
		expires: make(map[string]time.Time),
	}
}

func (s *memoryStore) Get(ctx context.Context, jobID string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if expiry, ok := s.expires[jobID]; ok && time.Now().After(expiry) {
		return nil, ErrJobNotFound
	}

	copied := *job
	copied.Documents = make(map[string]DocumentEntry, len(job.Documents))
	for k, v := range job.Documents {
		copied.Documents[k] = v
	}
	return &copied, nil
}

func (s *memoryStore) Put(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	copied.Documents = make(map[string]DocumentEntry, len(job.Documents))
	for k, v := range job.Documents {
		copied.Documents[k] = v
	}

	s.jobs[job.JobID] = &copied
	if s.ttl > 0 {
		s.expires[job.JobID] = time.Now().Add(s.ttl)
	}
	return nil
}
