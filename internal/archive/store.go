// Package archive persists generated content so results can be audited,
// reused and reported on. The generation pipeline itself never writes here;
// the API layer decides what gets archived.
package archive

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Record is one archived generation result.
type Record struct {
	ID             string         `json:"id"`
	ClientID       string         `json:"client_id,omitempty"`
	Kind           string         `json:"kind"` // content, questions, explanation
	Subject        string         `json:"subject"`
	Grade          int            `json:"grade"`
	Topic          string         `json:"topic"`
	ContentType    string         `json:"content_type,omitempty"`
	CurriculumCode string         `json:"curriculum_code"`
	Model          string         `json:"model"`
	Fingerprint    string         `json:"fingerprint"`
	Degraded       bool           `json:"degraded"`
	Partial        bool           `json:"partial"`
	TokensUsed     int            `json:"tokens_used"`
	Payload        map[string]any `json:"payload"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ListFilter narrows List results. Zero values mean "all".
type ListFilter struct {
	Subject string
	Grade   int
	Kind    string
	Limit   int
}

// Store persists generation records.
type Store interface {
	Save(ctx context.Context, rec Record) (string, error)
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

const defaultListLimit = 50

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

// NewMemoryStore creates an in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) (string, error) {
	if rec.Kind == "" {
		return "", fmt.Errorf("kind is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = generateID()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[rec.ID] = &rec
	s.order = append(s.order, rec.ID)
	return rec.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := *rec
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Record{}
	// Newest first.
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.records[s.order[i]]
		if filter.Subject != "" && rec.Subject != filter.Subject {
			continue
		}
		if filter.Grade != 0 && rec.Grade != filter.Grade {
			continue
		}
		if filter.Kind != "" && rec.Kind != filter.Kind {
			continue
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
