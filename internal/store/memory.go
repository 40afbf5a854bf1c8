package store

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/Ankursingh018as/public-pulse-ai/internal/errors"
	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
)

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu          sync.RWMutex
	issues      map[string]models.Issue
	predictions map[string]models.Prediction
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		issues:      make(map[string]models.Issue),
		predictions: make(map[string]models.Prediction),
	}
}

// UpsertIssues stores issues in memory
func (s *InMemoryStore) UpsertIssues(ctx context.Context, issues []models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, issue := range issues {
		if existing, ok := s.issues[issue.ID]; ok {
			issue.CreatedAt = existing.CreatedAt
		}
		s.issues[issue.ID] = issue
	}

	return nil
}

// QueryIssues retrieves issues from memory based on query parameters
func (s *InMemoryStore) QueryIssues(ctx context.Context, q models.IssueQuery) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Issue
	for _, issue := range s.issues {
		if q.Matches(issue) {
			result = append(result, issue)
		}
	}

	// Sort by CreatedAt descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	// Apply limit and offset
	if q.Offset > 0 && q.Offset < len(result) {
		result = result[q.Offset:]
	} else if q.Offset >= len(result) && q.Offset > 0 {
		result = []models.Issue{}
	}

	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}

	return result, nil
}

// GetIssue retrieves a single issue by ID
func (s *InMemoryStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if issue, exists := s.issues[id]; exists {
		return &issue, nil
	}

	return nil, nil
}

// ResolveIssue marks an issue as resolved
func (s *InMemoryStore) ResolveIssue(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, exists := s.issues[id]
	if !exists {
		return &apperrors.StoreError{Operation: "resolve_issue", Err: apperrors.ErrNotFound}
	}
	issue.Resolved = true
	issue.UpdatedAt = time.Now()
	s.issues[id] = issue

	return nil
}

// UpsertPredictions stores predictions in memory
func (s *InMemoryStore) UpsertPredictions(ctx context.Context, predictions []models.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range predictions {
		s.predictions[p.ID] = p
	}

	return nil
}

// QueryPredictions retrieves predictions from memory based on query parameters
func (s *InMemoryStore) QueryPredictions(ctx context.Context, q models.PredictionQuery) ([]models.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Prediction
	for _, p := range s.predictions {
		if q.Matches(p) {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}

	return result, nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
