package store

import (
	"context"

	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
)

// Store defines the interface for issue and prediction storage
type Store interface {
	UpsertIssues(ctx context.Context, issues []models.Issue) error
	QueryIssues(ctx context.Context, q models.IssueQuery) ([]models.Issue, error)
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	ResolveIssue(ctx context.Context, id string) error
	UpsertPredictions(ctx context.Context, predictions []models.Prediction) error
	QueryPredictions(ctx context.Context, q models.PredictionQuery) ([]models.Prediction, error)
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
