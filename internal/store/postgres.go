package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// UpsertIssues inserts or updates issues in the database
func (s *PostgresStore) UpsertIssues(ctx context.Context, issues []models.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	// Use UPSERT (INSERT ... ON CONFLICT DO UPDATE)
	query := `
		INSERT INTO issues (
			id, type, area_name, source, raw_text, severity, confidence,
			urgency, language, resolved, status, metadata, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			area_name = EXCLUDED.area_name,
			severity = EXCLUDED.severity,
			confidence = EXCLUDED.confidence,
			urgency = EXCLUDED.urgency,
			language = EXCLUDED.language,
			resolved = EXCLUDED.resolved,
			status = EXCLUDED.status,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()
	`

	for _, issue := range issues {
		metadata, err := json.Marshal(issue.Metadata)
		if err != nil {
			return fmt.Errorf("marshal issue %s metadata: %w", issue.ID, err)
		}
		err = s.db.Exec(ctx, query,
			issue.ID, issue.Type, issue.AreaName, issue.Source, issue.RawText,
			issue.Severity, issue.Confidence, issue.Urgency, issue.Language,
			issue.Resolved, issue.Status, metadata, issue.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert issue %s: %w", issue.ID, err)
		}
	}

	return nil
}

// QueryIssues retrieves issues based on query parameters
func (s *PostgresStore) QueryIssues(ctx context.Context, q models.IssueQuery) ([]models.Issue, error) {
	query := `
		SELECT id, type, area_name, source, raw_text, severity, confidence,
			   urgency, language, resolved, status, metadata, created_at, updated_at
		FROM issues
		WHERE 1=1
	`

	var args []interface{}
	argIndex := 1

	// Build WHERE conditions
	if len(q.IDs) > 0 {
		query += fmt.Sprintf(" AND id = ANY($%d)", argIndex)
		args = append(args, q.IDs)
		argIndex++
	}

	if len(q.Types) > 0 {
		query += fmt.Sprintf(" AND type = ANY($%d)", argIndex)
		args = append(args, q.Types)
		argIndex++
	}

	if len(q.Areas) > 0 {
		query += fmt.Sprintf(" AND area_name = ANY($%d)", argIndex)
		args = append(args, q.Areas)
		argIndex++
	}

	if len(q.Sources) > 0 {
		query += fmt.Sprintf(" AND source = ANY($%d)", argIndex)
		args = append(args, q.Sources)
		argIndex++
	}

	if len(q.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, q.Statuses)
		argIndex++
	}

	if q.Resolved != nil {
		query += fmt.Sprintf(" AND resolved = $%d", argIndex)
		args = append(args, *q.Resolved)
		argIndex++
	}

	if q.MinSeverity > 0 {
		query += fmt.Sprintf(" AND severity >= $%d", argIndex)
		args = append(args, q.MinSeverity)
		argIndex++
	}

	if !q.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, q.Since)
		argIndex++
	}

	if !q.Until.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, q.Until)
		argIndex++
	}

	// Add ordering
	query += " ORDER BY created_at DESC"

	// Add limit and offset
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
		argIndex++
	}

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, q.Offset)
	}

	rowsInterface, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

// GetIssue retrieves a single issue by ID
func (s *PostgresStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	query := `
		SELECT id, type, area_name, source, raw_text, severity, confidence,
			   urgency, language, resolved, status, metadata, created_at, updated_at
		FROM issues
		WHERE id = $1
	`

	rowInterface := s.db.QueryRow(ctx, query, id)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return nil, fmt.Errorf("invalid row type")
	}

	issue, err := scanIssue(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan issue: %w", err)
	}

	return &issue, nil
}

// ResolveIssue marks an issue as resolved
func (s *PostgresStore) ResolveIssue(ctx context.Context, id string) error {
	query := `UPDATE issues SET resolved = TRUE, updated_at = NOW() WHERE id = $1`
	if err := s.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("resolve issue %s: %w", id, err)
	}
	return nil
}

// UpsertPredictions inserts or updates predictions in the database
func (s *PostgresStore) UpsertPredictions(ctx context.Context, predictions []models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	query := `
		INSERT INTO predictions (
			id, event_type, area_name, probability, eta_hours, confidence,
			reasons, breakdown, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			probability = EXCLUDED.probability,
			eta_hours = EXCLUDED.eta_hours,
			confidence = EXCLUDED.confidence,
			reasons = EXCLUDED.reasons,
			breakdown = EXCLUDED.breakdown
	`

	for _, p := range predictions {
		breakdown, err := json.Marshal(p.Breakdown)
		if err != nil {
			return fmt.Errorf("marshal prediction %s breakdown: %w", p.ID, err)
		}
		err = s.db.Exec(ctx, query,
			p.ID, p.EventType, p.AreaName, p.Probability, p.ETAHours,
			p.Confidence, p.Reasons, breakdown, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert prediction %s: %w", p.ID, err)
		}
	}

	return nil
}

// QueryPredictions retrieves predictions based on query parameters
func (s *PostgresStore) QueryPredictions(ctx context.Context, q models.PredictionQuery) ([]models.Prediction, error) {
	query := `
		SELECT id, event_type, area_name, probability, eta_hours, confidence,
			   reasons, breakdown, created_at
		FROM predictions
		WHERE 1=1
	`

	var args []interface{}
	argIndex := 1

	if len(q.Areas) > 0 {
		query += fmt.Sprintf(" AND area_name = ANY($%d)", argIndex)
		args = append(args, q.Areas)
		argIndex++
	}

	if len(q.EventTypes) > 0 {
		query += fmt.Sprintf(" AND event_type = ANY($%d)", argIndex)
		args = append(args, q.EventTypes)
		argIndex++
	}

	if q.MinProbability > 0 {
		query += fmt.Sprintf(" AND probability >= $%d", argIndex)
		args = append(args, q.MinProbability)
		argIndex++
	}

	if !q.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, q.Since)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
	}

	rowsInterface, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		var p models.Prediction
		var breakdown []byte
		err := rows.Scan(
			&p.ID, &p.EventType, &p.AreaName, &p.Probability, &p.ETAHours,
			&p.Confidence, &p.Reasons, &breakdown, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
				return nil, fmt.Errorf("unmarshal prediction %s breakdown: %w", p.ID, err)
			}
		}
		predictions = append(predictions, p)
	}

	return predictions, nil
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func scanIssue(row pgx.Row) (models.Issue, error) {
	var issue models.Issue
	var metadata []byte
	err := row.Scan(
		&issue.ID, &issue.Type, &issue.AreaName, &issue.Source, &issue.RawText,
		&issue.Severity, &issue.Confidence, &issue.Urgency, &issue.Language,
		&issue.Resolved, &issue.Status, &metadata, &issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return issue, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &issue.Metadata); err != nil {
			return issue, fmt.Errorf("unmarshal issue %s metadata: %w", issue.ID, err)
		}
	}
	return issue, nil
}
