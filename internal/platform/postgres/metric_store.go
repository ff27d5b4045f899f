package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that MetricStore implements store.MetricStore.
var _ store.MetricStore = (*MetricStore)(nil)

// MetricStore implements store.MetricStore using PostgreSQL. Collection
// params are a nullable JSONB column: NULL means the metric generates no
// collection tasks.
type MetricStore struct {
	db store.DBTX
}

// NewMetricStore creates a new MetricStore.
func NewMetricStore(db store.DBTX) *MetricStore {
	return &MetricStore{db: db}
}

// Create saves a new metric.
func (s *MetricStore) Create(ctx context.Context, metric *domain.Metric) error {
	log := logger.FromContext(ctx)

	if err := metric.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := marshalOptionalParams(metric.CollectionParams)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO metrics (id, project_id, name, unit, collection_params, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		metric.ID,
		metric.ProjectID,
		metric.Name,
		metric.Unit,
		params,
		metric.Archived,
		metric.CreatedAt,
		metric.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create metric",
			"metric_id", metric.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return nil
}

// GetByID retrieves a metric by its unique ID.
func (s *MetricStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Metric, error) {
	query := `
		SELECT id, project_id, name, unit, collection_params, archived, created_at, updated_at
		FROM metrics
		WHERE id = $1
	`
	return scanMetric(s.db.QueryRowContext(ctx, query, id))
}

// Update persists the current state of the metric.
func (s *MetricStore) Update(ctx context.Context, metric *domain.Metric) error {
	log := logger.FromContext(ctx)

	if err := metric.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := marshalOptionalParams(metric.CollectionParams)
	if err != nil {
		return err
	}

	query := `
		UPDATE metrics
		SET project_id = $1, name = $2, unit = $3, collection_params = $4, archived = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		metric.ProjectID,
		metric.Name,
		metric.Unit,
		params,
		metric.Archived,
		metric.UpdatedAt,
		metric.ID,
	)
	if err != nil {
		log.Error("failed to update metric",
			"metric_id", metric.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// Archive marks the metric archived.
func (s *MetricStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE metrics
		SET archived = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// List returns metrics matching the filter.
func (s *MetricStore) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Metric, error) {
	query := `
		SELECT id, project_id, name, unit, collection_params, archived, created_at, updated_at
		FROM metrics
	`
	where, args := templateWhere(filter)
	query += where + ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []*domain.Metric
	for rows.Next() {
		metric, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metrics: %w", err)
	}
	return metrics, nil
}

func scanMetric(row rowScanner) (*domain.Metric, error) {
	var m domain.Metric
	var params []byte
	err := row.Scan(
		&m.ID,
		&m.ProjectID,
		&m.Name,
		&m.Unit,
		&params,
		&m.Archived,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, store.ErrTemplateNotFound)
	}
	m.CollectionParams, err = unmarshalOptionalParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal metric params: %w", err)
	}
	return &m, nil
}

// marshalOptionalParams renders nullable recurrence params as JSONB or
// SQL NULL.
func marshalOptionalParams(p *domain.RecurringParams) (any, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recurrence params: %w", err)
	}
	return raw, nil
}

func unmarshalOptionalParams(raw []byte) (*domain.RecurringParams, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p domain.RecurringParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
