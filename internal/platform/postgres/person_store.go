package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that PersonStore implements store.PersonStore.
var _ store.PersonStore = (*PersonStore)(nil)

// PersonStore implements store.PersonStore using PostgreSQL. The
// birthday is flattened into nullable month/day columns.
type PersonStore struct {
	db store.DBTX
}

// NewPersonStore creates a new PersonStore.
func NewPersonStore(db store.DBTX) *PersonStore {
	return &PersonStore{db: db}
}

// Create saves a new person.
func (s *PersonStore) Create(ctx context.Context, person *domain.Person) error {
	log := logger.FromContext(ctx)

	if err := person.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := marshalOptionalParams(person.CatchUpParams)
	if err != nil {
		return err
	}
	birthMonth, birthDay := birthdayColumns(person.Birthday)

	query := `
		INSERT INTO persons (id, project_id, name, relationship, catch_up_params,
			birthday_month, birthday_day, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		person.ID,
		person.ProjectID,
		person.Name,
		person.Relationship,
		params,
		birthMonth,
		birthDay,
		person.Archived,
		person.CreatedAt,
		person.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create person",
			"person_id", person.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return nil
}

// GetByID retrieves a person by its unique ID.
func (s *PersonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	query := `
		SELECT id, project_id, name, relationship, catch_up_params,
			birthday_month, birthday_day, archived, created_at, updated_at
		FROM persons
		WHERE id = $1
	`
	return scanPerson(s.db.QueryRowContext(ctx, query, id))
}

// Update persists the current state of the person.
func (s *PersonStore) Update(ctx context.Context, person *domain.Person) error {
	log := logger.FromContext(ctx)

	if err := person.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := marshalOptionalParams(person.CatchUpParams)
	if err != nil {
		return err
	}
	birthMonth, birthDay := birthdayColumns(person.Birthday)

	query := `
		UPDATE persons
		SET project_id = $1, name = $2, relationship = $3, catch_up_params = $4,
			birthday_month = $5, birthday_day = $6, archived = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(ctx, query,
		person.ProjectID,
		person.Name,
		person.Relationship,
		params,
		birthMonth,
		birthDay,
		person.Archived,
		person.UpdatedAt,
		person.ID,
	)
	if err != nil {
		log.Error("failed to update person",
			"person_id", person.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// Archive marks the person archived.
func (s *PersonStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE persons
		SET archived = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// List returns persons matching the filter.
func (s *PersonStore) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Person, error) {
	query := `
		SELECT id, project_id, name, relationship, catch_up_params,
			birthday_month, birthday_day, archived, created_at, updated_at
		FROM persons
	`
	where, args := templateWhere(filter)
	query += where + ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var persons []*domain.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}
	return persons, nil
}

func scanPerson(row rowScanner) (*domain.Person, error) {
	var p domain.Person
	var params []byte
	var birthMonth, birthDay sql.NullInt32
	err := row.Scan(
		&p.ID,
		&p.ProjectID,
		&p.Name,
		&p.Relationship,
		&params,
		&birthMonth,
		&birthDay,
		&p.Archived,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, store.ErrTemplateNotFound)
	}
	p.CatchUpParams, err = unmarshalOptionalParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal person params: %w", err)
	}
	if birthMonth.Valid && birthDay.Valid {
		p.Birthday = &domain.Birthday{
			Month: time.Month(birthMonth.Int32),
			Day:   int(birthDay.Int32),
		}
	}
	return &p, nil
}

func birthdayColumns(b *domain.Birthday) (month, day any) {
	if b == nil {
		return nil, nil
	}
	return int(b.Month), b.Day
}
