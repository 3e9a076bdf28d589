package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/schoolregistry/server/internal/model"
)

// SchoolRepo defines the interface for the school registry.
type SchoolRepo interface {
	List(ctx context.Context) ([]model.School, error)
	Create(ctx context.Context, school model.School) (int64, error)
	GetByID(ctx context.Context, id int64) (model.School, error)
	Delete(ctx context.Context, id int64) error
}

type schoolRepo struct {
	db *sql.DB
}

// NewSchoolRepo creates a new SchoolRepo instance
func NewSchoolRepo(db *sql.DB) SchoolRepo {
	return &schoolRepo{db: db}
}

// List returns all schools, newest first.
func (r *schoolRepo) List(ctx context.Context) ([]model.School, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, city, state, contact, email_id, image
		FROM schools
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query schools: %w", err)
	}
	defer rows.Close()

	schools := []model.School{}
	for rows.Next() {
		var s model.School
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.State, &s.Contact, &s.EmailID, &s.Image); err != nil {
			return nil, fmt.Errorf("scan school: %w", err)
		}
		schools = append(schools, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schools: %w", err)
	}
	return schools, nil
}

// Create inserts a school and returns its ID.
func (r *schoolRepo) Create(ctx context.Context, school model.School) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO schools (name, address, city, state, contact, email_id, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, school.Name, school.Address, school.City, school.State, school.Contact, school.EmailID, school.Image).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert school: %w", err)
	}
	return id, nil
}

// GetByID retrieves a school by ID.
func (r *schoolRepo) GetByID(ctx context.Context, id int64) (model.School, error) {
	var s model.School
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, city, state, contact, email_id, image
		FROM schools
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.State, &s.Contact, &s.EmailID, &s.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.School{}, ErrNotFound
		}
		return model.School{}, fmt.Errorf("query school: %w", err)
	}
	return s, nil
}

// Delete removes a school. Returns ErrNotFound when no row matched.
func (r *schoolRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete school: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
