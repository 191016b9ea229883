package customunit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edoardob90/runits/internal/registry"
)

// Repository defines persistence for custom units.
type Repository interface {
	List(ctx context.Context) ([]CustomUnit, error)
	GetByName(ctx context.Context, name string) (*CustomUnit, error)
	Create(ctx context.Context, u *CustomUnit) error
	Update(ctx context.Context, u *CustomUnit) error
	Delete(ctx context.Context, name string) error
}

const unitColumns = `id, name, kind, scale, offset_value, base, expression, inverse,
			aliases, description, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns every custom unit in insertion order, so later definitions
// layer over earlier ones when built into a registry.
func (r *SQLiteRepository) List(ctx context.Context) ([]CustomUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM custom_units ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying custom units: %w", err)
	}
	defer rows.Close()

	var list []CustomUnit
	for rows.Next() {
		u, scanErr := scanUnit(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning custom unit: %w", scanErr)
		}
		list = append(list, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating custom units: %w", err)
	}
	return list, nil
}

// GetByName retrieves a custom unit by name.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*CustomUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM custom_units WHERE name = ?`

	u, err := scanUnit(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying custom unit: %w", err)
	}
	return u, nil
}

// Create inserts a new custom unit, assigning an ID when it has none.
func (r *SQLiteRepository) Create(ctx context.Context, u *CustomUnit) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := Validate(u); err != nil {
		return err
	}
	aliasesJSON, err := marshalAliases(u.Aliases)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	query := `
		INSERT INTO custom_units (
			id, name, kind, scale, offset_value, base, expression, inverse,
			aliases, description, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		u.ID,
		u.Name,
		string(u.Kind),
		u.Scale,
		u.Offset,
		u.Base,
		nullableString(u.Expression),
		nullableString(u.Inverse),
		aliasesJSON,
		nullableString(u.Description),
		u.CreatedAt.Format(time.RFC3339Nano),
		u.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting custom unit: %w", err)
	}
	return nil
}

// Update replaces the definition stored under u.Name.
func (r *SQLiteRepository) Update(ctx context.Context, u *CustomUnit) error {
	if err := Validate(u); err != nil {
		return err
	}
	aliasesJSON, err := marshalAliases(u.Aliases)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE custom_units SET
			kind = ?, scale = ?, offset_value = ?, base = ?, expression = ?,
			inverse = ?, aliases = ?, description = ?, updated_at = ?
		WHERE name = ?`

	result, err := r.db.ExecContext(ctx, query,
		string(u.Kind),
		u.Scale,
		u.Offset,
		u.Base,
		nullableString(u.Expression),
		nullableString(u.Inverse),
		aliasesJSON,
		nullableString(u.Description),
		u.UpdatedAt.Format(time.RFC3339Nano),
		u.Name,
	)
	if err != nil {
		return fmt.Errorf("updating custom unit: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a custom unit by name.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM custom_units WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting custom unit: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(scanner rowScanner) (*CustomUnit, error) {
	var u CustomUnit
	var kind, aliasesJSON, createdAt, updatedAt string
	var expression, inverse, description sql.NullString

	err := scanner.Scan(
		&u.ID,
		&u.Name,
		&kind,
		&u.Scale,
		&u.Offset,
		&u.Base,
		&expression,
		&inverse,
		&aliasesJSON,
		&description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Kind = registry.Kind(kind)
	u.Expression = expression.String
	u.Inverse = inverse.String
	u.Description = description.String

	if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		u.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		u.UpdatedAt = t
	}

	if aliasesJSON != "" && aliasesJSON != "[]" {
		if jsonErr := json.Unmarshal([]byte(aliasesJSON), &u.Aliases); jsonErr != nil {
			return nil, fmt.Errorf("unmarshalling aliases: %w", jsonErr)
		}
	}
	return &u, nil
}

func marshalAliases(aliases []string) (string, error) {
	if len(aliases) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(aliases)
	if err != nil {
		return "", fmt.Errorf("marshalling aliases: %w", err)
	}
	return string(data), nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
