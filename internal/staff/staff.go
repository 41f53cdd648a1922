package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("staff member not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

func (c *Conf) ListStaff(ctx context.Context) ([]Staff, error) {
	query := `
		SELECT staff_id, name, email, role, created_at
		FROM staff
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var list []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}
	return list, nil
}

func (c *Conf) InsertStaff(ctx context.Context, ns NewStaff) (Staff, error) {
	var s Staff
	query := `
		INSERT INTO staff (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING staff_id, name, email, role, created_at
	`
	err := c.db.QueryRowContext(ctx, query, ns.Name, ns.Email, ns.Role).
		Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.CreatedAt)
	if err != nil {
		return Staff{}, fmt.Errorf("failed to insert staff: %w", err)
	}
	return s, nil
}

func (c *Conf) DeleteStaff(ctx context.Context, staffID int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM staff WHERE staff_id = $1`, staffID)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
