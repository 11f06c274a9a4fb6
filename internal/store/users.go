package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/manvel7/Antd-small-test/internal/user"
)

// Page is one page of a paginated listing.
type Page struct {
	Records    []user.Record
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

const userColumns = `id, name, age, phone, country`

// List returns all users ordered by insertion.
// Returns an empty slice (not nil) if there are no users.
func (s *Store) List(ctx context.Context) ([]user.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return scanUsers(rows)
}

// ListPage returns a 1-based page of users ordered by insertion.
// page < 1 is treated as 1 and limit < 1 as 10.
func (s *Store) ListPage(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY seq ASC
		LIMIT ? OFFSET ?
	`, limit, (page-1)*limit)
	if err != nil {
		return Page{}, fmt.Errorf("query users page: %w", err)
	}
	records, err := scanUsers(rows)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Records:    records,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Search returns users whose name, phone or country contains q
// (case-insensitive for ASCII). An empty query matches everything.
func (s *Store) Search(ctx context.Context, q string) ([]user.Record, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(ctx)
	}
	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE name LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\' OR country LIKE ? ESCAPE '\'
		ORDER BY seq ASC
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return scanUsers(rows)
}

// Get returns the user with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (user.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`, id)
	r, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Record{}, ErrNotFound
	}
	if err != nil {
		return user.Record{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return r, nil
}

// Create inserts a new user and returns it with its assigned ID.
func (s *Store) Create(ctx context.Context, in user.Input) (user.Record, error) {
	r := user.Record{ID: s.ids.Generate()}.WithInput(in)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, age, phone, country)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Age, r.Phone, r.Country)
	if err != nil {
		return user.Record{}, fmt.Errorf("create user: %w", err)
	}
	return r, nil
}

// Update replaces every field of the user with the given ID.
func (s *Store) Update(ctx context.Context, id string, in user.Input) (user.Record, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, age = ?, phone = ?, country = ?
		WHERE id = ?
	`, in.Name, in.Age, in.Phone, in.Country, id)
	if err != nil {
		return user.Record{}, fmt.Errorf("update user %s: %w", id, err)
	}
	if err := requireOneRow(res); err != nil {
		return user.Record{}, err
	}
	return user.Record{ID: id}.WithInput(in), nil
}

// Patch applies the non-nil fields of p to the user with the given ID.
// The read and write happen in one transaction.
func (s *Store) Patch(ctx context.Context, id string, p user.Patch) (user.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return user.Record{}, fmt.Errorf("patch user: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	current, err := scanUser(tx.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return user.Record{}, ErrNotFound
	}
	if err != nil {
		return user.Record{}, fmt.Errorf("patch user %s: %w", id, err)
	}

	next := current.Apply(p)
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET name = ?, age = ?, phone = ?, country = ?
		WHERE id = ?
	`, next.Name, next.Age, next.Phone, next.Country, id); err != nil {
		return user.Record{}, fmt.Errorf("patch user %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return user.Record{}, fmt.Errorf("patch user: commit: %w", err)
	}
	return next, nil
}

// Delete removes the user with the given ID, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.Record, error) {
	var r user.Record
	err := row.Scan(&r.ID, &r.Name, &r.Age, &r.Phone, &r.Country)
	return r, err
}

func scanUsers(rows *sql.Rows) ([]user.Record, error) {
	defer rows.Close()

	records := []user.Record{}
	for rows.Next() {
		r, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return records, nil
}

// escapeLike escapes LIKE wildcards so q matches literally.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}
