package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// View is a saved, named view configuration. Type groups views by the
// surface they apply to; Config is always a JSON object.
type View struct {
	ID        string          `json:"view_id"`
	Name      string          `json:"name"`
	Type      string          `json:"view_type"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ViewUpdate changes the non-nil fields of a view.
type ViewUpdate struct {
	Name   *string
	Type   *string
	Config json.RawMessage
}

// ViewConfig returns data when it is a JSON object and {} otherwise.
func ViewConfig(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	var obj map[string]json.RawMessage
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return json.RawMessage("{}")
	}
	return json.RawMessage(append([]byte(nil), trimmed...))
}

func (s *Store) open() error {
	if s == nil || s.db == nil {
		return trackerrors.New(trackerrors.CategoryPersistence, trackerrors.CodeStoreClosed, "view store is not open")
	}
	return nil
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

// CreateView stores a new view with a random id.
func (s *Store) CreateView(ctx context.Context, name, viewType string, config []byte) (View, error) {
	if err := s.open(); err != nil {
		return View{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return View{}, trackerrors.NewValidationError("view name is required")
	}
	now := s.stamp()
	v := View{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      strings.TrimSpace(viewType),
		Config:    ViewConfig(config),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO views (view_id, name, view_type, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Type, string(v.Config), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return View{}, trackerrors.NewSaveError("create view", err)
	}
	s.log.Debug("view created", "id", v.ID, "type", v.Type)
	return v, nil
}

// ListViews returns the views of viewType, or every view when viewType is
// empty, oldest first and then by name.
func (s *Store) ListViews(ctx context.Context, viewType string) ([]View, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := `SELECT view_id, name, view_type, config, created_at, updated_at FROM views`
	var args []any
	if viewType != "" {
		query += ` WHERE view_type = ?`
		args = append(args, viewType)
	}
	query += ` ORDER BY created_at ASC, name ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, trackerrors.NewLoadError("read views", err)
	}
	defer rows.Close()
	var out []View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.NewLoadError("read views", err)
	}
	return out, nil
}

// GetView returns the view with id.
func (s *Store) GetView(ctx context.Context, id string) (View, error) {
	if err := s.open(); err != nil {
		return View{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT view_id, name, view_type, config, created_at, updated_at
		FROM views WHERE view_id = ?`, id)
	v, err := scanView(row)
	if trackerrors.IsNotFound(err) {
		return View{}, trackerrors.NewNotFoundError("view " + id + " not found")
	}
	return v, err
}

// UpdateView applies u to the view with id and returns the result.
func (s *Store) UpdateView(ctx context.Context, id string, u ViewUpdate) (View, error) {
	v, err := s.GetView(ctx, id)
	if err != nil {
		return View{}, err
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return View{}, trackerrors.NewValidationError("view name is required")
		}
		v.Name = name
	}
	if u.Type != nil {
		v.Type = strings.TrimSpace(*u.Type)
	}
	if u.Config != nil {
		v.Config = ViewConfig(u.Config)
	}
	v.UpdatedAt = s.stamp()
	_, err = s.db.ExecContext(ctx, `UPDATE views SET name = ?, view_type = ?, config = ?, updated_at = ?
		WHERE view_id = ?`, v.Name, v.Type, string(v.Config), v.UpdatedAt.Format(timeLayout), id)
	if err != nil {
		return View{}, trackerrors.NewSaveError("update view", err)
	}
	return v, nil
}

// DeleteView removes the view with id.
func (s *Store) DeleteView(ctx context.Context, id string) error {
	if err := s.open(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE view_id = ?`, id)
	if err != nil {
		return trackerrors.NewSaveError("delete view", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return trackerrors.NewNotFoundError("view " + id + " not found")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanView(sc scanner) (View, error) {
	var v View
	var config, created, updated string
	err := sc.Scan(&v.ID, &v.Name, &v.Type, &config, &created, &updated)
	if err == sql.ErrNoRows {
		return View{}, trackerrors.NewNotFoundError("view not found")
	}
	if err != nil {
		return View{}, trackerrors.NewLoadError("scan view", err)
	}
	v.Config = ViewConfig([]byte(config))
	v.CreatedAt, _ = time.Parse(timeLayout, created)
	v.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return v, nil
}
