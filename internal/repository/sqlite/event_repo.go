package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"eventsphere/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventSelect = `
	SELECT e.id, e.title, e.description, e.location, e.event_date, e.capacity, e.is_active,
		e.created_by, e.created_at, e.updated_at,
		(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id) AS registration_count,
		u.full_name
	FROM events e
	LEFT JOIN users u ON u.id = e.created_by
`

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		descNull, locNull, createdByNull, creatorNull sql.NullString
		updatedNull                                   sql.NullTime
	)
	err := row.Scan(
		&e.ID, &e.Title, &descNull, &locNull, &e.EventDate, &e.Capacity, &e.IsActive,
		&createdByNull, &e.CreatedAt, &updatedNull, &e.RegistrationCount, &creatorNull,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if locNull.Valid {
		e.Location = &locNull.String
	}
	if createdByNull.Valid {
		e.CreatedBy = &createdByNull.String
	}
	if updatedNull.Valid {
		e.UpdatedAt = &updatedNull.Time
	}
	if creatorNull.Valid {
		e.CreatorName = &creatorNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	id := newID()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO events (id, title, description, location, event_date, capacity, is_active, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, e.Title, e.Description, e.Location, utc(e.EventDate), e.Capacity, e.IsActive, e.CreatedBy, utc(e.CreatedAt))
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, eventSelect+` WHERE e.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	setClauses := []string{"updated_at = ?"}
	args := []any{utc(updatedAt)}
	if patch.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Location != nil {
		setClauses = append(setClauses, "location = ?")
		args = append(args, *patch.Location)
	}
	if patch.EventDate != nil {
		setClauses = append(setClauses, "event_date = ?")
		args = append(args, utc(*patch.EventDate))
	}
	if patch.Capacity != nil {
		setClauses = append(setClauses, "capacity = ?")
		args = append(args, *patch.Capacity)
	}
	args = append(args, id)

	result, err := r.DB.ExecContext(ctx, `UPDATE events SET `+strings.Join(setClauses, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *eventRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE events SET is_active = 0, updated_at = ? WHERE id = ?`, utc(updatedAt), id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, params domain.EventListParams) ([]*domain.Event, int, error) {
	where := ` WHERE e.is_active = 1`
	args := []any{}
	if params.Search != "" {
		where += ` AND e.title LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(params.Search)+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PageSize, params.Offset())
	rows, err := r.DB.QueryContext(ctx, eventSelect+where+` ORDER BY e.event_date ASC, e.id ASC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
