package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventsphere/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// eventSelect reads an event with its derived registration count and creator name.
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
	query := `
		INSERT INTO events (title, description, location, event_date, capacity, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.EventDate, e.Capacity, e.IsActive, e.CreatedBy, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	setClauses := []string{"updated_at = $1"}
	args := []any{updatedAt}
	n := 2
	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.EventDate != nil {
		add("event_date", *patch.EventDate)
	}
	if patch.Capacity != nil {
		add("capacity", *patch.Capacity)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d RETURNING id`, strings.Join(setClauses, ", "), n)

	var updatedID string
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, updatedID)
}

func (r *eventRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	query := `UPDATE events SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, updatedAt, id)
	if err != nil {
		if isMalformedID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, params domain.EventListParams) ([]*domain.Event, int, error) {
	where := ` WHERE e.is_active`
	args := []any{}
	if params.Search != "" {
		where += ` AND e.title ILIKE $1 ESCAPE '\'`
		args = append(args, "%"+escapeLike(params.Search)+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args) + 1
	query := eventSelect + where + fmt.Sprintf(` ORDER BY e.event_date ASC, e.id ASC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, params.PageSize, params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
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

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
