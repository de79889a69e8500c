package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventsphere/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

// CreateWithinCapacity runs the capacity check and the insert in one immediate
// transaction; with a single pooled connection no other writer can interleave.
func (r *registrationRepository) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var capacity, count int
	err = tx.QueryRowContext(ctx, `
		SELECT e.capacity, (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)
		FROM events e
		WHERE e.id = ? AND e.is_active = 1
	`, reg.EventID).Scan(&capacity, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("read capacity: %w", err)
	}
	if count >= capacity {
		return domain.ErrCapacityExceeded
	}

	id := newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO registrations (id, user_id, event_id, registered_at)
		VALUES (?, ?, ?, ?)
	`, id, reg.UserID, reg.EventID, utc(reg.RegisteredAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	reg.ID = id
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return r.getOne(ctx, `SELECT id, user_id, event_id, registered_at FROM registrations WHERE id = ?`, id)
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, event_id, registered_at
		FROM registrations
		WHERE event_id = ? AND user_id = ?
	`, eventID, userID)
}

func (r *registrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID).Scan(&count)
	return count, err
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.event_id, r.registered_at, e.title, e.event_date
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = ?
		ORDER BY r.registered_at DESC, r.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.RegistrationWithEvent, 0)
	for rows.Next() {
		item := &domain.RegistrationWithEvent{Registration: &domain.Registration{}}
		if err := rows.Scan(&item.ID, &item.UserID, &item.EventID, &item.RegisteredAt, &item.EventTitle, &item.EventDate); err != nil {
			return nil, err
		}
		regs = append(regs, item)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventAttendee, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, u.full_name, u.email, r.registered_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ?
		ORDER BY r.registered_at ASC, r.id ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := make([]*domain.EventAttendee, 0)
	for rows.Next() {
		a := &domain.EventAttendee{}
		if err := rows.Scan(&a.RegistrationID, &a.UserFullName, &a.UserEmail, &a.RegisteredAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *registrationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}
