package postgres

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
	return &registrationRepository{
		DB: db,
	}
}

// CreateWithinCapacity locks the event row so that concurrent bookings for the
// same event count and insert one at a time.
func (r *registrationRepository) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM events WHERE id = $1 AND is_active FOR UPDATE`, reg.EventID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, reg.EventID,
	).Scan(&count); err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	if count >= capacity {
		return domain.ErrCapacityExceeded
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (user_id, event_id, registered_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, reg.UserID, reg.EventID, reg.RegisteredAt).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return tx.Commit()
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, user_id, event_id, registered_at
		FROM registrations
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT id, user_id, event_id, registered_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	return r.getOne(ctx, query, eventID, userID)
}

func (r *registrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		if isMalformedID(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
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

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.registered_at, e.title, e.event_date
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.registered_at DESC, r.id DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if isMalformedID(err) {
			return []*domain.RegistrationWithEvent{}, nil
		}
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
	query := `
		SELECT r.id, u.full_name, u.email, r.registered_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.registered_at ASC, r.id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		if isMalformedID(err) {
			return []*domain.EventAttendee{}, nil
		}
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
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}
