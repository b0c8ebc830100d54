package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{
		DB: db,
	}
}

// Admit runs the admission check-and-insert in one transaction.
//
// SELECT ... FOR UPDATE on the event row serializes every admission for that event
// while leaving other events untouched. Under READ COMMITTED each later statement
// takes a fresh snapshot after the lock is granted, so the duplicate check and the
// count see every registration committed by the previous lock holder.
func (r *eventRegistrationRepository) Admit(ctx context.Context, reg *domain.EventRegistration, now time.Time) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin admission: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var startTime time.Time
	var capacity sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT start_time, capacity FROM events WHERE id = $1 FOR UPDATE`,
		reg.EventID,
	).Scan(&startTime, &capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}
	if !startTime.After(now) {
		return domain.ErrClosed
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = $1 AND user_id = $2)`,
		reg.EventID, reg.UserID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return domain.ErrAlreadyRegistered
	}

	if capacity.Valid {
		var count int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`,
			reg.EventID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		if count >= capacity.Int64 {
			return domain.ErrFull
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO event_registrations (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, reg.EventID, reg.UserID, reg.CreatedAt).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit admission: %w", err)
	}
	return nil
}

func (r *eventRegistrationRepository) Delete(ctx context.Context, eventID, userID string) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}

func (r *eventRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM event_registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg := &domain.EventRegistration{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *eventRegistrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	return r.list(ctx, `
		SELECT id, event_id, user_id, created_at
		FROM event_registrations
		WHERE event_id = $1
		ORDER BY created_at DESC, seq DESC
	`, eventID)
}

func (r *eventRegistrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.EventRegistration, error) {
	return r.list(ctx, `
		SELECT id, event_id, user_id, created_at
		FROM event_registrations
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
	`, userID)
}

func (r *eventRegistrationRepository) list(ctx context.Context, query string, arg string) ([]*domain.EventRegistration, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []*domain.EventRegistration{}
	for rows.Next() {
		reg := &domain.EventRegistration{}
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *eventRegistrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	return count, err
}
