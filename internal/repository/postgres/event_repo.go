package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/domain"
)

const eventColumns = `e.id, e.title, e.description, e.location, e.start_time, e.organizer_id, e.capacity, e.created_at, e.updated_at,
		(SELECT COUNT(*) FROM event_registrations r WHERE r.event_id = e.id) AS registered_count`

var eventOrderBy = map[string]string{
	"date":        "e.start_time ASC, e.id ASC",
	"-date":       "e.start_time DESC, e.id DESC",
	"created_at":  "e.created_at ASC, e.id ASC",
	"-created_at": "e.created_at DESC, e.id DESC",
	"title":       "e.title ASC, e.id ASC",
	"-title":      "e.title DESC, e.id DESC",
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var capacity sql.NullInt64
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.OrganizerID, &capacity,
		&e.CreatedAt, &e.UpdatedAt, &e.RegisteredCount,
	); err != nil {
		return nil, err
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	return e, nil
}

func nullableCapacity(c *int) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*c), Valid: true}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, location, start_time, organizer_id, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.StartTime, e.OrganizerID, nullableCapacity(e.Capacity), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches s literally anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func buildEventWhere(f domain.EventFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.DateFrom != nil {
		add("e.start_time >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("e.start_time <= $%d", *f.DateTo)
	}
	if f.Location != "" {
		add(`e.location ILIKE $%d ESCAPE '\'`, containsPattern(f.Location))
	}
	if f.OrganizerID != "" {
		add("e.organizer_id = $%d", f.OrganizerID)
	}
	if f.UpcomingAt != nil {
		add("e.start_time >= $%d", *f.UpcomingAt)
	}
	if f.Search != "" {
		args = append(args, containsPattern(f.Search))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			`(e.title ILIKE $%d ESCAPE '\' OR e.description ILIKE $%d ESCAPE '\' OR e.location ILIKE $%d ESCAPE '\')`,
			n, n, n))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *eventRepository) List(ctx context.Context, f domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	orderBy, ok := eventOrderBy[f.Ordering]
	if !ok {
		orderBy = eventOrderBy["-date"]
	}
	where, args := buildEventWhere(f)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM events e%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		eventColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, page.PageSize, page.Offset())
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
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (_ *domain.Event, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin event update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Same row lock as admission: no registration can slip in between the count and the write.
	var lockedID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}
	var count int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, id).Scan(&count); err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if upd.Capacity != nil && !upd.ClearCapacity && *upd.Capacity < count {
		return nil, domain.ErrCapacityBelowRegistered
	}

	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	set := func(column string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.StartTime != nil {
		set("start_time", *upd.StartTime)
	}
	if upd.ClearCapacity {
		setClauses = append(setClauses, "capacity = NULL")
	} else if upd.Capacity != nil {
		set("capacity", *upd.Capacity)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING id, title, description, location, start_time, organizer_id, capacity, created_at, updated_at, $%d::int
	`, strings.Join(setClauses, ", "), len(args), len(args)+1)
	args = append(args, count)

	e, err := scanEvent(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit event update: %w", err)
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
