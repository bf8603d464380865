package roster

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"workstudy/internal/engine"
)

// Repository persists roster data in Postgres: students, clock events,
// availability templates, terms and their day-off ranges, and the
// explicit per-day shift records the live resolver consults first.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertStudent ensures a student record exists.
func (r *Repository) UpsertStudent(ctx context.Context, studentID string, name *string) error {
	if studentID == "" {
		return errors.New("student id required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (student_id, name)
		VALUES ($1, $2)
		ON CONFLICT (student_id) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, students.name),
			updated_at = NOW()
	`, studentID, name)
	return err
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, staffID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (staff_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, staffID, token, expiresAt)
	return err
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}

// GetRefreshToken looks up a stored refresh token for rotation
// checks. An empty staffID means the token was never issued.
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (staffID string, revoked bool, expiresAt time.Time, err error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT staff_id, revoked, expires_at FROM refresh_tokens WHERE token = $1
	`, token)
	if err = row.Scan(&staffID, &revoked, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, time.Time{}, nil
		}
		return "", false, time.Time{}, err
	}
	return staffID, revoked, expiresAt, nil
}

// InsertEvent writes a new clock event.
func (r *Repository) InsertEvent(ctx context.Context, ev engine.ClockEvent) (engine.ClockEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clock_events (id, student_id, term_id, occurred_at, kind, is_manual, is_auto_clock_out)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, ev.ID, ev.StudentID, ev.TermID, ev.Timestamp, string(ev.Kind), ev.Manual, ev.AutoClockOut)
	if err != nil {
		return engine.ClockEvent{}, err
	}
	return ev, nil
}

// GetEvent returns a single clock event by id, nil when absent.
func (r *Repository) GetEvent(ctx context.Context, id string) (*engine.ClockEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, term_id, occurred_at, kind, is_manual, is_auto_clock_out
		FROM clock_events WHERE id = $1
	`, id)
	return scanEvent(row)
}

// UpdateEvent applies a manual edit to an event's timestamp and kind
// and returns the updated row.
func (r *Repository) UpdateEvent(ctx context.Context, id string, occurredAt time.Time, kind engine.EventKind) (*engine.ClockEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE clock_events
		SET occurred_at = $2, kind = $3, is_manual = TRUE
		WHERE id = $1
		RETURNING id, student_id, term_id, occurred_at, kind, is_manual, is_auto_clock_out
	`, id, occurredAt, string(kind))
	return scanEvent(row)
}

// DeleteEvent removes an event and returns what was deleted so the
// caller can invalidate the right caches.
func (r *Repository) DeleteEvent(ctx context.Context, id string) (*engine.ClockEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM clock_events WHERE id = $1
		RETURNING id, student_id, term_id, occurred_at, kind, is_manual, is_auto_clock_out
	`, id)
	return scanEvent(row)
}

// ListEvents returns a student/term's events ordered by time.
func (r *Repository) ListEvents(ctx context.Context, studentID, termID string) ([]engine.ClockEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, term_id, occurred_at, kind, is_manual, is_auto_clock_out
		FROM clock_events
		WHERE student_id = $1 AND term_id = $2
		ORDER BY occurred_at
	`, studentID, termID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListEventsBetween returns every student's events in [from, to); the
// worker uses it to find open clock-ins at the daily cutoff.
func (r *Repository) ListEventsBetween(ctx context.Context, from, to time.Time) ([]engine.ClockEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, term_id, occurred_at, kind, is_manual, is_auto_clock_out
		FROM clock_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY student_id, occurred_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// GetAvailability returns the weekly availability template as raw
// block strings keyed by weekday name, in template order. The engine
// parses them; malformed blocks are its problem to skip.
func (r *Repository) GetAvailability(ctx context.Context, studentID, termID string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT weekday, block
		FROM availability_blocks
		WHERE student_id = $1 AND term_id = $2
		ORDER BY weekday, position
	`, studentID, termID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	template := make(map[string][]string)
	for rows.Next() {
		var weekday, block string
		if err := rows.Scan(&weekday, &block); err != nil {
			return nil, err
		}
		template[weekday] = append(template[weekday], block)
	}
	return template, rows.Err()
}

// ReplaceAvailability swaps a student's template for one weekday.
func (r *Repository) ReplaceAvailability(ctx context.Context, studentID, termID, weekday string, blocks []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM availability_blocks
		WHERE student_id = $1 AND term_id = $2 AND weekday = $3
	`, studentID, termID, weekday); err != nil {
		return err
	}
	for i, block := range blocks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO availability_blocks (student_id, term_id, weekday, position, block)
			VALUES ($1,$2,$3,$4,$5)
		`, studentID, termID, weekday, i, block); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetTerm loads a term with its day-off ranges, nil when absent.
func (r *Repository) GetTerm(ctx context.Context, termID string) (*engine.Term, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, starts_on::text, ends_on::text FROM terms WHERE id = $1
	`, termID)
	var term engine.Term
	if err := row.Scan(&term.ID, &term.Start, &term.End); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT starts_on::text, ends_on::text
		FROM term_day_offs
		WHERE term_id = $1
		ORDER BY starts_on
	`, termID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dr engine.DateRange
		if err := rows.Scan(&dr.Start, &dr.End); err != nil {
			return nil, err
		}
		term.DayOffs = append(term.DayOffs, dr)
	}
	return &term, rows.Err()
}

// GetShiftRecord returns the explicit shift row for one student/day,
// nil when none exists.
func (r *Repository) GetShiftRecord(ctx context.Context, studentID, termID, date string) (*engine.ShiftRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT status, clock_in_at
		FROM shift_records
		WHERE student_id = $1 AND term_id = $2 AND day = $3
	`, studentID, termID, date)
	var rec engine.ShiftRecord
	var clockIn sql.NullTime
	if err := row.Scan(&rec.Status, &clockIn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if clockIn.Valid {
		t := clockIn.Time
		rec.ClockIn = &t
	}
	return &rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*engine.ClockEvent, error) {
	var ev engine.ClockEvent
	var kind string
	if err := row.Scan(&ev.ID, &ev.StudentID, &ev.TermID, &ev.Timestamp, &kind, &ev.Manual, &ev.AutoClockOut); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ev.Kind = engine.EventKind(kind)
	return &ev, nil
}

func collectEvents(rows *sql.Rows) ([]engine.ClockEvent, error) {
	defer rows.Close()
	var events []engine.ClockEvent
	for rows.Next() {
		var ev engine.ClockEvent
		var kind string
		if err := rows.Scan(&ev.ID, &ev.StudentID, &ev.TermID, &ev.Timestamp, &kind, &ev.Manual, &ev.AutoClockOut); err != nil {
			return nil, err
		}
		ev.Kind = engine.EventKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}
