package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Meeting struct {
	ID              string
	Title           string
	Description     *string
	Location        *string
	DurationMinutes int
	MeetingType     string
	Status          string
	ProposedTime    *time.Time
	DateRangeStart  *time.Time
	DateRangeEnd    *time.Time
	ConfirmedTime   *time.Time
	ShareToken      string
	OrganizerID     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type TimeSlot struct {
	ID        string
	MeetingID string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

type MeetingRepository interface {
	// CreateWithSlots persists the meeting, its candidate slots and the
	// initial participant set in one transaction. Slots are written exactly
	// once here and are immutable afterwards; nothing else may touch
	// time_slots. Duplicate invitees for the same identity are skipped.
	CreateWithSlots(ctx context.Context, meeting *Meeting, slots []TimeSlot, participants []*Participant) error
	FindByID(ctx context.Context, id string) (*Meeting, error)
	FindByShareToken(ctx context.Context, token string) (*Meeting, error)
	FindByUser(ctx context.Context, userID string) ([]*Meeting, error)
	FindSlots(ctx context.Context, meetingID string) ([]*TimeSlot, error)
	// Confirm moves PENDING -> CONFIRMED and sets confirmed_time. The status
	// guard is in the statement itself so two racing confirms cannot both
	// win; it returns false when no PENDING row matched.
	Confirm(ctx context.Context, meetingID string, confirmedTime time.Time) (bool, error)
	// Cancel moves PENDING -> CANCELLED under the same guard.
	Cancel(ctx context.Context, meetingID string) (bool, error)
	FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Meeting, error)
	DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type pgMeetingRepository struct {
	pool *pgxpool.Pool
}

func NewMeetingRepository(pool *pgxpool.Pool) MeetingRepository {
	return &pgMeetingRepository{pool: pool}
}

const meetingColumns = `
	id, title, description, location, duration_minutes, meeting_type, status,
	proposed_time, date_range_start, date_range_end, confirmed_time,
	share_token, organizer_id, created_at, updated_at
`

func scanMeeting(row pgx.Row) (*Meeting, error) {
	m := &Meeting{}
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Location, &m.DurationMinutes,
		&m.MeetingType, &m.Status, &m.ProposedTime, &m.DateRangeStart,
		&m.DateRangeEnd, &m.ConfirmedTime, &m.ShareToken, &m.OrganizerID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMeetingRepository) CreateWithSlots(ctx context.Context, meeting *Meeting, slots []TimeSlot, participants []*Participant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if meeting.Status == "" {
		meeting.Status = "PENDING"
	}

	query := `
		INSERT INTO meetings (title, description, location, duration_minutes,
			meeting_type, status, proposed_time, date_range_start, date_range_end,
			organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, status, share_token, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		meeting.Title, meeting.Description, meeting.Location,
		meeting.DurationMinutes, meeting.MeetingType, meeting.Status,
		meeting.ProposedTime, meeting.DateRangeStart, meeting.DateRangeEnd,
		meeting.OrganizerID,
	).Scan(&meeting.ID, &meeting.Status, &meeting.ShareToken,
		&meeting.CreatedAt, &meeting.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range slots {
		slots[i].MeetingID = meeting.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO time_slots (meeting_id, start_time, end_time)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at`,
			slots[i].MeetingID, slots[i].StartTime, slots[i].EndTime,
		).Scan(&slots[i].ID, &slots[i].CreatedAt)
		if err != nil {
			return err
		}
	}

	for _, p := range participants {
		p.MeetingID = meeting.ID
		if p.Timezone == "" {
			p.Timezone = "UTC"
		}
		if p.Status == "" {
			p.Status = "PENDING"
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO participants (meeting_id, user_id, guest_name,
				guest_email, is_guest, timezone, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT DO NOTHING
			 RETURNING id, access_token, created_at`,
			p.MeetingID, p.UserID, p.GuestName, p.GuestEmail, p.IsGuest,
			p.Timezone, p.Status,
		).Scan(&p.ID, &p.AccessToken, &p.CreatedAt)
		if err == pgx.ErrNoRows {
			// duplicate invitee, skipped
			continue
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pgMeetingRepository) FindByID(ctx context.Context, id string) (*Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	return scanMeeting(r.pool.QueryRow(ctx, query, id))
}

func (r *pgMeetingRepository) FindByShareToken(ctx context.Context, token string) (*Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE share_token = $1`
	return scanMeeting(r.pool.QueryRow(ctx, query, token))
}

func (r *pgMeetingRepository) FindByUser(ctx context.Context, userID string) ([]*Meeting, error) {
	query := `
		SELECT DISTINCT ` + meetingColumns + `
		FROM meetings m
		WHERE m.organizer_id = $1
		   OR EXISTS (
			SELECT 1 FROM participants p
			WHERE p.meeting_id = m.id AND p.user_id = $1
		   )
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m := &Meeting{}
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Description, &m.Location, &m.DurationMinutes,
			&m.MeetingType, &m.Status, &m.ProposedTime, &m.DateRangeStart,
			&m.DateRangeEnd, &m.ConfirmedTime, &m.ShareToken, &m.OrganizerID,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *pgMeetingRepository) FindSlots(ctx context.Context, meetingID string) ([]*TimeSlot, error) {
	query := `
		SELECT id, meeting_id, start_time, end_time, created_at
		FROM time_slots WHERE meeting_id = $1
		ORDER BY start_time
	`
	rows, err := r.pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*TimeSlot
	for rows.Next() {
		s := &TimeSlot{}
		if err := rows.Scan(&s.ID, &s.MeetingID, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *pgMeetingRepository) Confirm(ctx context.Context, meetingID string, confirmedTime time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE meetings
		 SET status = 'CONFIRMED', confirmed_time = $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'PENDING'`,
		confirmedTime, meetingID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgMeetingRepository) Cancel(ctx context.Context, meetingID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE meetings
		 SET status = 'CANCELLED', updated_at = NOW()
		 WHERE id = $1 AND status = 'PENDING'`,
		meetingID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgMeetingRepository) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *pgMeetingRepository) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM meetings WHERE status = 'CANCELLED' AND updated_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
