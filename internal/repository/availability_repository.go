package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Availability struct {
	ID            string
	ParticipantID string
	StartTime     time.Time
	EndTime       time.Time
	IsAvailable   bool
	CreatedAt     time.Time
}

type AvailabilityRepository interface {
	// ReplaceForParticipant discards every prior availability row of the
	// participant and writes exactly the submitted set, updating the
	// participant's status, timezone and response timestamp in the same
	// transaction. Either all of it applies or none of it does; the
	// participant row is locked first so two concurrent submissions by the
	// same participant serialize instead of interleaving.
	ReplaceForParticipant(ctx context.Context, participantID, timezone string, rows []Availability, respondedAt time.Time) error
	FindByParticipant(ctx context.Context, participantID string) ([]*Availability, error)
	FindByMeeting(ctx context.Context, meetingID string) (map[string][]*Availability, error)
}

type pgAvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) AvailabilityRepository {
	return &pgAvailabilityRepository{pool: pool}
}

func (r *pgAvailabilityRepository) ReplaceForParticipant(ctx context.Context, participantID, timezone string, rows []Availability, respondedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// single writer per participant
	if _, err := tx.Exec(ctx,
		`SELECT id FROM participants WHERE id = $1 FOR UPDATE`, participantID,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM availabilities WHERE participant_id = $1`, participantID,
	); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO availabilities (participant_id, start_time, end_time, is_available)
			 VALUES ($1, $2, $3, $4)`,
			participantID, row.StartTime, row.EndTime, row.IsAvailable,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE participants
		 SET status = 'RESPONDED', timezone = $1, responded_at = $2
		 WHERE id = $3`,
		timezone, respondedAt, participantID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgAvailabilityRepository) FindByParticipant(ctx context.Context, participantID string) ([]*Availability, error) {
	query := `
		SELECT id, participant_id, start_time, end_time, is_available, created_at
		FROM availabilities WHERE participant_id = $1
		ORDER BY start_time
	`
	rows, err := r.pool.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Availability
	for rows.Next() {
		a := &Availability{}
		if err := rows.Scan(&a.ID, &a.ParticipantID, &a.StartTime, &a.EndTime, &a.IsAvailable, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindByMeeting loads every availability row of the meeting keyed by
// participant id, the shape the aggregator consumes.
func (r *pgAvailabilityRepository) FindByMeeting(ctx context.Context, meetingID string) (map[string][]*Availability, error) {
	query := `
		SELECT a.id, a.participant_id, a.start_time, a.end_time, a.is_available, a.created_at
		FROM availabilities a
		JOIN participants p ON p.id = a.participant_id
		WHERE p.meeting_id = $1
		ORDER BY a.participant_id, a.start_time
	`
	rows, err := r.pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]*Availability)
	for rows.Next() {
		a := &Availability{}
		if err := rows.Scan(&a.ID, &a.ParticipantID, &a.StartTime, &a.EndTime, &a.IsAvailable, &a.CreatedAt); err != nil {
			return nil, err
		}
		out[a.ParticipantID] = append(out[a.ParticipantID], a)
	}
	return out, rows.Err()
}
