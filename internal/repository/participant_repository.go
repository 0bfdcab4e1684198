package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Participant struct {
	ID          string
	MeetingID   string
	UserID      *string
	GuestName   *string
	GuestEmail  *string
	IsGuest     bool
	AccessToken string
	Timezone    string
	Status      string
	RespondedAt *time.Time
	CreatedAt   time.Time

	// User is populated on listing reads for registered participants.
	User *User
}

// DisplayName is the name shown in participant lists and heatmaps.
func (p *Participant) DisplayName() string {
	if p.User != nil {
		return p.User.Name()
	}
	if p.GuestName != nil && *p.GuestName != "" {
		return *p.GuestName
	}
	if p.GuestEmail != nil {
		return *p.GuestEmail
	}
	return "Guest"
}

type ParticipantRepository interface {
	Create(ctx context.Context, participant *Participant) error
	FindByID(ctx context.Context, id string) (*Participant, error)
	FindByAccessToken(ctx context.Context, token string) (*Participant, error)
	FindByMeetingAndUser(ctx context.Context, meetingID, userID string) (*Participant, error)
	FindByMeetingAndGuestEmail(ctx context.Context, meetingID, email string) (*Participant, error)
	FindByMeeting(ctx context.Context, meetingID string) ([]*Participant, error)
	FindPendingByMeeting(ctx context.Context, meetingID string) ([]*Participant, error)
}

type pgParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) ParticipantRepository {
	return &pgParticipantRepository{pool: pool}
}

const participantColumns = `
	id, meeting_id, user_id, guest_name, guest_email, is_guest, access_token,
	timezone, status, responded_at, created_at
`

func scanParticipant(row pgx.Row) (*Participant, error) {
	p := &Participant{}
	err := row.Scan(
		&p.ID, &p.MeetingID, &p.UserID, &p.GuestName, &p.GuestEmail,
		&p.IsGuest, &p.AccessToken, &p.Timezone, &p.Status, &p.RespondedAt,
		&p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgParticipantRepository) Create(ctx context.Context, participant *Participant) error {
	query := `
		INSERT INTO participants (meeting_id, user_id, guest_name, guest_email,
			is_guest, timezone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, access_token, created_at
	`
	if participant.Timezone == "" {
		participant.Timezone = "UTC"
	}
	if participant.Status == "" {
		participant.Status = "PENDING"
	}
	return r.pool.QueryRow(ctx, query,
		participant.MeetingID, participant.UserID, participant.GuestName,
		participant.GuestEmail, participant.IsGuest, participant.Timezone,
		participant.Status,
	).Scan(&participant.ID, &participant.AccessToken, &participant.CreatedAt)
}

func (r *pgParticipantRepository) FindByID(ctx context.Context, id string) (*Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	return scanParticipant(r.pool.QueryRow(ctx, query, id))
}

func (r *pgParticipantRepository) FindByAccessToken(ctx context.Context, token string) (*Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE access_token = $1`
	return scanParticipant(r.pool.QueryRow(ctx, query, token))
}

func (r *pgParticipantRepository) FindByMeetingAndUser(ctx context.Context, meetingID, userID string) (*Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM participants WHERE meeting_id = $1 AND user_id = $2`
	return scanParticipant(r.pool.QueryRow(ctx, query, meetingID, userID))
}

func (r *pgParticipantRepository) FindByMeetingAndGuestEmail(ctx context.Context, meetingID, email string) (*Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM participants WHERE meeting_id = $1 AND LOWER(guest_email) = LOWER($2)`
	return scanParticipant(r.pool.QueryRow(ctx, query, meetingID, email))
}

func (r *pgParticipantRepository) FindByMeeting(ctx context.Context, meetingID string) ([]*Participant, error) {
	query := `
		SELECT p.id, p.meeting_id, p.user_id, p.guest_name, p.guest_email,
		       p.is_guest, p.access_token, p.timezone, p.status, p.responded_at,
		       p.created_at,
		       u.id, u.email, u.first_name, u.last_name, u.timezone
		FROM participants p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE p.meeting_id = $1
		ORDER BY p.created_at
	`
	rows, err := r.pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		var userID, userEmail, userFirst, userLast, userTZ *string
		if err := rows.Scan(
			&p.ID, &p.MeetingID, &p.UserID, &p.GuestName, &p.GuestEmail,
			&p.IsGuest, &p.AccessToken, &p.Timezone, &p.Status, &p.RespondedAt,
			&p.CreatedAt,
			&userID, &userEmail, &userFirst, &userLast, &userTZ,
		); err != nil {
			return nil, err
		}
		if userID != nil {
			p.User = &User{
				ID:        *userID,
				Email:     *userEmail,
				FirstName: *userFirst,
				LastName:  *userLast,
				Timezone:  *userTZ,
			}
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *pgParticipantRepository) FindPendingByMeeting(ctx context.Context, meetingID string) ([]*Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM participants WHERE meeting_id = $1 AND status = 'PENDING'
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		if err := rows.Scan(
			&p.ID, &p.MeetingID, &p.UserID, &p.GuestName, &p.GuestEmail,
			&p.IsGuest, &p.AccessToken, &p.Timezone, &p.Status, &p.RespondedAt,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
