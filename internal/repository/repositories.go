package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	UserRepo         UserRepository
	MeetingRepo      MeetingRepository
	ParticipantRepo  ParticipantRepository
	AvailabilityRepo AvailabilityRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		MeetingRepo:      NewMeetingRepository(pool),
		ParticipantRepo:  NewParticipantRepository(pool),
		AvailabilityRepo: NewAvailabilityRepository(pool),
	}
}
