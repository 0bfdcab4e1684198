package service

import (
	"errors"

	"github.com/candidly/candidly-backend/internal/config"
	"github.com/candidly/candidly-backend/internal/db"
	"github.com/candidly/candidly-backend/internal/email"
	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/socket"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserExists             = errors.New("user already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidToken           = errors.New("invalid token")
	ErrNotFound               = errors.New("resource not found")
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrValidation             = errors.New("invalid input")
	ErrAlreadyJoined          = errors.New("already joined this meeting")
	ErrInvalidStateTransition = errors.New("meeting is not in a state that allows this")
	ErrNotConfirmed           = errors.New("meeting is not confirmed")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	User         UserService
	Meeting      MeetingService
	Participant  ParticipantService
	Availability AvailabilityService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Cache       *db.RedisDB // optional, may be nil
}

func NewServices(deps *ServiceDeps) *Services {
	meetingService := NewMeetingService(
		deps.Config,
		deps.Repos.MeetingRepo,
		deps.Repos.ParticipantRepo,
		deps.Repos.AvailabilityRepo,
		deps.Repos.UserRepo,
		deps.EmailSvc,
		deps.Broadcaster,
		deps.Cache,
	)

	return &Services{
		Auth:    NewAuthService(deps.Config, deps.Repos.UserRepo),
		User:    NewUserService(deps.Repos.UserRepo),
		Meeting: meetingService,
		Participant: NewParticipantService(
			deps.Repos.MeetingRepo,
			deps.Repos.ParticipantRepo,
			deps.Repos.UserRepo,
			deps.Config,
			deps.EmailSvc,
			deps.Broadcaster,
			deps.Cache,
		),
		Availability: NewAvailabilityService(
			deps.Repos.MeetingRepo,
			deps.Repos.ParticipantRepo,
			deps.Repos.AvailabilityRepo,
			deps.Broadcaster,
			deps.Cache,
		),
		Broadcaster: deps.Broadcaster,
	}
}
