package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/types"
	"github.com/google/uuid"
)

// In-memory repository fakes mirroring the SQL semantics: status guards on
// confirm/cancel, replace-not-merge on availability, duplicate-invitee skip
// on creation.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*repository.User
	tokens map[string]*repository.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*repository.User),
		tokens: make(map[string]*repository.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("no such user")
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	cp := *token
	r.tokens[token.Token] = &cp
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[token]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings map[string]*repository.Meeting
	slots    map[string][]*repository.TimeSlot
	pr       *fakeParticipantRepo
}

func newFakeMeetingRepo(pr *fakeParticipantRepo) *fakeMeetingRepo {
	return &fakeMeetingRepo{
		meetings: make(map[string]*repository.Meeting),
		slots:    make(map[string][]*repository.TimeSlot),
		pr:       pr,
	}
}

func (r *fakeMeetingRepo) CreateWithSlots(ctx context.Context, meeting *repository.Meeting, slots []repository.TimeSlot, participants []*repository.Participant) error {
	r.mu.Lock()
	meeting.ID = uuid.New().String()
	if meeting.Status == "" {
		meeting.Status = types.MeetingPending
	}
	meeting.ShareToken = uuid.New().String()
	meeting.CreatedAt = time.Now()
	meeting.UpdatedAt = meeting.CreatedAt
	cp := *meeting
	r.meetings[meeting.ID] = &cp

	for i := range slots {
		slots[i].ID = uuid.New().String()
		slots[i].MeetingID = meeting.ID
		slots[i].CreatedAt = time.Now()
		sc := slots[i]
		r.slots[meeting.ID] = append(r.slots[meeting.ID], &sc)
	}
	r.mu.Unlock()

	for _, p := range participants {
		p.MeetingID = meeting.ID
		if err := r.pr.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMeetingRepo) FindByID(ctx context.Context, id string) (*repository.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meetings[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMeetingRepo) FindByShareToken(ctx context.Context, token string) (*repository.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.ShareToken == token {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMeetingRepo) FindByUser(ctx context.Context, userID string) ([]*repository.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Meeting
	for _, m := range r.meetings {
		if m.OrganizerID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMeetingRepo) FindSlots(ctx context.Context, meetingID string) ([]*repository.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.TimeSlot
	for _, s := range r.slots[meetingID] {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMeetingRepo) Confirm(ctx context.Context, meetingID string, confirmedTime time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[meetingID]
	if !ok || m.Status != types.MeetingPending {
		return false, nil
	}
	m.Status = types.MeetingConfirmed
	t := confirmedTime
	m.ConfirmedTime = &t
	m.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeMeetingRepo) Cancel(ctx context.Context, meetingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[meetingID]
	if !ok || m.Status != types.MeetingPending {
		return false, nil
	}
	m.Status = types.MeetingCancelled
	m.ConfirmedTime = nil
	m.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeMeetingRepo) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*repository.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Meeting
	for _, m := range r.meetings {
		if m.Status == types.MeetingPending && m.CreatedAt.Before(cutoff) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMeetingRepo) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, m := range r.meetings {
		if m.Status == types.MeetingCancelled && m.UpdatedAt.Before(cutoff) {
			delete(r.meetings, id)
			delete(r.slots, id)
			n++
		}
	}
	return n, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*repository.Participant
	users        *fakeUserRepo
}

func newFakeParticipantRepo(users *fakeUserRepo) *fakeParticipantRepo {
	return &fakeParticipantRepo{
		participants: make(map[string]*repository.Participant),
		users:        users,
	}
}

func (r *fakeParticipantRepo) Create(ctx context.Context, p *repository.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// duplicate invitee for the same identity is skipped
	for _, existing := range r.participants {
		if existing.MeetingID != p.MeetingID {
			continue
		}
		if p.UserID != nil && existing.UserID != nil && *p.UserID == *existing.UserID {
			return nil
		}
		if p.GuestEmail != nil && existing.GuestEmail != nil && strings.EqualFold(*p.GuestEmail, *existing.GuestEmail) {
			return nil
		}
	}
	p.ID = uuid.New().String()
	p.AccessToken = uuid.New().String()
	p.CreatedAt = time.Now()
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	if p.Status == "" {
		p.Status = types.ParticipantPending
	}
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) withUser(p *repository.Participant) *repository.Participant {
	cp := *p
	if cp.UserID != nil {
		if u, _ := r.users.FindByID(context.Background(), *cp.UserID); u != nil {
			cp.User = u
		}
	}
	return &cp
}

func (r *fakeParticipantRepo) FindByID(ctx context.Context, id string) (*repository.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[id]; ok {
		return r.withUser(p), nil
	}
	return nil, nil
}

func (r *fakeParticipantRepo) FindByAccessToken(ctx context.Context, token string) (*repository.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.AccessToken == token {
			return r.withUser(p), nil
		}
	}
	return nil, nil
}

func (r *fakeParticipantRepo) FindByMeetingAndUser(ctx context.Context, meetingID, userID string) (*repository.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.MeetingID == meetingID && p.UserID != nil && *p.UserID == userID {
			return r.withUser(p), nil
		}
	}
	return nil, nil
}

func (r *fakeParticipantRepo) FindByMeetingAndGuestEmail(ctx context.Context, meetingID, email string) (*repository.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.MeetingID == meetingID && p.GuestEmail != nil && strings.EqualFold(*p.GuestEmail, email) {
			return r.withUser(p), nil
		}
	}
	return nil, nil
}

func (r *fakeParticipantRepo) FindByMeeting(ctx context.Context, meetingID string) ([]*repository.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Participant
	for _, p := range r.participants {
		if p.MeetingID == meetingID {
			out = append(out, r.withUser(p))
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) FindPendingByMeeting(ctx context.Context, meetingID string) ([]*repository.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Participant
	for _, p := range r.participants {
		if p.MeetingID == meetingID && p.Status == types.ParticipantPending {
			out = append(out, r.withUser(p))
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) setStatus(participantID, status, timezone string, respondedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[participantID]; ok {
		p.Status = status
		p.Timezone = timezone
		t := respondedAt
		p.RespondedAt = &t
	}
}

type fakeAvailabilityRepo struct {
	mu   sync.Mutex
	rows map[string][]*repository.Availability
	pr   *fakeParticipantRepo
}

func newFakeAvailabilityRepo(pr *fakeParticipantRepo) *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		rows: make(map[string][]*repository.Availability),
		pr:   pr,
	}
}

func (r *fakeAvailabilityRepo) ReplaceForParticipant(ctx context.Context, participantID, timezone string, rows []repository.Availability, respondedAt time.Time) error {
	r.mu.Lock()
	r.rows[participantID] = nil
	for i := range rows {
		rows[i].ID = uuid.New().String()
		rows[i].ParticipantID = participantID
		rows[i].CreatedAt = time.Now()
		cp := rows[i]
		r.rows[participantID] = append(r.rows[participantID], &cp)
	}
	r.mu.Unlock()

	r.pr.setStatus(participantID, types.ParticipantResponded, timezone, respondedAt)
	return nil
}

func (r *fakeAvailabilityRepo) FindByParticipant(ctx context.Context, participantID string) ([]*repository.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Availability
	for _, a := range r.rows[participantID] {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) FindByMeeting(ctx context.Context, meetingID string) (map[string][]*repository.Availability, error) {
	participants, _ := r.pr.FindByMeeting(ctx, meetingID)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]*repository.Availability)
	for _, p := range participants {
		for _, a := range r.rows[p.ID] {
			cp := *a
			out[p.ID] = append(out[p.ID], &cp)
		}
	}
	return out, nil
}
