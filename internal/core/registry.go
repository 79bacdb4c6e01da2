package core

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rutaCognizant/planning-poker/internal/domain"
)

const maxIDAttempts = 16

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomIDExhausted = errors.New("could not allocate a free room id")
)

// Departure describes a member leaving a room. Room is still set when
// the room was destroyed so callers can log it.
type Departure struct {
	Room          *Room
	User          domain.User
	WasLastMember bool
}

type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"members"`
	VoteCount   int             `json:"votes"`
	State       string          `json:"state"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Registry owns every live room and the session -> room reverse index.
// Like Room it has a single owner and takes no locks.
type Registry struct {
	rooms     map[domain.RoomID]*Room
	bySession map[SessionID]domain.RoomID

	newID func() domain.RoomID
	now   func() time.Time
}

type Option func(*Registry)

// WithIDGenerator replaces the room id generator.
func WithIDGenerator(gen func() domain.RoomID) Option {
	return func(r *Registry) { r.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:     make(map[domain.RoomID]*Room),
		bySession: make(map[SessionID]domain.RoomID),
		newID:     shortID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// shortID yields an 8 character upper-case join code.
func shortID() domain.RoomID {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.RoomID(strings.ToUpper(id[:8]))
}

func (r *Registry) allocateID() (domain.RoomID, error) {
	for range maxIDAttempts {
		id := r.newID()
		if _, taken := r.rooms[id]; !taken && id != "" {
			return id, nil
		}
		log.Debug().Str("module", "core.registry").Str("room_id", string(id)).Msg("room id collision, regenerating")
	}
	return "", ErrRoomIDExhausted
}

// CreateRoom opens a new room with the creator as its first member. If
// the session was in another room it leaves it first and the returned
// Departure describes that.
func (r *Registry) CreateRoom(sid SessionID, userName string, roomName domain.RoomName, spectator bool) (*Room, *Departure, error) {
	user, err := domain.NewUser(domain.UserID(sid), userName, spectator)
	if err != nil {
		return nil, nil, fmt.Errorf("create room: %w", err)
	}
	id, err := r.allocateID()
	if err != nil {
		return nil, nil, err
	}

	left := r.RemoveMember(sid)

	room := NewRoom(id, roomName, r.now())
	room.AddMember(sid, *user)
	r.rooms[id] = room
	r.bySession[sid] = id
	log.Info().Str("module", "core.registry").Str("room_id", string(id)).Str("sid", string(sid)).Msg("room created")
	return room, left, nil
}

// JoinRoom adds the session to an existing room. ErrRoomNotFound is
// the only failure callers are expected to report.
func (r *Registry) JoinRoom(sid SessionID, id domain.RoomID, userName string, spectator bool) (*Room, *Departure, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	user, err := domain.NewUser(domain.UserID(sid), userName, spectator)
	if err != nil {
		return nil, nil, fmt.Errorf("join room: %w", err)
	}

	var left *Departure
	if current, ok := r.bySession[sid]; ok && current != id {
		left = r.RemoveMember(sid)
	}

	room.AddMember(sid, *user)
	r.bySession[sid] = id
	log.Info().Str("module", "core.registry").Str("room_id", string(id)).Str("sid", string(sid)).Msg("member joined")
	return room, left, nil
}

// ResolveRoom finds the room the session joined. Events never trust a
// room id sent by the client.
func (r *Registry) ResolveRoom(sid SessionID) (*Room, bool) {
	id, ok := r.bySession[sid]
	if !ok {
		return nil, false
	}
	room, ok := r.rooms[id]
	return room, ok
}

// RemoveMember takes the session out of its room and destroys the room
// when nobody is left. It returns nil when the session was in no room.
func (r *Registry) RemoveMember(sid SessionID) *Departure {
	id, ok := r.bySession[sid]
	if !ok {
		return nil
	}
	delete(r.bySession, sid)

	room, ok := r.rooms[id]
	if !ok {
		return nil
	}
	user, _ := room.RemoveMember(sid)
	d := &Departure{Room: room, User: user}
	if room.MemberCount() == 0 {
		delete(r.rooms, id)
		d.WasLastMember = true
		log.Info().Str("module", "core.registry").Str("room_id", string(id)).Msg("room destroyed")
	}
	return d
}

// Size is the number of live rooms.
func (r *Registry) Size() int { return len(r.rooms) }

// MemberCount is the number of sessions currently inside a room.
func (r *Registry) MemberCount() int { return len(r.bySession) }

func (r *Registry) Rooms() []RoomInfo {
	out := make([]RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, RoomInfo{
			ID:          room.ID(),
			Name:        room.Name(),
			MemberCount: room.MemberCount(),
			VoteCount:   room.VoteCount(),
			State:       room.State().String(),
			CreatedAt:   room.CreatedAt(),
		})
	}
	slices.SortFunc(out, func(a, b RoomInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
