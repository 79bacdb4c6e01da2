package core

import (
	"slices"
	"time"

	"github.com/rutaCognizant/planning-poker/internal/domain"
)

// State is the position of a room in its voting cycle.
type State int

const (
	Collecting State = iota
	Revealed
)

func (s State) String() string {
	if s == Revealed {
		return "revealed"
	}
	return "collecting"
}

// VoteResult tells the caller what CastVote did with a vote.
type VoteResult int

const (
	VoteAccepted VoteResult = iota
	VoteNotMember
	VoteSpectator
	VoteInvalidCard
	// VoteRejectedRevealed: votes are locked once revealed and stay so
	// until SetStory or ClearVotes starts a new round.
	VoteRejectedRevealed
)

func (v VoteResult) String() string {
	switch v {
	case VoteAccepted:
		return "accepted"
	case VoteNotMember:
		return "not_member"
	case VoteSpectator:
		return "spectator"
	case VoteInvalidCard:
		return "invalid_card"
	case VoteRejectedRevealed:
		return "rejected_revealed"
	}
	return "unknown"
}

// Room is one estimation session. It is not safe for concurrent use:
// the hub event loop is its only writer and reader.
type Room struct {
	id        domain.RoomID
	name      domain.RoomName
	createdAt time.Time

	members map[SessionID]*domain.User
	order   []SessionID

	story    string
	votes    map[SessionID]domain.Card
	revealed bool
}

func NewRoom(id domain.RoomID, name domain.RoomName, createdAt time.Time) *Room {
	return &Room{
		id:        id,
		name:      name,
		createdAt: createdAt,
		members:   make(map[SessionID]*domain.User),
		votes:     make(map[SessionID]domain.Card),
	}
}

func (r *Room) ID() domain.RoomID     { return r.id }
func (r *Room) Name() domain.RoomName { return r.name }
func (r *Room) CreatedAt() time.Time  { return r.createdAt }
func (r *Room) Story() string         { return r.story }
func (r *Room) VotingRevealed() bool  { return r.revealed }
func (r *Room) MemberCount() int      { return len(r.order) }
func (r *Room) VoteCount() int        { return len(r.votes) }
func (r *Room) HasVoted(sid SessionID) bool {
	_, ok := r.votes[sid]
	return ok
}

func (r *Room) State() State {
	if r.revealed {
		return Revealed
	}
	return Collecting
}

// Member returns a copy of the member registered under sid.
func (r *Room) Member(sid SessionID) (domain.User, bool) {
	u, ok := r.members[sid]
	if !ok {
		return domain.User{}, false
	}
	return *u, true
}

// Members returns the members in join order.
func (r *Room) Members() []domain.User {
	out := make([]domain.User, 0, len(r.order))
	for _, sid := range r.order {
		out = append(out, *r.members[sid])
	}
	return out
}

// AddMember registers u under sid. A second add for the same sid
// updates the member in place and keeps its join position.
func (r *Room) AddMember(sid SessionID, u domain.User) {
	u.ID = domain.UserID(sid)
	if existing, ok := r.members[sid]; ok {
		*existing = u
		if u.IsSpectator {
			delete(r.votes, sid)
		}
		return
	}
	r.members[sid] = &u
	r.order = append(r.order, sid)
}

// RemoveMember drops the member and its vote. It reports the removed
// member, if there was one.
func (r *Room) RemoveMember(sid SessionID) (domain.User, bool) {
	u, ok := r.members[sid]
	if !ok {
		return domain.User{}, false
	}
	delete(r.members, sid)
	delete(r.votes, sid)
	r.order = slices.DeleteFunc(r.order, func(s SessionID) bool { return s == sid })
	return *u, true
}

// SetSpectator switches a member between voter and spectator. A member
// turning spectator loses its vote for the current round.
func (r *Room) SetSpectator(sid SessionID, spectator bool) bool {
	u, ok := r.members[sid]
	if !ok {
		return false
	}
	u.IsSpectator = spectator
	if spectator {
		delete(r.votes, sid)
	}
	return true
}

// SetStory starts a new round: the story is replaced and every vote of
// the previous round is discarded, revealed or not.
func (r *Room) SetStory(story string) {
	r.story = story
	r.resetRound()
}

func (r *Room) CastVote(sid SessionID, card domain.Card) VoteResult {
	u, ok := r.members[sid]
	switch {
	case !ok:
		return VoteNotMember
	case u.IsSpectator:
		return VoteSpectator
	case !card.Valid():
		return VoteInvalidCard
	case r.revealed:
		return VoteRejectedRevealed
	}
	r.votes[sid] = card
	return VoteAccepted
}

// RevealVotes freezes the round and returns its statistics. Stats are
// nil when no numeric card was played.
func (r *Room) RevealVotes() *Stats {
	r.revealed = true
	return ComputeStats(r.votes)
}

func (r *Room) ClearVotes() {
	r.resetRound()
}

func (r *Room) resetRound() {
	clear(r.votes)
	r.revealed = false
}
