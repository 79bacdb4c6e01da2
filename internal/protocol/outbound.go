package protocol

import (
	"encoding/json"

	"github.com/rutaCognizant/planning-poker/internal/core"
	"github.com/rutaCognizant/planning-poker/internal/domain"
)

const (
	EventRoomCreated   = "room-created"
	EventRoomJoined    = "room-joined"
	EventRoomLeft      = "room-left"
	EventUserJoined    = "user-joined"
	EventUserLeft      = "user-left"
	EventUserUpdated   = "user-updated"
	EventStoryUpdated  = "story-updated"
	EventVoteCast      = "vote-cast"
	EventVotesRevealed = "votes-revealed"
	EventVotesCleared  = "votes-cleared"
	EventPong          = "pong"
	EventError         = "error"
)

// MsgRoomNotFound is the one failure reported to clients.
const MsgRoomNotFound = "Room not found"

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (e Event) Encode() (core.Frame, error) {
	return json.Marshal(e)
}

type RoomCreatedPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	Room   core.Snapshot `json:"room"`
}

type RoomPayload struct {
	Room core.Snapshot `json:"room"`
}

type UserPayload struct {
	User domain.User   `json:"user"`
	Room core.Snapshot `json:"room"`
}

type UserLeftPayload struct {
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
	Room     core.Snapshot `json:"room"`
}

type StoryUpdatedPayload struct {
	Story string        `json:"story"`
	Room  core.Snapshot `json:"room"`
}

type VoteCastPayload struct {
	UserID   domain.UserID `json:"userId"`
	HasVoted bool          `json:"hasVoted"`
	Room     core.Snapshot `json:"room"`
}

type VotesRevealedPayload struct {
	Room  core.Snapshot `json:"room"`
	Stats *core.Stats   `json:"stats"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func RoomCreated(room core.Snapshot) Event {
	return Event{Type: EventRoomCreated, Payload: RoomCreatedPayload{RoomID: room.ID, Room: room}}
}

func RoomJoined(room core.Snapshot) Event {
	return Event{Type: EventRoomJoined, Payload: RoomPayload{Room: room}}
}

func RoomLeft() Event {
	return Event{Type: EventRoomLeft, Payload: struct{}{}}
}

func UserJoined(u domain.User, room core.Snapshot) Event {
	return Event{Type: EventUserJoined, Payload: UserPayload{User: u, Room: room}}
}

func UserUpdated(u domain.User, room core.Snapshot) Event {
	return Event{Type: EventUserUpdated, Payload: UserPayload{User: u, Room: room}}
}

func UserLeft(u domain.User, room core.Snapshot) Event {
	return Event{Type: EventUserLeft, Payload: UserLeftPayload{UserID: u.ID, UserName: u.Name, Room: room}}
}

func StoryUpdated(story string, room core.Snapshot) Event {
	return Event{Type: EventStoryUpdated, Payload: StoryUpdatedPayload{Story: story, Room: room}}
}

func VoteCast(id domain.UserID, room core.Snapshot) Event {
	return Event{Type: EventVoteCast, Payload: VoteCastPayload{UserID: id, HasVoted: true, Room: room}}
}

func VotesRevealed(room core.Snapshot, stats *core.Stats) Event {
	return Event{Type: EventVotesRevealed, Payload: VotesRevealedPayload{Room: room, Stats: stats}}
}

func VotesCleared(room core.Snapshot) Event {
	return Event{Type: EventVotesCleared, Payload: RoomPayload{Room: room}}
}

func Pong() Event {
	return Event{Type: EventPong, Payload: struct{}{}}
}

func Error(message string) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Message: message}}
}
