// Package audit records what users did in rooms. Logging is best
// effort: LogAction never blocks the caller and never fails it.
package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreateRoom      Action = "create-room"
	ActionJoinRoom        Action = "join-room"
	ActionLeaveRoom       Action = "leave-room"
	ActionSetStory        Action = "set-story"
	ActionCastVote        Action = "cast-vote"
	ActionRevealVotes     Action = "reveal-votes"
	ActionClearVotes      Action = "clear-votes"
	ActionToggleSpectator Action = "toggle-spectator"
)

type Entry struct {
	ID        string         `json:"id,omitempty" bson:"_id,omitempty"`
	Action    Action         `json:"action" bson:"action"`
	UserName  string         `json:"userName" bson:"userName"`
	RoomID    string         `json:"roomId" bson:"roomId"`
	Details   map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	IP        string         `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent string         `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
}

// Filter narrows a Query. Zero fields match everything.
type Filter struct {
	Action   Action
	RoomID   string
	UserName string
	Since    time.Time
	Limit    int
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	}
	return f.Limit
}

// Logger is what the room hub depends on.
type Logger interface {
	LogAction(Entry)
}

// Store persists entries. Query returns newest entries first.
type Store interface {
	Insert(ctx context.Context, e Entry) error
	Query(ctx context.Context, f Filter) ([]Entry, error)
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) LogAction(Entry) {}
