// Package protocol defines the messages exchanged over the signal
// connection. Inbound messages are decoded into concrete types and
// validated here, so room logic never sees raw JSON.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rutaCognizant/planning-poker/internal/domain"
)

type Type string

const (
	TypeCreateRoom      Type = "create-room"
	TypeJoinRoom        Type = "join-room"
	TypeLeaveRoom       Type = "leave-room"
	TypeSetStory        Type = "set-story"
	TypeCastVote        Type = "cast-vote"
	TypeRevealVotes     Type = "reveal-votes"
	TypeClearVotes      Type = "clear-votes"
	TypeToggleSpectator Type = "toggle-spectator"
	TypePing            Type = "ping"
)

var (
	ErrBadPayload  = errors.New("bad payload")
	ErrUnknownType = errors.New("unknown message type")
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is implemented by every inbound payload type.
type Message interface {
	Type() Type
}

type CreateRoom struct {
	RoomName    string `json:"roomName" validate:"required,max=64"`
	UserName    string `json:"userName" validate:"required,max=36"`
	IsSpectator bool   `json:"isSpectator"`
}

type JoinRoom struct {
	RoomID      string `json:"roomId" validate:"required,max=64"`
	UserName    string `json:"userName" validate:"required,max=36"`
	IsSpectator bool   `json:"isSpectator"`
}

type LeaveRoom struct{}

type SetStory struct {
	Story string `json:"story" validate:"max=2000"`
}

type CastVote struct {
	Vote string `json:"vote" validate:"required,card"`
}

type RevealVotes struct{}

type ClearVotes struct{}

type ToggleSpectator struct {
	IsSpectator bool `json:"isSpectator"`
}

type Ping struct{}

func (CreateRoom) Type() Type      { return TypeCreateRoom }
func (JoinRoom) Type() Type        { return TypeJoinRoom }
func (LeaveRoom) Type() Type       { return TypeLeaveRoom }
func (SetStory) Type() Type        { return TypeSetStory }
func (CastVote) Type() Type        { return TypeCastVote }
func (RevealVotes) Type() Type     { return TypeRevealVotes }
func (ClearVotes) Type() Type      { return TypeClearVotes }
func (ToggleSpectator) Type() Type { return TypeToggleSpectator }
func (Ping) Type() Type            { return TypePing }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("card", func(fl validator.FieldLevel) bool {
		return domain.Card(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(fmt.Sprintf("protocol: registering card validation: %v", err))
	}
	return v
}

// Decode parses one inbound frame. Errors wrap ErrBadPayload or
// ErrUnknownType.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	var msg Message
	switch env.Type {
	case TypeCreateRoom:
		msg = &CreateRoom{}
	case TypeJoinRoom:
		msg = &JoinRoom{}
	case TypeLeaveRoom:
		msg = &LeaveRoom{}
	case TypeSetStory:
		msg = &SetStory{}
	case TypeCastVote:
		msg = &CastVote{}
	case TypeRevealVotes:
		msg = &RevealVotes{}
	case TypeClearVotes:
		msg = &ClearVotes{}
	case TypeToggleSpectator:
		msg = &ToggleSpectator{}
	case TypePing:
		msg = &Ping{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if p := bytes.TrimSpace(env.Payload); len(p) > 0 && !bytes.Equal(p, []byte("null")) {
		if err := json.Unmarshal(p, msg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
		}
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
	}
	return msg, nil
}
