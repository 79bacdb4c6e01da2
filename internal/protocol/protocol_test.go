package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutaCognizant/planning-poker/internal/core"
	"github.com/rutaCognizant/planning-poker/internal/domain"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    Message
		wantErr error
	}{
		{
			name: "create room",
			raw:  `{"type":"create-room","payload":{"roomName":"Sprint 1","userName":"Alice"}}`,
			want: &CreateRoom{RoomName: "Sprint 1", UserName: "Alice"},
		},
		{
			name: "join as spectator",
			raw:  `{"type":"join-room","payload":{"roomId":"AB12CD34","userName":"Bob","isSpectator":true}}`,
			want: &JoinRoom{RoomID: "AB12CD34", UserName: "Bob", IsSpectator: true},
		},
		{
			name: "vote",
			raw:  `{"type":"cast-vote","payload":{"vote":"8"}}`,
			want: &CastVote{Vote: "8"},
		},
		{
			name: "break card",
			raw:  `{"type":"cast-vote","payload":{"vote":"☕"}}`,
			want: &CastVote{Vote: "☕"},
		},
		{
			name: "empty story clears it",
			raw:  `{"type":"set-story","payload":{"story":""}}`,
			want: &SetStory{},
		},
		{name: "reveal without payload", raw: `{"type":"reveal-votes"}`, want: &RevealVotes{}},
		{name: "clear with null payload", raw: `{"type":"clear-votes","payload":null}`, want: &ClearVotes{}},
		{name: "ping", raw: `{"type":"ping","payload":{}}`, want: &Ping{}},
		{name: "not json", raw: `{`, wantErr: ErrBadPayload},
		{name: "unknown type", raw: `{"type":"nuke-room"}`, wantErr: ErrUnknownType},
		{name: "missing user name", raw: `{"type":"create-room","payload":{"roomName":"x"}}`, wantErr: ErrBadPayload},
		{name: "card not in deck", raw: `{"type":"cast-vote","payload":{"vote":"7"}}`, wantErr: ErrBadPayload},
		{name: "wrong field type", raw: `{"type":"join-room","payload":{"roomId":5,"userName":"Bob"}}`, wantErr: ErrBadPayload},
		{
			name: "multibyte name at limit",
			raw:  `{"type":"create-room","payload":{"roomName":"Sprint","userName":"` + strings.Repeat("Ż", 36) + `"}}`,
			want: &CreateRoom{RoomName: "Sprint", UserName: strings.Repeat("Ż", 36)},
		},
		{
			name:    "name too long",
			raw:     `{"type":"join-room","payload":{"roomId":"A","userName":"` + strings.Repeat("n", 37) + `"}}`,
			wantErr: ErrBadPayload,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := Decode([]byte(tc.raw))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, msg)
		})
	}
}

func TestEventEncode(t *testing.T) {
	snap := core.Snapshot{ID: "AB12CD34", Name: "Sprint 1", Votes: map[domain.UserID]string{}}
	frame, err := VoteCast("alice", snap).Encode()
	require.NoError(t, err)

	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			UserID   string         `json:"userId"`
			HasVoted bool           `json:"hasVoted"`
			Room     map[string]any `json:"room"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.Equal(t, EventVoteCast, decoded.Type)
	assert.Equal(t, "alice", decoded.Payload.UserID)
	assert.True(t, decoded.Payload.HasVoted)
	assert.Equal(t, "AB12CD34", decoded.Payload.Room["id"])
}

func TestVotesRevealedWithoutStatsEncodesNull(t *testing.T) {
	frame, err := VotesRevealed(core.Snapshot{}, nil).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `"stats":null`)
}

func TestErrorEvent(t *testing.T) {
	frame, err := Error(MsgRoomNotFound).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","payload":{"message":"Room not found"}}`, string(frame))
}
