package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "Alice", want: "Alice"},
		{name: "trimmed", input: "  Bob ", want: "Bob"},
		{name: "empty", input: "   ", wantErr: ErrUsernameEmpty},
		{name: "too long", input: strings.Repeat("x", MaxUsernameLen+1), wantErr: ErrUsernameTooLong},
		{name: "multibyte at limit", input: strings.Repeat("Ż", MaxUsernameLen), want: strings.Repeat("Ż", MaxUsernameLen)},
		{name: "multibyte over limit", input: strings.Repeat("Ż", MaxUsernameLen+1), wantErr: ErrUsernameTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := NewUser("c1", tc.input, false)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, u.Name)
			assert.Equal(t, UserID("c1"), u.ID)
		})
	}
}

func TestNewRoomName(t *testing.T) {
	name, err := NewRoomName(" Sprint 1 ")
	require.NoError(t, err)
	assert.Equal(t, RoomName("Sprint 1"), name)

	_, err = NewRoomName("")
	assert.ErrorIs(t, err, ErrRoomNameEmpty)

	_, err = NewRoomName(strings.Repeat("r", MaxRoomNameLen+1))
	assert.ErrorIs(t, err, ErrRoomNameTooLong)

	wide := strings.Repeat("ü", MaxRoomNameLen)
	name, err = NewRoomName(wide)
	require.NoError(t, err)
	assert.Equal(t, RoomName(wide), name)

	_, err = NewRoomName(wide + "ü")
	assert.ErrorIs(t, err, ErrRoomNameTooLong)
}

func TestNormalizeRoomID(t *testing.T) {
	assert.Equal(t, RoomID("AB12CD34"), NormalizeRoomID(" ab12cd34 "))
}

func TestCards(t *testing.T) {
	assert.True(t, Card("8").Valid())
	assert.True(t, CardBreak.Valid())
	assert.False(t, Card("7").Valid())
	assert.False(t, CardUnknown.Numeric())
	assert.False(t, CardBreak.Numeric())
	assert.True(t, Card("13").Numeric())

	values := DeckValues()
	values[0] = "changed"
	assert.Equal(t, Card("0"), Deck[0])
}
