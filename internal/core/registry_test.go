package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutaCognizant/planning-poker/internal/domain"
)

func sequenceIDs(ids ...domain.RoomID) func() domain.RoomID {
	i := 0
	return func() domain.RoomID {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestRegistryCreateAndJoin(t *testing.T) {
	reg := NewRegistry()

	room, left, err := reg.CreateRoom("alice", "Alice", "Sprint 1", false)
	require.NoError(t, err)
	assert.Nil(t, left)
	assert.Len(t, room.ID(), 8)
	assert.Equal(t, 1, room.MemberCount())
	assert.Equal(t, 1, reg.Size())

	joined, left, err := reg.JoinRoom("bob", room.ID(), "Bob", false)
	require.NoError(t, err)
	assert.Nil(t, left)
	assert.Same(t, room, joined)
	assert.Equal(t, 2, room.MemberCount())

	_, _, err = reg.JoinRoom("bob", "NOPE0000", "Bob", false)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 2, room.MemberCount())

	resolved, ok := reg.ResolveRoom("bob")
	require.True(t, ok)
	assert.Same(t, room, resolved)
}

func TestRegistryJoinUnknownRoomKeepsSessionUnjoined(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.JoinRoom("bob", "MISSING1", "Bob", false)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, ok := reg.ResolveRoom("bob")
	assert.False(t, ok)
	assert.Zero(t, reg.MemberCount())
}

func TestRegistryRejectsInvalidNames(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.CreateRoom("alice", " ", "Sprint", false)
	assert.ErrorIs(t, err, domain.ErrUsernameEmpty)
	assert.Zero(t, reg.Size())

	room, _, err := reg.CreateRoom("alice", "Alice", "Sprint", false)
	require.NoError(t, err)
	_, _, err = reg.JoinRoom("bob", room.ID(), "", false)
	assert.ErrorIs(t, err, domain.ErrUsernameEmpty)
	assert.Equal(t, 1, room.MemberCount())
}

func TestRegistryRegeneratesCollidingIDs(t *testing.T) {
	reg := NewRegistry(WithIDGenerator(sequenceIDs("AAAA0001", "AAAA0001", "AAAA0002")))

	first, _, err := reg.CreateRoom("alice", "Alice", "One", false)
	require.NoError(t, err)
	second, _, err := reg.CreateRoom("bob", "Bob", "Two", false)
	require.NoError(t, err)

	assert.Equal(t, domain.RoomID("AAAA0001"), first.ID())
	assert.Equal(t, domain.RoomID("AAAA0002"), second.ID())
}

func TestRegistryGivesUpOnExhaustedIDs(t *testing.T) {
	reg := NewRegistry(WithIDGenerator(sequenceIDs("SAME0000")))
	_, _, err := reg.CreateRoom("alice", "Alice", "One", false)
	require.NoError(t, err)

	_, _, err = reg.CreateRoom("bob", "Bob", "Two", false)
	assert.ErrorIs(t, err, ErrRoomIDExhausted)
	assert.Equal(t, 1, reg.Size())
}

func TestRegistryDuplicateRoomNamesAllowed(t *testing.T) {
	reg := NewRegistry()
	a, _, err := reg.CreateRoom("alice", "Alice", "Daily", false)
	require.NoError(t, err)
	b, _, err := reg.CreateRoom("bob", "Bob", "Daily", false)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRegistryRemoveLastMemberDestroysRoom(t *testing.T) {
	reg := NewRegistry()
	room, _, err := reg.CreateRoom("alice", "Alice", "Sprint 1", false)
	require.NoError(t, err)

	d := reg.RemoveMember("alice")
	require.NotNil(t, d)
	assert.True(t, d.WasLastMember)
	assert.Equal(t, "Alice", d.User.Name)
	assert.Zero(t, reg.Size())

	_, _, err = reg.JoinRoom("bob", room.ID(), "Bob", false)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Nil(t, reg.RemoveMember("alice"))
}

func TestRegistryRemoveMemberKeepsRoomForOthers(t *testing.T) {
	reg := NewRegistry()
	room, _, _ := reg.CreateRoom("alice", "Alice", "Sprint 1", false)
	_, _, _ = reg.JoinRoom("bob", room.ID(), "Bob", false)
	room.CastVote("bob", "8")

	d := reg.RemoveMember("bob")
	require.NotNil(t, d)
	assert.False(t, d.WasLastMember)
	assert.Same(t, room, d.Room)
	assert.Zero(t, room.VoteCount())
	assert.Equal(t, 1, reg.Size())

	_, ok := reg.ResolveRoom("bob")
	assert.False(t, ok)
}

func TestRegistryJoinOtherRoomLeavesFirst(t *testing.T) {
	reg := NewRegistry()
	first, _, _ := reg.CreateRoom("alice", "Alice", "One", false)
	second, _, _ := reg.CreateRoom("bob", "Bob", "Two", false)
	_, _, _ = reg.JoinRoom("carol", first.ID(), "Carol", false)

	_, left, err := reg.JoinRoom("carol", second.ID(), "Carol", false)
	require.NoError(t, err)
	require.NotNil(t, left)
	assert.Same(t, first, left.Room)
	assert.Equal(t, 1, first.MemberCount())
	assert.Equal(t, 2, second.MemberCount())

	resolved, _ := reg.ResolveRoom("carol")
	assert.Same(t, second, resolved)
}

func TestRegistryRejoinSameRoomUpdatesMember(t *testing.T) {
	reg := NewRegistry()
	room, _, _ := reg.CreateRoom("alice", "Alice", "One", false)

	_, left, err := reg.JoinRoom("alice", room.ID(), "Alice (PO)", true)
	require.NoError(t, err)
	assert.Nil(t, left)
	assert.Equal(t, 1, room.MemberCount())
	u, _ := room.Member("alice")
	assert.Equal(t, "Alice (PO)", u.Name)
	assert.True(t, u.IsSpectator)
}

func TestRegistryCreateWhileInRoomLeavesOldRoom(t *testing.T) {
	reg := NewRegistry()
	first, _, _ := reg.CreateRoom("alice", "Alice", "One", false)

	second, left, err := reg.CreateRoom("alice", "Alice", "Two", false)
	require.NoError(t, err)
	require.NotNil(t, left)
	assert.True(t, left.WasLastMember)
	assert.Same(t, first, left.Room)
	assert.Equal(t, 1, reg.Size())

	resolved, _ := reg.ResolveRoom("alice")
	assert.Same(t, second, resolved)
}

func TestRegistryRoomsInfo(t *testing.T) {
	reg := NewRegistry(WithIDGenerator(sequenceIDs("AAAA0001", "AAAA0002")))
	a, _, _ := reg.CreateRoom("alice", "Alice", "One", false)
	_, _, _ = reg.CreateRoom("bob", "Bob", "Two", false)
	_, _, _ = reg.JoinRoom("carol", a.ID(), "Carol", false)
	a.CastVote("carol", "3")

	infos := reg.Rooms()
	require.Len(t, infos, 2)
	assert.Equal(t, 3, reg.MemberCount())

	byID := map[domain.RoomID]RoomInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	assert.Equal(t, 2, byID["AAAA0001"].MemberCount)
	assert.Equal(t, 1, byID["AAAA0001"].VoteCount)
	assert.Equal(t, "collecting", byID["AAAA0002"].State)
}
