package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/rutaCognizant/planning-poker/internal/audit"
	"github.com/rutaCognizant/planning-poker/internal/core"
	"github.com/rutaCognizant/planning-poker/internal/domain"
	"github.com/rutaCognizant/planning-poker/internal/protocol"
)

func (h *Hub) dispatch(sid core.SessionID, msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.CreateRoom:
		h.createRoom(sid, m)
	case *protocol.JoinRoom:
		h.joinRoom(sid, m)
	case *protocol.LeaveRoom:
		h.leave(sid)
		h.send(sid, protocol.RoomLeft())
	case *protocol.SetStory:
		h.setStory(sid, m)
	case *protocol.CastVote:
		h.castVote(sid, m)
	case *protocol.RevealVotes:
		h.revealVotes(sid)
	case *protocol.ClearVotes:
		h.clearVotes(sid)
	case *protocol.ToggleSpectator:
		h.toggleSpectator(sid, m)
	case *protocol.Ping:
		h.send(sid, protocol.Pong())
	default:
		log.Warn().Str("module", "app.hub").Str("sid", string(sid)).Msgf("unhandled message %T", msg)
	}
}

func (h *Hub) createRoom(sid core.SessionID, m *protocol.CreateRoom) {
	name, err := domain.NewRoomName(m.RoomName)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.hub").Str("sid", string(sid)).Msg("create room rejected")
		return
	}
	room, left, err := h.rooms.CreateRoom(sid, m.UserName, name, m.IsSpectator)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.hub").Str("sid", string(sid)).Msg("create room failed")
		return
	}
	h.announceLeave(sid, left)

	h.send(sid, protocol.RoomCreated(room.Snapshot()))
	h.record(sid, room, audit.ActionCreateRoom, map[string]any{"roomName": string(room.Name())})
}

func (h *Hub) joinRoom(sid core.SessionID, m *protocol.JoinRoom) {
	id := domain.NormalizeRoomID(m.RoomID)
	room, left, err := h.rooms.JoinRoom(sid, id, m.UserName, m.IsSpectator)
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		log.Info().Str("module", "app.hub").Str("sid", string(sid)).Str("room_id", string(id)).Msg("join: room not found")
		h.send(sid, protocol.Error(protocol.MsgRoomNotFound))
		return
	case err != nil:
		log.Warn().Err(err).Str("module", "app.hub").Str("sid", string(sid)).Msg("join rejected")
		return
	}
	h.announceLeave(sid, left)

	snap := room.Snapshot()
	user, _ := room.Member(sid)
	h.send(sid, protocol.RoomJoined(snap))
	h.broadcast(room, protocol.UserJoined(user, snap), sid)
	h.record(sid, room, audit.ActionJoinRoom, map[string]any{"spectator": user.IsSpectator})
}

// leave removes the session from its room, if any, and tells the rest.
func (h *Hub) leave(sid core.SessionID) {
	d := h.rooms.RemoveMember(sid)
	if d == nil {
		return
	}
	h.announceLeave(sid, d)
}

func (h *Hub) announceLeave(sid core.SessionID, d *core.Departure) {
	if d == nil {
		return
	}
	h.recordAs(sid, d.User.Name, d.Room.ID(), audit.ActionLeaveRoom, map[string]any{"roomDestroyed": d.WasLastMember})
	if d.WasLastMember {
		return
	}
	h.broadcast(d.Room, protocol.UserLeft(d.User, d.Room.Snapshot()), "")
}

func (h *Hub) setStory(sid core.SessionID, m *protocol.SetStory) {
	room, ok := h.rooms.ResolveRoom(sid)
	if !ok {
		return
	}
	room.SetStory(m.Story)
	h.broadcast(room, protocol.StoryUpdated(room.Story(), room.Snapshot()), "")
	h.record(sid, room, audit.ActionSetStory, map[string]any{"story": room.Story()})
}

func (h *Hub) castVote(sid core.SessionID, m *protocol.CastVote) {
	room, ok := h.rooms.ResolveRoom(sid)
	if !ok {
		return
	}
	if res := room.CastVote(sid, domain.Card(m.Vote)); res != core.VoteAccepted {
		log.Debug().Str("module", "app.hub").Str("sid", string(sid)).Str("room_id", string(room.ID())).Stringer("result", res).Msg("vote ignored")
		return
	}
	h.broadcast(room, protocol.VoteCast(domain.UserID(sid), room.Snapshot()), "")
	h.record(sid, room, audit.ActionCastVote, nil)
}

func (h *Hub) revealVotes(sid core.SessionID) {
	room, ok := h.rooms.ResolveRoom(sid)
	if !ok {
		return
	}
	stats := room.RevealVotes()
	h.broadcast(room, protocol.VotesRevealed(room.Snapshot(), stats), "")

	details := map[string]any{"votes": room.VoteCount()}
	if stats != nil {
		details["average"] = stats.Average
		details["median"] = stats.Median
	}
	h.record(sid, room, audit.ActionRevealVotes, details)
}

func (h *Hub) clearVotes(sid core.SessionID) {
	room, ok := h.rooms.ResolveRoom(sid)
	if !ok {
		return
	}
	room.ClearVotes()
	h.broadcast(room, protocol.VotesCleared(room.Snapshot()), "")
	h.record(sid, room, audit.ActionClearVotes, nil)
}

func (h *Hub) toggleSpectator(sid core.SessionID, m *protocol.ToggleSpectator) {
	room, ok := h.rooms.ResolveRoom(sid)
	if !ok || !room.SetSpectator(sid, m.IsSpectator) {
		return
	}
	user, _ := room.Member(sid)
	h.broadcast(room, protocol.UserUpdated(user, room.Snapshot()), "")
	h.record(sid, room, audit.ActionToggleSpectator, map[string]any{"spectator": user.IsSpectator})
}

func (h *Hub) record(sid core.SessionID, room *core.Room, action audit.Action, details map[string]any) {
	user, _ := room.Member(sid)
	h.recordAs(sid, user.Name, room.ID(), action, details)
}

func (h *Hub) recordAs(sid core.SessionID, userName string, roomID domain.RoomID, action audit.Action, details map[string]any) {
	e := audit.Entry{
		Action:   action,
		UserName: userName,
		RoomID:   string(roomID),
		Details:  details,
	}
	if s, ok := h.sessions.GetSession(sid); ok {
		e.IP = s.Client.IP
		e.UserAgent = s.Client.UserAgent
	}
	h.audit.LogAction(e)
}
