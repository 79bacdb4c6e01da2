package app

import (
	"github.com/rs/zerolog/log"

	"github.com/rutaCognizant/planning-poker/internal/core"
	"github.com/rutaCognizant/planning-poker/internal/protocol"
)

// send delivers ev to one session. Failures are logged only.
func (h *Hub) send(sid core.SessionID, ev protocol.Event) {
	frame, err := ev.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("type", ev.Type).Msg("encode event")
		return
	}
	s, ok := h.sessions.GetSession(sid)
	if !ok {
		return
	}
	if err := s.Signal.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.hub").Str("sid", string(sid)).Str("type", ev.Type).Msg("send dropped")
	}
}

// broadcast encodes ev once and fans it out to every member of room
// except the given session. Members whose buffer is full are handed to
// the back-pressure policy.
func (h *Hub) broadcast(room *core.Room, ev protocol.Event, except core.SessionID) {
	frame, err := ev.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("type", ev.Type).Msg("encode event")
		return
	}
	sent, dropped := 0, 0
	for _, u := range room.Members() {
		sid := core.SessionID(u.ID)
		if sid == except {
			continue
		}
		s, ok := h.sessions.GetSession(sid)
		if !ok {
			continue
		}
		if err := s.Signal.TrySend(frame); err != nil {
			dropped++
			h.onBackPressure(room, sid, s)
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.hub").Str("room_id", string(room.ID())).Str("type", ev.Type).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}

func (h *Hub) onBackPressure(room *core.Room, sid core.SessionID, s *sessionEntry) {
	if h.policy == nil {
		return
	}
	switch h.policy.OnBackPressure(room, sid) {
	case KickMember:
		log.Warn().Str("module", "app.hub").Str("sid", string(sid)).Str("room_id", string(room.ID())).Msg("kicking slow member")
		// The read pump notices the closed socket and unregisters.
		s.Signal.Close()
	case NoAction:
	}
}
