package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rutaCognizant/planning-poker/internal/core"
)

// ClientInfo is what we know about the other end of a connection.
type ClientInfo struct {
	IP        string
	UserAgent string
	Token     string
}

type sessionEntry struct {
	Signal      core.SignalConnection
	Client      ClientInfo
	ConnectedAt time.Time
}

// Registry maps live sessions to their transport. It is owned by the
// hub loop and takes no locks.
type Registry struct {
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) BindSignal(sid core.SessionID, conn core.SignalConnection, client ClientInfo) {
	if old, ok := r.sessions[sid]; ok && old.Signal != conn {
		old.Signal.Close()
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Msg("replaced existing session")
	}
	r.sessions[sid] = &sessionEntry{Signal: conn, Client: client, ConnectedAt: time.Now()}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("ip", client.IP).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (*sessionEntry, bool) {
	e, ok := r.sessions[sid]
	return e, ok
}

func (r *Registry) Unbind(sid core.SessionID) {
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Len() int { return len(r.sessions) }

// CloseAll closes every transport; their read pumps then unregister.
func (r *Registry) CloseAll() {
	for sid, e := range r.sessions {
		e.Signal.Close()
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("closed on shutdown")
	}
}
