package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/rutaCognizant/planning-poker/internal/audit"
	"github.com/rutaCognizant/planning-poker/internal/core"
	"github.com/rutaCognizant/planning-poker/internal/protocol"
)

var ErrHubStopped = errors.New("hub stopped")

type eventKind int

const (
	evRegister eventKind = iota
	evUnregister
	evMessage
	evQuery
)

type event struct {
	kind   eventKind
	sid    core.SessionID
	conn   core.SignalConnection
	client ClientInfo
	msg    protocol.Message
	query  func()
}

// Hub serialises every room mutation on one goroutine. All events,
// including connect and disconnect, travel through a single channel so
// that a session's events are handled in the order they were posted.
type Hub struct {
	rooms    *core.Registry
	sessions *Registry
	audit    audit.Logger
	policy   Policy

	events  chan event
	stopped chan struct{}
}

type HubOption func(*Hub)

func WithPolicy(p Policy) HubOption {
	return func(h *Hub) { h.policy = p }
}

func WithAudit(l audit.Logger) HubOption {
	return func(h *Hub) { h.audit = l }
}

func WithRooms(r *core.Registry) HubOption {
	return func(h *Hub) { h.rooms = r }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		rooms:    core.NewRegistry(),
		sessions: NewRegistry(),
		audit:    audit.Nop{},
		policy:   SimplePolicy{},
		events:   make(chan event, 256),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes events until ctx is cancelled. On exit every
// connection is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	log.Info().Str("module", "app.hub").Msg("hub started")
	for {
		select {
		case <-ctx.Done():
			h.sessions.CloseAll()
			log.Info().Str("module", "app.hub").Msg("hub stopped")
			return
		case ev := <-h.events:
			h.handle(ev)
		}
	}
}

func (h *Hub) post(ctx context.Context, ev event) error {
	select {
	case <-h.stopped:
		return ErrHubStopped
	default:
	}
	select {
	case h.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped:
		return ErrHubStopped
	}
}

// Register announces a new connection.
func (h *Hub) Register(ctx context.Context, sid core.SessionID, conn core.SignalConnection, client ClientInfo) error {
	return h.post(ctx, event{kind: evRegister, sid: sid, conn: conn, client: client})
}

// Unregister is the implicit leave of a dropped connection.
func (h *Hub) Unregister(ctx context.Context, sid core.SessionID) error {
	return h.post(ctx, event{kind: evUnregister, sid: sid})
}

func (h *Hub) Dispatch(ctx context.Context, sid core.SessionID, msg protocol.Message) error {
	return h.post(ctx, event{kind: evMessage, sid: sid, msg: msg})
}

// Do runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := h.post(ctx, event{kind: evQuery, query: func() {
		defer close(done)
		fn()
	}}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped:
		return ErrHubStopped
	}
}

func (h *Hub) handle(ev event) {
	switch ev.kind {
	case evRegister:
		h.sessions.BindSignal(ev.sid, ev.conn, ev.client)
	case evUnregister:
		h.leave(ev.sid)
		h.sessions.Unbind(ev.sid)
	case evMessage:
		if _, ok := h.sessions.GetSession(ev.sid); !ok {
			log.Debug().Str("module", "app.hub").Str("sid", string(ev.sid)).Msg("message from unknown session")
			return
		}
		h.dispatch(ev.sid, ev.msg)
	case evQuery:
		ev.query()
	}
}

// Stats is the admin dashboard view of the hub.
type Stats struct {
	ActiveRooms int             `json:"activeRooms"`
	RoomMembers int             `json:"roomMembers"`
	Connections int             `json:"connections"`
	Rooms       []core.RoomInfo `json:"rooms"`
}

// Stats snapshots the hub on its own goroutine. The result travels over
// a buffered channel so an abandoned query never touches caller memory.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	out := make(chan Stats, 1)
	err := h.Do(ctx, func() {
		out <- Stats{
			ActiveRooms: h.rooms.Size(),
			RoomMembers: h.rooms.MemberCount(),
			Connections: h.sessions.Len(),
			Rooms:       h.rooms.Rooms(),
		}
	})
	if err != nil {
		return Stats{}, err
	}
	return <-out, nil
}
