package core

// Frame is a raw encoded message.
type Frame []byte

// SessionID identifies one live signal connection. It doubles as the
// member id inside a room, so it must be opaque and stable for the
// lifetime of the connection.
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
