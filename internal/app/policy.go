package app

import "github.com/rutaCognizant/planning-poker/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a session whose send buffer is full.
type Policy interface {
	OnBackPressure(room *core.Room, sid core.SessionID) BackpressureAction
}

// SimplePolicy kicks slow members; the client reconnects and gets a
// fresh snapshot on join.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(*core.Room, core.SessionID) BackpressureAction {
	return KickMember
}

// TolerantPolicy only drops the frame.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(*core.Room, core.SessionID) BackpressureAction {
	return NoAction
}
