// Package domain holds the plain entities of a poker room and the
// rules for their values: display names, room names, join codes and
// the card deck.
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxUsernameLen is counted in runes.
const (
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// UserID is the identity of a member inside a room. It equals the
// connection id the member joined with.
type UserID string

type User struct {
	ID          UserID `json:"id"`
	Name        string `json:"name"`
	IsSpectator bool   `json:"isSpectator"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, name string, spectator bool) (*User, error) {
	u := &User{ID: id, IsSpectator: spectator}
	if err := u.SetName(name); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if utf8.RuneCountInString(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Name = name
	return nil
}
