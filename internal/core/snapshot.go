package core

import (
	"github.com/rutaCognizant/planning-poker/internal/domain"
)

// HiddenVote replaces every vote value until the round is revealed.
const HiddenVote = "hidden"

// Snapshot is the wire view of a room. It never carries a real vote
// while VotingRevealed is false.
type Snapshot struct {
	ID             domain.RoomID            `json:"id"`
	Name           domain.RoomName          `json:"name"`
	Users          []domain.User            `json:"users"`
	CurrentStory   string                   `json:"currentStory"`
	Votes          map[domain.UserID]string `json:"votes"`
	VotingRevealed bool                     `json:"votingRevealed"`
	CardValues     []string                 `json:"cardValues"`
}

func (r *Room) Snapshot() Snapshot {
	votes := make(map[domain.UserID]string, len(r.votes))
	for sid, card := range r.votes {
		if r.revealed {
			votes[domain.UserID(sid)] = string(card)
		} else {
			votes[domain.UserID(sid)] = HiddenVote
		}
	}
	return Snapshot{
		ID:             r.id,
		Name:           r.name,
		Users:          r.Members(),
		CurrentStory:   r.story,
		Votes:          votes,
		VotingRevealed: r.revealed,
		CardValues:     domain.DeckValues(),
	}
}
