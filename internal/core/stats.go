package core

import (
	"math"
	"slices"
	"strconv"

	"github.com/rutaCognizant/planning-poker/internal/domain"
)

// Stats summarises a revealed round.
type Stats struct {
	Average    float64 `json:"average"`
	Median     float64 `json:"median"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	TotalVotes int     `json:"totalVotes"`
}

// ComputeStats ignores "?" and "☕" and anything that does not parse as
// an integer. TotalVotes still counts every vote.
func ComputeStats(votes map[SessionID]domain.Card) *Stats {
	nums := make([]int, 0, len(votes))
	for _, card := range votes {
		if !card.Numeric() {
			continue
		}
		n, err := strconv.Atoi(string(card))
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return nil
	}
	slices.Sort(nums)

	sum := 0
	for _, n := range nums {
		sum += n
	}
	mean := float64(sum) / float64(len(nums))

	mid := len(nums) / 2
	median := float64(nums[mid])
	if len(nums)%2 == 0 {
		median = float64(nums[mid-1]+nums[mid]) / 2
	}

	return &Stats{
		Average:    math.Round(mean*10) / 10,
		Median:     median,
		Min:        nums[0],
		Max:        nums[len(nums)-1],
		TotalVotes: len(votes),
	}
}
