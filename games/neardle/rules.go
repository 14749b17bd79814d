/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"errors"
	"fmt"
	"time"
)

// Rules holds the scoring table of a session.
type Rules struct {
	// Stages are the snippet lengths offered before the answer is revealed.
	Stages []time.Duration

	// Points[i] is awarded for a correct title at Stages[i].
	Points []int

	WrongGuessPenalty int

	GuessYear      bool
	YearBonus      int
	CloseYearBonus int
	YearPenalty    int
	YearTolerance  int

	GuessAlbum     bool
	AlbumBonus     int
	AlbumPenalty   int
	AlbumThreshold float64
}

func DefaultRules() Rules {
	return Rules{
		Stages: []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			7 * time.Second,
			11 * time.Second,
			16 * time.Second,
		},
		Points:            []int{6, 5, 4, 3, 2, 1},
		WrongGuessPenalty: 1,

		GuessYear:      true,
		YearBonus:      3,
		CloseYearBonus: 1,
		YearPenalty:    1,
		YearTolerance:  5,

		GuessAlbum:     true,
		AlbumBonus:     2,
		AlbumPenalty:   1,
		AlbumThreshold: 0.9,
	}
}

func (r Rules) Validate() error {
	if len(r.Stages) == 0 {
		return errors.New("at least one stage is required")
	}
	if len(r.Stages) != len(r.Points) {
		return fmt.Errorf("got %d stages but %d point values", len(r.Stages), len(r.Points))
	}
	for i, d := range r.Stages {
		if d < 0 {
			return fmt.Errorf("invalid stage duration: %s", d)
		}
		if i > 0 && d <= r.Stages[i-1] {
			return fmt.Errorf("stages must be strictly increasing: %s follows %s", d, r.Stages[i-1])
		}
	}
	if r.YearTolerance < 0 {
		return fmt.Errorf("invalid year tolerance: %d", r.YearTolerance)
	}
	if r.AlbumThreshold < 0 || r.AlbumThreshold > 1 {
		return fmt.Errorf("invalid album threshold (must be between 0-1 inclusive): %v", r.AlbumThreshold)
	}

	return nil
}
