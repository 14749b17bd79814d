/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

type CommandKind int

const (
	CommandInvalid CommandKind = iota
	CommandRepeat
	CommandNext
	CommandSkip
	CommandGuess
)

var commandKinds = map[string]CommandKind{
	"r": CommandRepeat,
	"n": CommandNext,
	"s": CommandSkip,
}

// suggestDistance is the largest edit distance still offered as a
// "did you mean" hint.
const suggestDistance = 2

// Command is one classified line of round input.
type Command struct {
	Kind CommandKind

	// Player is the guessing player for CommandGuess, or the closest
	// player name for a mistyped CommandInvalid.
	Player string
}

// ParseCommand classifies a line of input typed during a round.
func ParseCommand(input string, players *Players) Command {
	input = strings.TrimSpace(input)

	if kind, ok := commandKinds[input]; ok {
		return Command{Kind: kind}
	}

	if _, ok := players.Get(input); ok {
		return Command{Kind: CommandGuess, Player: input}
	}

	return Command{Kind: CommandInvalid, Player: closestName(input, players.Names())}
}

func closestName(input string, names []string) string {
	if input == "" {
		return ""
	}

	best, bestDist := "", suggestDistance+1
	for _, name := range names {
		d := levenshtein.ComputeDistance(strings.ToLower(input), strings.ToLower(name))
		if d < bestDist {
			best, bestDist = name, d
		}
	}

	return best
}
