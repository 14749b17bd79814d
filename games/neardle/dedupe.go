/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"slices"
)

// SimilarTitleThreshold is the core-title ratio above which two tracks
// are considered the same song.
const SimilarTitleThreshold = 0.8

// FilterSimilar reports whether candidate should be dropped because its
// core title is too close to one of the already kept tracks.
func FilterSimilar(candidate string, kept []Track) bool {
	core := CoreTitle(candidate)

	best := 0.0
	for _, k := range kept {
		best = max(best, Ratio(core, CoreTitle(k.Name)))
	}

	return best > SimilarTitleThreshold
}

// ByPopularity sorts tracks from most to least popular, keeping the
// original order among equals.
func ByPopularity(tracks []Track) []Track {
	sorted := slices.Clone(tracks)
	slices.SortStableFunc(sorted, func(a, b Track) int {
		return b.Popularity - a.Popularity
	})

	return sorted
}

// Dedupe keeps the most popular variant of every title.
func Dedupe(tracks []Track) []Track {
	return dedupeInOrder(ByPopularity(tracks))
}

func dedupeInOrder(tracks []Track) []Track {
	kept := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if FilterSimilar(t.Name, kept) {
			continue
		}
		kept = append(kept, t)
	}

	return kept
}

// ResolveGuess returns the legible names of every pool track whose title
// or artist contains the guess, in pool order.
func ResolveGuess(pool *Pool, guess string) []string {
	var matches []string

	for _, t := range pool.tracks {
		if IsContained(t.Name, guess) || IsContained(t.Artist.Name, guess) {
			matches = append(matches, t.LegibleName())
		}
	}

	return matches
}
