/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package neardle is a nerdy take on Heardle for players sharing one
// keyboard.
//
// How to play:
//   - A pool of tracks is built from artists, genres or playlists
//   - A random track is played for a few seconds, then paused
//   - Anyone who knows it types their name and guesses; the earlier the
//     stage, the more points
//   - "r" replays the snippet, "n" plays a longer one, "s" gives up
//   - A wrong guess costs a point and moves on to the next stage
//   - After a correct title the guesser may also bet on the release year
//     and the album
//
// The package holds no I/O of its own: catalog queries go through a
// Source, audio through a Playback and every question through a Prompter.
package neardle
