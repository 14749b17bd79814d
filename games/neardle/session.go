/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoTracks      = errors.New("no tracks to play")
	ErrPoolExhausted = errors.New("every track has been played")
)

// Playback drives the shared audio device.
type Playback interface {
	Play(ctx context.Context, trackID string) error
	Pause(ctx context.Context) error
}

// Prompter reads blocking, validated answers from the players.
type Prompter interface {
	Input(message string) (string, error)
	Select(message string, options []string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type State int

const (
	StateSelecting State = iota
	StatePlaying
	StateAwaitingInput
	StateScoring
	StateAdvancing
	StateRevealed
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StatePlaying:
		return "playing"
	case StateAwaitingInput:
		return "awaiting input"
	case StateScoring:
		return "scoring"
	case StateAdvancing:
		return "advancing"
	case StateRevealed:
		return "revealed"
	}
	return "unknown"
}

type Outcome int

const (
	OutcomeGuessed Outcome = iota
	OutcomeSkipped
	OutcomeExhausted
)

// Round is the transient state of the track being played.
type Round struct {
	Track   Track
	Stage   int
	State   State
	Guesser string
	Outcome Outcome
}

// RoundResult describes a revealed round.
type RoundResult struct {
	Track     Track
	Outcome   Outcome
	Guesser   string
	Stage     int
	Remaining int
	Standings []Standing
}

// Summary is what is left of a session once it ends.
type Summary struct {
	TracksPlayed int
	Standings    []Standing
}

func (s Summary) String() string {
	var b strings.Builder

	b.WriteString(" === statistics === \n")
	fmt.Fprintf(&b, "Played %d tracks in total\n", s.TracksPlayed)
	for _, st := range s.Standings {
		fmt.Fprintf(&b, "%s\n%s\n\n", st.Name, st.Stats)
	}

	return b.String()
}

type Option func(*Session)

func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.intn = r.IntN }
}

// WithSleep replaces the wait between starting and pausing a snippet.
func WithSleep(f func(context.Context, time.Duration) error) Option {
	return func(s *Session) { s.sleep = f }
}

// WithNextRound registers a callback run when the players choose to keep
// playing, before the next standings are printed.
func WithNextRound(f func()) Option {
	return func(s *Session) { s.nextRound = append(s.nextRound, f) }
}

// WithObserver registers a callback run after every revealed round.
func WithObserver(f func(RoundResult)) Option {
	return func(s *Session) { s.observers = append(s.observers, f) }
}

// Session runs the guessing game over a pool. It owns the pool and the
// players for its whole lifetime and is not safe for concurrent use.
type Session struct {
	pool     *Pool
	players  *Players
	rules    Rules
	playback Playback
	prompt   Prompter

	out       io.Writer
	intn      func(int) int
	sleep     func(context.Context, time.Duration) error
	observers []func(RoundResult)
	nextRound []func()

	available []int
	played    int
}

func NewSession(pool *Pool, players *Players, rules Rules, playback Playback, prompt Prompter, opts ...Option) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if players == nil || len(players.order) == 0 {
		return nil, ErrNoPlayers
	}

	s := &Session{
		pool:      pool,
		players:   players,
		rules:     rules,
		playback:  playback,
		prompt:    prompt,
		out:       io.Discard,
		intn:      rand.IntN,
		sleep:     sleepContext,
		available: make([]int, pool.Len()),
	}

	for i := range s.available {
		s.available[i] = i
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Session) Remaining() int {
	return len(s.available)
}

func (s *Session) Played() int {
	return s.played
}

func (s *Session) Players() *Players {
	return s.players
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Run plays rounds until the pool is empty or the players stop.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	if s.pool.Len() == 0 {
		return Summary{}, ErrNoTracks
	}

	for s.Remaining() > 0 {
		s.printf("Standings:\n")
		for _, st := range s.players.Standings() {
			s.printf("  %s\n", st)
		}
		s.printf("\n")

		if _, err := s.PlayRound(ctx); err != nil {
			return s.summary(), err
		}

		if s.Remaining() == 0 {
			s.printf("No more tracks to play, exiting\n")
			break
		}

		keep, err := s.prompt.Confirm("Do you want to keep playing", true)
		if err != nil {
			return s.summary(), err
		}
		if !keep {
			s.printf("Ok, goodbye\n\n")
			break
		}

		for _, f := range s.nextRound {
			f()
		}
	}

	return s.summary(), nil
}

func (s *Session) summary() Summary {
	return Summary{
		TracksPlayed: s.played,
		Standings:    s.players.Standings(),
	}
}

// PlayRound draws a track and drives it until it is revealed.
func (s *Session) PlayRound(ctx context.Context) (RoundResult, error) {
	if s.Remaining() == 0 {
		return RoundResult{}, ErrPoolExhausted
	}

	r := &Round{State: StateSelecting}

	for {
		if err := ctx.Err(); err != nil {
			return RoundResult{}, err
		}

		var err error

		switch r.State {
		case StateSelecting:
			s.draw(r)
		case StatePlaying:
			err = s.playSnippet(ctx, r)
		case StateAwaitingInput:
			err = s.awaitInput(ctx, r)
		case StateScoring:
			err = s.score(r)
		case StateAdvancing:
			s.advance(r)
		case StateRevealed:
			return s.reveal(ctx, r)
		}

		if err != nil {
			return RoundResult{}, err
		}
	}
}

func (s *Session) draw(r *Round) {
	i := s.intn(len(s.available))

	r.Track = s.pool.At(s.available[i])
	r.Stage = 0
	r.State = StatePlaying

	s.available[i] = s.available[len(s.available)-1]
	s.available = s.available[:len(s.available)-1]
	s.played++
}

func (s *Session) playSnippet(ctx context.Context, r *Round) error {
	d := s.rules.Stages[r.Stage]

	s.printf("Playing %d seconds\n", int(d.Seconds()))

	if err := s.playback.Play(ctx, r.Track.ID); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	if err := s.sleep(ctx, d); err != nil {
		// The round is abandoned, so the device must not keep playing.
		_ = s.playback.Pause(context.Background())

		return err
	}
	if err := s.playback.Pause(ctx); err != nil {
		return fmt.Errorf("pausing playback: %w", err)
	}

	r.State = StateAwaitingInput

	return nil
}

func (s *Session) awaitInput(ctx context.Context, r *Round) error {
	line, err := s.prompt.Input("Enter a player's name to guess, 'r' to repeat, 'n' for next, 's' to skip")
	if err != nil {
		return err
	}

	cmd := ParseCommand(line, s.players)

	switch cmd.Kind {
	case CommandRepeat:
		r.State = StatePlaying
	case CommandNext:
		r.State = StateAdvancing
	case CommandSkip:
		r.Outcome = OutcomeSkipped
		r.State = StateRevealed
	case CommandGuess:
		return s.guess(r, cmd.Player)
	default:
		if cmd.Player != "" {
			s.printf("Incorrect input, did you mean %s?\n", cmd.Player)
		} else {
			s.printf("Incorrect input, repeating\n")
		}
	}

	return nil
}

func (s *Session) guess(r *Round, name string) error {
	p, _ := s.players.Get(name)

	text, err := s.prompt.Input(fmt.Sprintf("%s, make a guess", name))
	if err != nil {
		return err
	}

	choices := ResolveGuess(s.pool, text)

	var answer string
	switch len(choices) {
	case 0:
		s.printf("There are no tracks that match your guess, repeating\n")
		return nil
	case 1:
		answer = choices[0]
	default:
		answer, err = s.prompt.Select("Choose between the options", choices)
		if err != nil {
			return err
		}
	}

	if answer == r.Track.LegibleName() {
		r.Guesser = p.Name
		r.State = StateScoring
		return nil
	}

	p.Score -= s.rules.WrongGuessPenalty
	s.printf("Incorrect! You lose %d points\n", s.rules.WrongGuessPenalty)
	r.State = StateAdvancing

	return nil
}

func (s *Session) advance(r *Round) {
	r.Stage++

	if r.Stage >= len(s.rules.Stages) {
		r.Stage = len(s.rules.Stages) - 1
		r.Outcome = OutcomeExhausted
		r.State = StateRevealed
		return
	}

	r.State = StatePlaying
}

func (s *Session) score(r *Round) error {
	p, _ := s.players.Get(r.Guesser)

	points := s.rules.Points[r.Stage]
	p.Score += points
	p.Stats.StagesDurations[s.rules.Stages[r.Stage]]++

	s.printf("Correct! It was: %s\n", r.Track.LegibleName())
	s.printf("You earn %d points\n", points)

	if s.rules.GuessYear {
		if err := s.scoreYear(p, r.Track); err != nil {
			return err
		}
	}

	if s.rules.GuessAlbum {
		if err := s.scoreAlbum(p, r.Track); err != nil {
			return err
		}
	}

	r.Outcome = OutcomeGuessed
	r.State = StateRevealed

	return nil
}

func (s *Session) scoreYear(p *Player, t Track) error {
	ok, err := s.prompt.Confirm("Do you want to guess the release date?", true)
	if err != nil || !ok {
		return err
	}

	var year int
	for {
		input, err := s.prompt.Input("Your guess for the year")
		if err != nil {
			return err
		}

		year, err = strconv.Atoi(strings.TrimSpace(input))
		if err == nil {
			break
		}

		s.printf("%q is not a year, try again\n", input)
	}

	diff := year - t.Album.Year
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		p.Score += s.rules.YearBonus
		p.Stats.CorrectReleaseYears++
		s.printf("Correct! You earn %d points\n", s.rules.YearBonus)
	case diff <= s.rules.YearTolerance:
		p.Score += s.rules.CloseYearBonus
		p.Stats.CloseReleaseYears++
		s.printf("Almost! It was %d. You earn %d points\n", t.Album.Year, s.rules.CloseYearBonus)
	default:
		p.Score -= s.rules.YearPenalty
		p.Stats.IncorrectReleaseYears++
		s.printf("Incorrect! It was %d. You lose %d points\n", t.Album.Year, s.rules.YearPenalty)
	}
	s.printf("\n\n")

	return nil
}

func (s *Session) scoreAlbum(p *Player, t Track) error {
	ok, err := s.prompt.Confirm("Do you want to guess the album?", true)
	if err != nil || !ok {
		return err
	}

	input, err := s.prompt.Input("Your guess for the album")
	if err != nil {
		return err
	}

	if Ratio(input, t.Album.Name) > s.rules.AlbumThreshold {
		p.Score += s.rules.AlbumBonus
		p.Stats.CorrectAlbums++
		s.printf("Correct! You earn %d points\n", s.rules.AlbumBonus)
	} else {
		p.Score -= s.rules.AlbumPenalty
		p.Stats.IncorrectAlbums++
		s.printf("Incorrect! It was %s. You lose %d points\n", t.Album.Name, s.rules.AlbumPenalty)
	}
	s.printf("\n\n")

	return nil
}

func (s *Session) reveal(ctx context.Context, r *Round) (RoundResult, error) {
	if err := s.playback.Play(ctx, r.Track.ID); err != nil {
		return RoundResult{}, fmt.Errorf("starting playback: %w", err)
	}

	switch r.Outcome {
	case OutcomeSkipped:
		s.printf("It was: %s\n\n\n", r.Track.Details())
	case OutcomeExhausted:
		s.printf("You haven't found it in time, it was: %s\n\n\n", r.Track.Details())
	default:
		s.printf("%s\n\n", r.Track.Details())
	}

	res := RoundResult{
		Track:     r.Track,
		Outcome:   r.Outcome,
		Guesser:   r.Guesser,
		Stage:     r.Stage,
		Remaining: s.Remaining(),
		Standings: s.players.Standings(),
	}

	for _, f := range s.observers {
		f(res)
	}

	return res, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
