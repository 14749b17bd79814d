/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/Seednode/neardle/games/neardle"
)

const clearScreen = "\033[H\033[2J"

// askPlayers returns the roster from the configuration, or from the
// terminal until a valid one is entered.
func askPlayers(cfg *Config, prompt neardle.Prompter, out io.Writer) (*neardle.Players, error) {
	stages := cfg.rules().Stages

	if cfg.players != "" {
		return neardle.NewPlayers(neardle.SplitList(cfg.players), stages)
	}

	for {
		input, err := prompt.Input("Enter the names of players as a comma-separated list")
		if err != nil {
			return nil, err
		}

		players, err := neardle.NewPlayers(neardle.SplitList(input), stages)
		if err == nil {
			return players, nil
		}

		fmt.Fprintf(out, "%v\n", err)
	}
}

func Play(ctx context.Context, cfg *Config) error {
	logf(cfg, "START: neardle v%s", releaseVersion)

	prompt := terminalPrompt{}
	out := os.Stdout

	fmt.Fprint(out, clearScreen)
	fmt.Fprint(out, " ===  Welcome to Neardle, a nerdy version of Heardle  === \n\n")

	err := play(ctx, cfg, prompt, out)
	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, context.Canceled) {
		fmt.Fprint(out, "\nOk, goodbye\n")

		return nil
	}

	return err
}

func play(ctx context.Context, cfg *Config, prompt neardle.Prompter, out io.Writer) error {
	players, err := askPlayers(cfg, prompt, out)
	if err != nil {
		return err
	}

	client, tokenFile, err := authenticate(ctx, cfg)
	if err != nil {
		return fmt.Errorf("logging in to spotify: %w", err)
	}

	defer func() {
		if err := persistToken(client, tokenFile); err != nil {
			logf(cfg, "AUTH: Could not save refreshed token: %v", err)
		}
	}()

	catalog := newSpotifyCatalog(client, cfg)

	builder := neardle.NewBuilder(catalog, cfg.params())
	builder.Warnf = warnf

	s := &setup{
		builder: builder,
		prompt:  prompt,
		out:     out,
		frame:   cfg.defaultDateframe(),
	}

	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	logf(cfg, "POOL: Built %d tracks", pool.Len())

	opts := []neardle.Option{
		neardle.WithOutput(out),
		neardle.WithNextRound(func() { fmt.Fprint(out, clearScreen) }),
	}

	if cfg.scoreboard {
		hub := newHub(players.Standings(), pool.Len())

		boardCtx, stop := context.WithCancel(ctx)
		defer stop()

		go func() {
			if err := ServeScoreboard(boardCtx, cfg, hub); err != nil {
				warnf("scoreboard stopped: %v", err)
			}
		}()

		url := scoreboardURL(cfg)

		fmt.Fprintf(out, "\nSpectators can follow along at %s\n\n", url)
		if err := printQR(out, url); err != nil {
			logf(cfg, "SERVE: Could not render QR code: %v", err)
		}

		opts = append(opts, neardle.WithObserver(hub.publish))
	}

	session, err := neardle.NewSession(pool, players, cfg.rules(), catalog, prompt, opts...)
	if err != nil {
		return err
	}

	fmt.Fprint(out, "\nOpen your Spotify player\n")
	if _, err := prompt.Input("Press Enter to start..."); err != nil {
		return err
	}
	fmt.Fprint(out, clearScreen)

	summary, err := session.Run(ctx)
	if errors.Is(err, neardle.ErrNoTracks) {
		return err
	}

	fmt.Fprint(out, summary)

	return err
}
