/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

var ErrStateMismatch = errors.New("oauth state mismatch")

var scopes = []string{
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistReadPrivate,
}

func randomState(n int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	const max = byte(255 - (256 % len(letters)))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}

		for _, b := range buf {
			if b > max {
				continue
			}

			out = append(out, letters[int(b)%len(letters)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out)
}

func newAuthenticator(cfg *Config) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.clientID),
		spotifyauth.WithClientSecret(cfg.clientSecret),
		spotifyauth.WithRedirectURL(cfg.redirectURL),
		spotifyauth.WithScopes(scopes...),
	)
}

func tokenPath(cfg *Config) (string, error) {
	if cfg.tokenCache != "" {
		return cfg.tokenCache, nil
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "neardle", "token.json"), nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("decoding cached token %s: %w", path, err)
	}

	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("cached token %s has expired", path)
	}

	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// printQR writes a QR code of url to w, small enough for a terminal.
func printQR(w io.Writer, url string) error {
	qr, err := qrcode.New(url, qrcode.Low)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, qr.ToSmallString(false))

	return err
}

type authResult struct {
	token *oauth2.Token
	err   error
}

func serveCallback(cfg *Config, auth *spotifyauth.Authenticator, state string, results chan<- authResult) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		if r.FormValue("state") != state {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, newPage("Login Failed", "The login attempt could not be verified."))

			results <- authResult{err: ErrStateMismatch}

			return
		}

		tok, err := auth.Token(r.Context(), state, r)
		if err != nil {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, newPage("Login Failed", "Spotify refused the login."))

			results <- authResult{err: err}

			return
		}

		_, _ = io.WriteString(w, newPage("Logged In", "You can close this tab and return to the terminal."))

		logf(cfg, "AUTH: Received token from %s", realIP(r))

		results <- authResult{token: tok}
	}
}

// login runs the authorization code flow through a short-lived local
// server listening on the redirect URL.
func login(ctx context.Context, cfg *Config, auth *spotifyauth.Authenticator) (*oauth2.Token, error) {
	redirect, err := url.Parse(cfg.redirectURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect url: %w", err)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listening for oauth callback: %w", err)
	}

	state := randomState(16)
	results := make(chan authResult, 1)

	mux := httprouter.New()
	mux.GET(redirect.Path, serveCallback(cfg, auth, state, results))

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- authResult{err: err}
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := auth.AuthURL(state)

	fmt.Printf("Log in to Spotify by opening:\n\n%s\n\n", authURL)
	if err := printQR(os.Stdout, authURL); err != nil {
		logf(cfg, "AUTH: Could not render QR code: %v", err)
	}

	select {
	case res := <-results:
		return res.token, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// authenticate returns a Spotify client, reusing the cached token when one
// exists and logging in otherwise.
func authenticate(ctx context.Context, cfg *Config) (*spotify.Client, string, error) {
	auth := newAuthenticator(cfg)

	path, err := tokenPath(cfg)
	if err != nil {
		return nil, "", err
	}

	tok, err := loadToken(path)
	if err != nil {
		logf(cfg, "AUTH: No usable cached token: %v", err)

		tok, err = login(ctx, cfg, auth)
		if err != nil {
			return nil, "", err
		}

		if err := saveToken(path, tok); err != nil {
			warnf("could not cache token: %v", err)
		}
	}

	return spotify.New(auth.Client(ctx, tok)), path, nil
}

// persistToken stores the possibly refreshed token of a client.
func persistToken(client *spotify.Client, path string) error {
	tok, err := client.Token()
	if err != nil {
		return err
	}

	return saveToken(path, tok)
}
