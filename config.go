/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/neardle/games/neardle"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	albumBonus         int
	albumPenalty       int
	albumThreshold     float64
	artistPopularity   int
	bind               string
	clientID           string
	clientSecret       string
	closeYearBonus     int
	configFile         string
	device             string
	guessAlbum         bool
	guessYear          bool
	market             string
	maxOffset          int
	maxRelated         int
	maxTracksPerArtist int
	maxYear            int
	minYear            int
	pageSize           int
	players            string
	points             []int
	port               int
	prefix             string
	profile            bool
	redirectURL        string
	scoreboard         bool
	stages             []int
	tlsCert            string
	tlsKey             string
	tokenCache         string
	trackPopularity    int
	verbose            bool
	version            bool
	wrongGuessPenalty  int
	yearBonus          int
	yearPenalty        int
	yearTolerance      int
}

func (c *Config) validate() error {
	c.prefix = strings.TrimSuffix(c.prefix, "/")

	if c.clientID == "" || c.clientSecret == "" {
		return errors.New("both --client-id and --client-secret must be provided")
	}
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.pageSize < 1 || c.pageSize > 50 {
		return fmt.Errorf("invalid page size (must be between 1-50 inclusive): %d", c.pageSize)
	}
	if c.minYear > c.maxYear {
		return fmt.Errorf("invalid default date range: %d-%d", c.minYear, c.maxYear)
	}
	return c.rules().Validate()
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) rules() neardle.Rules {
	stages := make([]time.Duration, len(c.stages))
	for i, s := range c.stages {
		stages[i] = time.Duration(s) * time.Second
	}

	return neardle.Rules{
		Stages:            stages,
		Points:            c.points,
		WrongGuessPenalty: c.wrongGuessPenalty,
		GuessYear:         c.guessYear,
		YearBonus:         c.yearBonus,
		CloseYearBonus:    c.closeYearBonus,
		YearPenalty:       c.yearPenalty,
		YearTolerance:     c.yearTolerance,
		GuessAlbum:        c.guessAlbum,
		AlbumBonus:        c.albumBonus,
		AlbumPenalty:      c.albumPenalty,
		AlbumThreshold:    c.albumThreshold,
	}
}

func (c *Config) params() neardle.Params {
	return neardle.Params{
		PageSize:                  c.pageSize,
		MaxOffset:                 c.maxOffset,
		TrackPopularityThreshold:  c.trackPopularity,
		ArtistPopularityThreshold: c.artistPopularity,
		MaxRelatedArtists:         c.maxRelated,
		MaxTracksPerArtist:        c.maxTracksPerArtist,
	}
}

func (c *Config) defaultDateframe() neardle.Dateframe {
	return neardle.Dateframe{Start: c.minYear, End: c.maxYear}
}

// applyViper copies every value viper knows about onto flags the user did
// not set explicitly.
func applyViper(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed && v.IsSet(f.Name) {
			value := v.Get(f.Name)
			if list, ok := value.([]any); ok {
				parts := make([]string, len(list))
				for i, item := range list {
					parts[i] = fmt.Sprintf("%v", item)
				}
				value = strings.Join(parts, ",")
			}
			_ = fs.Set(f.Name, fmt.Sprintf("%v", value))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("NEARDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := neardle.DefaultRules()
	params := neardle.DefaultParams()

	cmd := &cobra.Command{
		Use:           "neardle",
		Short:         "A nerdy take on Heardle: guess tracks from ever longer snippets, played through Spotify.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.configFile == "" {
				return nil
			}

			v.SetConfigFile(cfg.configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file: %w", err)
			}
			applyViper(v, cmd.Flags())

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return Play(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	stageSeconds := make([]int, len(defaults.Stages))
	for i, d := range defaults.Stages {
		stageSeconds[i] = int(d.Seconds())
	}

	fs.IntVar(&cfg.albumBonus, "album-bonus", defaults.AlbumBonus, "points earned for a correct album (env: NEARDLE_ALBUM_BONUS)")
	fs.IntVar(&cfg.albumPenalty, "album-penalty", defaults.AlbumPenalty, "points lost for an incorrect album (env: NEARDLE_ALBUM_PENALTY)")
	fs.Float64Var(&cfg.albumThreshold, "album-threshold", defaults.AlbumThreshold, "similarity above which an album guess is correct (env: NEARDLE_ALBUM_THRESHOLD)")
	fs.IntVar(&cfg.artistPopularity, "artist-popularity", params.ArtistPopularityThreshold, "minimum popularity of related artists (env: NEARDLE_ARTIST_POPULARITY)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address the scoreboard binds to (env: NEARDLE_BIND)")
	fs.StringVar(&cfg.clientID, "client-id", "", "spotify application client id (env: NEARDLE_CLIENT_ID)")
	fs.StringVar(&cfg.clientSecret, "client-secret", "", "spotify application client secret (env: NEARDLE_CLIENT_SECRET)")
	fs.IntVar(&cfg.closeYearBonus, "close-year-bonus", defaults.CloseYearBonus, "points earned for a release year within the tolerance (env: NEARDLE_CLOSE_YEAR_BONUS)")
	fs.StringVarP(&cfg.configFile, "config", "c", "", "path to a yaml, toml or json config file (env: NEARDLE_CONFIG)")
	fs.StringVar(&cfg.device, "device", "", "spotify device id to play on, defaults to the active device (env: NEARDLE_DEVICE)")
	fs.BoolVar(&cfg.guessAlbum, "guess-album", defaults.GuessAlbum, "offer album guesses after a correct title (env: NEARDLE_GUESS_ALBUM)")
	fs.BoolVar(&cfg.guessYear, "guess-year", defaults.GuessYear, "offer release year guesses after a correct title (env: NEARDLE_GUESS_YEAR)")
	fs.StringVar(&cfg.market, "market", "US", "spotify market used for catalog queries (env: NEARDLE_MARKET)")
	fs.IntVar(&cfg.maxOffset, "max-offset", params.MaxOffset, "deepest search offset queried (env: NEARDLE_MAX_OFFSET)")
	fs.IntVar(&cfg.maxRelated, "max-related", params.MaxRelatedArtists, "related artists added per artist (env: NEARDLE_MAX_RELATED)")
	fs.IntVar(&cfg.maxTracksPerArtist, "max-tracks-per-artist", params.MaxTracksPerArtist, "tracks kept per artist in popular mode (env: NEARDLE_MAX_TRACKS_PER_ARTIST)")
	fs.IntVar(&cfg.maxYear, "max-year", time.Now().Year(), "end of the default date range (env: NEARDLE_MAX_YEAR)")
	fs.IntVar(&cfg.minYear, "min-year", 1900, "start of the default date range (env: NEARDLE_MIN_YEAR)")
	fs.IntVar(&cfg.pageSize, "page-size", params.PageSize, "search results per request (env: NEARDLE_PAGE_SIZE)")
	fs.StringVar(&cfg.players, "players", "", "comma-separated player names, prompted for if empty (env: NEARDLE_PLAYERS)")
	fs.IntSliceVar(&cfg.points, "points", defaults.Points, "points earned for a correct title at each stage (env: NEARDLE_POINTS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port the scoreboard listens on (env: NEARDLE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all scoreboard URLs, for use behind reverse proxy (env: NEARDLE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers on the scoreboard (env: NEARDLE_PROFILE)")
	fs.StringVar(&cfg.redirectURL, "redirect-url", "http://127.0.0.1:8888/callback", "spotify oauth redirect url, served locally during login (env: NEARDLE_REDIRECT_URL)")
	fs.BoolVar(&cfg.scoreboard, "scoreboard", false, "serve a read-only live scoreboard for spectators (env: NEARDLE_SCOREBOARD)")
	fs.IntSliceVar(&cfg.stages, "stages", stageSeconds, "snippet length in seconds of each stage (env: NEARDLE_STAGES)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: NEARDLE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: NEARDLE_TLS_KEY)")
	fs.StringVar(&cfg.tokenCache, "token-cache", "", "where the spotify token is cached, defaults to the user cache dir (env: NEARDLE_TOKEN_CACHE)")
	fs.IntVar(&cfg.trackPopularity, "track-popularity", params.TrackPopularityThreshold, "minimum popularity of searched tracks (env: NEARDLE_TRACK_POPULARITY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: NEARDLE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: NEARDLE_VERSION)")
	fs.IntVar(&cfg.wrongGuessPenalty, "wrong-guess-penalty", defaults.WrongGuessPenalty, "points lost for an incorrect title (env: NEARDLE_WRONG_GUESS_PENALTY)")
	fs.IntVar(&cfg.yearBonus, "year-bonus", defaults.YearBonus, "points earned for the exact release year (env: NEARDLE_YEAR_BONUS)")
	fs.IntVar(&cfg.yearPenalty, "year-penalty", defaults.YearPenalty, "points lost for a distant release year (env: NEARDLE_YEAR_PENALTY)")
	fs.IntVar(&cfg.yearTolerance, "year-tolerance", defaults.YearTolerance, "years off still counted as close (env: NEARDLE_YEAR_TOLERANCE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
	})
	applyViper(v, fs)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("neardle v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
