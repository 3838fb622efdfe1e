package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/spotrip/internal/audio"
	"github.com/handiism/spotrip/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Account and gateway
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	GatewayURL string `toml:"gateway_url"`
	UserAgent  string `toml:"user_agent"`

	// Decoding
	GatewayDecodes     bool     `toml:"gateway_decodes"`
	DecoderCommand     string   `toml:"decoder_command"`
	DecoderArgs        []string `toml:"decoder_args"`
	AllowKeylessDecode bool     `toml:"allow_keyless_decode"`

	// Output
	OutputPath       string `toml:"output_path"`
	FFmpegPath       string `toml:"ffmpeg_path"`
	UpdateTags       bool   `toml:"update_tags"`
	HookPath         string `toml:"hook_path"`
	UseLedger        bool   `toml:"use_ledger"`
	TranscodeTimeout int    `toml:"transcode_timeout"` // seconds, 0 = none

	// Network
	RequestTimeout int `toml:"request_timeout"` // seconds
	RateLimitMS    int `toml:"rate_limit_ms"`   // minimum spacing between gateway requests
	RateBurst      int `toml:"rate_burst"`

	// Cover art settings
	ArtworkURLTemplate    string `toml:"artwork_url_template"`
	SaveCoverArtInTags    bool   `toml:"save_cover_art_in_tags"`
	CoverArtInTagsResize  bool   `toml:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize int    `toml:"cover_art_in_tags_max_size"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`

	// Web API collection source, used when both are set
	WebAPIClientID     string `toml:"web_api_client_id"`
	WebAPIClientSecret string `toml:"web_api_client_secret"`

	// Observability
	LogFormat string `toml:"log_format"` // console, json
	LogLevel  string `toml:"log_level"`
	SentryDSN string `toml:"sentry_dsn"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		GatewayURL: "http://127.0.0.1:8765",
		UserAgent:  "spotrip",

		GatewayDecodes: true,

		OutputPath: filepath.Join(homeDir, "Music", "spotrip"),
		FFmpegPath: "ffmpeg",
		UseLedger:  true,

		RequestTimeout: 60,
		RateLimitMS:    100,
		RateBurst:      5,

		ArtworkURLTemplate:    "https://i.scdn.co/image/{id}",
		SaveCoverArtInTags:    true,
		CoverArtInTagsResize:  false,
		CoverArtInTagsMaxSize: 1000,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		LogFormat: "console",
		LogLevel:  "info",
	}
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "spotrip.toml"
	}
	return filepath.Join(dir, "spotrip", "config.toml")
}

// Load reads settings from a TOML file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(settings); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides settings from SPOTRIP_* variables. getenv is
// usually os.Getenv.
//
// Recognised variables:
//
//	SPOTRIP_USERNAME, SPOTRIP_PASSWORD, SPOTRIP_GATEWAY_URL, SPOTRIP_OUTPUT,
//	SPOTRIP_FFMPEG, SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SENTRY_DSN
func (s *Settings) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&s.Username, "SPOTRIP_USERNAME")
	set(&s.Password, "SPOTRIP_PASSWORD")
	set(&s.GatewayURL, "SPOTRIP_GATEWAY_URL")
	set(&s.OutputPath, "SPOTRIP_OUTPUT")
	set(&s.FFmpegPath, "SPOTRIP_FFMPEG")
	set(&s.WebAPIClientID, "SPOTIFY_CLIENT_ID")
	set(&s.WebAPIClientSecret, "SPOTIFY_CLIENT_SECRET")
	set(&s.SentryDSN, "SENTRY_DSN")
}

// Validate ensures the settings are usable.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.GatewayURL) == "" {
		return errors.New("gateway_url must be set")
	}
	if strings.TrimSpace(s.OutputPath) == "" && s.HookPath == "" {
		return errors.New("output_path must be set")
	}
	if s.Username == "" {
		return errors.New("username is required. Pass --username or set SPOTRIP_USERNAME")
	}
	if !s.GatewayDecodes && s.DecoderCommand == "" {
		return errors.New("decoder_command must be set when gateway_decodes is false")
	}
	if s.RequestTimeout < 0 || s.TranscodeTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if s.CoverArtInTagsResize && s.CoverArtInTagsMaxSize <= 0 {
		return errors.New("cover_art_in_tags_max_size must be positive when resizing")
	}
	if _, err := audio.ParsePlaylistFormat(s.PlaylistFormat); err != nil {
		return err
	}
	switch s.LogFormat {
	case "console", "json", "":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", s.LogFormat)
	}
	return nil
}

// RequestTimeoutDuration returns the HTTP timeout.
func (s *Settings) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TranscodeTimeoutDuration returns the converter timeout, zero for none.
func (s *Settings) TranscodeTimeoutDuration() time.Duration {
	return time.Duration(s.TranscodeTimeout) * time.Second
}

// RateLimit returns the minimum spacing between gateway requests.
func (s *Settings) RateLimit() time.Duration {
	return time.Duration(s.RateLimitMS) * time.Millisecond
}

// CoverMaxSize returns the artwork bound in pixels, zero to keep the original size.
func (s *Settings) CoverMaxSize() int {
	if !s.CoverArtInTagsResize {
		return 0
	}
	return s.CoverArtInTagsMaxSize
}

// UseWebAPI reports whether collections are resolved through the Web API.
func (s *Settings) UseWebAPI() bool {
	return s.WebAPIClientID != "" && s.WebAPIClientSecret != ""
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return model.DefaultPathConfig(s.OutputPath)
}
