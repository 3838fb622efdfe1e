package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	httpc "github.com/handiism/spotrip/internal/http"
	"github.com/handiism/spotrip/internal/model"
	"github.com/handiism/spotrip/internal/spotify"
)

const (
	defaultRateLimit  = 100 * time.Millisecond // 10 req/sec
	defaultBurstLimit = 5
)

// Config describes how to reach the gateway.
type Config struct {
	// BaseURL is the gateway root, e.g. "http://127.0.0.1:8765".
	BaseURL string

	// Timeout bounds each metadata request. Content streams are bounded
	// only while waiting for response headers; the body may take as long
	// as the transfer needs. Zero means httpc.DefaultTimeout.
	Timeout time.Duration

	// RateLimit is the minimum spacing between requests.
	RateLimit time.Duration
	Burst     int

	UserAgent string
}

// Dialer logs in to the gateway and returns authenticated sessions.
type Dialer struct {
	cfg Config
}

// NewDialer returns a Dialer for cfg, filling in defaults.
func NewDialer(cfg Config) *Dialer {
	if cfg.Timeout == 0 {
		cfg.Timeout = httpc.DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst == 0 {
		cfg.Burst = defaultBurstLimit
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Dialer{cfg: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Dial authenticates with creds. Rejected credentials return an error
// wrapping spotify.ErrAuth.
func (d *Dialer) Dial(ctx context.Context, creds spotify.Credentials) (spotify.Session, error) {
	return d.dial(ctx, creds)
}

func (d *Dialer) dial(ctx context.Context, creds spotify.Credentials) (*Session, error) {
	anon := httpc.NewClient(httpc.WithTimeout(d.cfg.Timeout), httpc.WithUserAgent(d.cfg.UserAgent))

	var resp loginResponse
	err := anon.PostJSON(ctx, d.cfg.BaseURL+"/v1/login", loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, &resp)
	if err != nil {
		var se *httpc.StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %s", spotify.ErrAuth, se.Status)
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: gateway returned an empty token", spotify.ErrAuth)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = d.cfg.Timeout
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: resp.Token, TokenType: "Bearer"})
	authed := &http.Client{Transport: &oauth2.Transport{Source: ts, Base: base}}

	log.WithField("user", creds.Username).Debug("Authenticated with gateway")

	// Client.Timeout would also cover reading a content body, so it stays
	// zero; metadata calls carry a context deadline instead.
	return &Session{
		base:    d.cfg.BaseURL,
		client:  httpc.NewClient(httpc.WithHTTPClient(authed), httpc.WithTimeout(0), httpc.WithUserAgent(d.cfg.UserAgent)),
		timeout: d.cfg.Timeout,
		limiter: rate.NewLimiter(rate.Every(d.cfg.RateLimit), d.cfg.Burst),
	}, nil
}

// Session is a spotify.Session backed by the gateway's JSON API.
type Session struct {
	base    string
	client  *httpc.Client
	timeout time.Duration
	limiter *rate.Limiter
}

var _ spotify.Session = (*Session)(nil)

func (s *Session) getJSON(ctx context.Context, path string, v any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.client.GetJSON(ctx, s.base+path, v)
	if isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%s: %w", path, spotify.ErrNotFound)
	}
	return err
}

func isStatus(err error, code int) bool {
	var se *httpc.StatusError
	return errors.As(err, &se) && se.Code == code
}

// Track fetches a track record.
func (s *Session) Track(ctx context.Context, id model.ID) (*model.Track, error) {
	var t model.Track
	if err := s.getJSON(ctx, "/v1/tracks/"+id.Base62(), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Album fetches an album record.
func (s *Session) Album(ctx context.Context, id model.ID) (*model.Album, error) {
	var a model.Album
	if err := s.getJSON(ctx, "/v1/albums/"+id.Base62(), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Artist fetches an artist record.
func (s *Session) Artist(ctx context.Context, id model.ID) (*model.Artist, error) {
	var a model.Artist
	if err := s.getJSON(ctx, "/v1/artists/"+id.Base62(), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Collection fetches a playlist with its ordered member ids.
func (s *Session) Collection(ctx context.Context, id model.ID) (*model.Collection, error) {
	var c model.Collection
	if err := s.getJSON(ctx, "/v1/playlists/"+id.Base62(), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

type keyResponse struct {
	// Key is base64 on the wire; encoding/json decodes it into bytes.
	Key []byte `json:"key"`
}

// ContentKey requests the key for file. A 404 or an empty key is reported
// as spotify.ErrNoKey.
func (s *Session) ContentKey(ctx context.Context, track model.ID, file model.FileID) ([]byte, error) {
	var resp keyResponse
	err := s.getJSON(ctx, "/v1/keys/"+track.Base62()+"/"+file.Hex(), &resp)
	if errors.Is(err, spotify.ErrNotFound) {
		return nil, spotify.ErrNoKey
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Key) == 0 {
		return nil, spotify.ErrNoKey
	}
	return resp.Key, nil
}

// OpenContent opens the encoded stream of file. Only the wait for response
// headers is bounded by the configured timeout.
func (s *Session) OpenContent(ctx context.Context, file model.FileID, bitrate int) (io.ReadCloser, int64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	q := url.Values{}
	q.Set("bitrate", strconv.Itoa(bitrate))
	body, size, err := s.client.Stream(ctx, s.base+"/v1/files/"+file.Hex()+"?"+q.Encode())
	if isStatus(err, http.StatusNotFound) {
		return nil, 0, fmt.Errorf("file %s: %w", file.Hex(), spotify.ErrNotFound)
	}
	return body, size, err
}
