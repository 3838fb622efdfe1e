package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/spotrip/internal/audio"
	"github.com/handiism/spotrip/internal/http"
	ioutils "github.com/handiism/spotrip/internal/io"
	"github.com/handiism/spotrip/internal/ledger"
	"github.com/handiism/spotrip/internal/model"
	"github.com/handiism/spotrip/internal/report"
	"github.com/handiism/spotrip/internal/spotify"
	"github.com/handiism/spotrip/internal/transfer"
)

// Status is the outcome of one item.
type Status int

const (
	StatusFailed Status = iota
	StatusSkipped
	StatusRetagged
	StatusDownloaded
	StatusHooked
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusRetagged:
		return "retagged"
	case StatusDownloaded:
		return "downloaded"
	case StatusHooked:
		return "hooked"
	default:
		return "failed"
	}
}

// Pipeline stages a failure is attributed to.
const (
	StageResolve    = "resolve"
	StageFormat     = "format"
	StagePlace      = "place"
	StageTransfer   = "transfer"
	StageTranscode  = "transcode"
	StageHook       = "hook"
	StageCollection = "collection"
)

// Result is the outcome of one input item or collection member.
type Result struct {
	// ID is the requested id; Resolved differs when an alternative was used.
	ID       model.ID
	Resolved model.ID
	Kind     model.Kind

	// Collection is the enclosing collection name, empty for single tracks.
	Collection string

	Artist string
	Title  string
	Path   string
	Status Status

	// Stage and Err are set when Status is StatusFailed.
	Stage string
	Err   error
}

func (r Result) failed(stage string, err error) Result {
	r.Status = StatusFailed
	r.Stage = stage
	r.Err = err
	return r
}

// Summary counts results by status.
type Summary struct {
	Downloaded int
	Retagged   int
	Skipped    int
	Hooked     int
	Failed     int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusDownloaded:
			s.Downloaded++
		case StatusRetagged:
			s.Retagged++
		case StatusSkipped:
			s.Skipped++
		case StatusHooked:
			s.Hooked++
		default:
			s.Failed++
		}
	}
	return s
}

// Fetcher returns the decoded bytes of one content file.
type Fetcher interface {
	Fetch(ctx context.Context, req transfer.Request) ([]byte, error)
}

// Transcoder converts the intermediate file into the final file.
type Transcoder interface {
	Transcode(ctx context.Context, media, final string) error
}

// TagWriter replaces the tag block of a final file.
type TagWriter interface {
	Write(path string, tags *model.Tags) error
}

// Config holds pipeline settings.
type Config struct {
	Paths *model.PathConfig

	// Refresh rewrites tags of files that already exist.
	Refresh bool

	// HookPath, when set, replaces file output with the helper program.
	HookPath   string
	HookOutput io.Writer

	RunID string

	SaveArtwork  bool
	ArtworkURL   string
	CoverMaxSize int

	CreatePlaylist bool
	PlaylistFormat audio.PlaylistFormat
	M3UExtended    bool

	FFmpegPath       string
	TranscodeTimeout time.Duration
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLedger persists path claims and outcomes.
func WithLedger(l *ledger.Ledger) Option {
	return func(m *Manager) { m.ledger = l }
}

// WithReporter forwards failures to an error reporter.
func WithReporter(r *report.Reporter) Option {
	return func(m *Manager) { m.reporter = r }
}

// WithCollectionSource resolves collections somewhere other than the session.
func WithCollectionSource(src spotify.CollectionSource) Option {
	return func(m *Manager) { m.collections = src }
}

// WithTranscoder replaces the ffmpeg transcoder.
func WithTranscoder(t Transcoder) Option {
	return func(m *Manager) { m.transcoder = t }
}

// WithTagWriter replaces the ID3 writer.
func WithTagWriter(t TagWriter) Option {
	return func(m *Manager) { m.tagger = t }
}

// WithHTTPClient sets the client used for artwork.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.http = c }
}

// WithClock overrides the time written as the release date.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager runs the per-item pipeline over a stream of catalog ids.
type Manager struct {
	cfg Config

	session     spotify.Session
	collections spotify.CollectionSource
	fetcher     Fetcher
	transcoder  Transcoder
	tagger      TagWriter
	http        *http.Client
	images      *ioutils.ImageService
	playlist    *audio.PlaylistCreator
	ledger      *ledger.Ledger
	reporter    *report.Reporter
	now         func() time.Time

	onResult func(Result)
	results  []Result

	claims map[string]model.ID
	mu     sync.Mutex
}

// NewManager creates a Manager. onResult, if non-nil, is called once per
// finished item in input order.
func NewManager(session spotify.Session, fetcher Fetcher, cfg Config, onResult func(Result), opts ...Option) *Manager {
	if cfg.Paths == nil {
		cfg.Paths = model.DefaultPathConfig(".")
	}
	if cfg.HookOutput == nil {
		cfg.HookOutput = os.Stdout
	}

	m := &Manager{
		cfg:         cfg,
		session:     session,
		collections: session,
		fetcher:     fetcher,
		transcoder:  audio.NewTranscoder(cfg.FFmpegPath, cfg.TranscodeTimeout),
		tagger:      audio.NewTagger(),
		http:        http.NewClient(),
		images:      ioutils.NewImageService(),
		playlist:    audio.NewPlaylistCreator(cfg.PlaylistFormat, cfg.M3UExtended),
		reporter:    &report.Reporter{},
		now:         time.Now,
		onResult:    onResult,
		claims:      make(map[string]model.ID),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run processes ids in order until the sequence ends or ctx is cancelled.
// Per-item failures are captured in the results; the error is non-nil
// only when the run was interrupted.
func (m *Manager) Run(ctx context.Context, ids iter.Seq[model.CatalogID]) ([]Result, error) {
	for id := range ids {
		if ctx.Err() != nil {
			break
		}
		switch id.Kind {
		case model.KindCollection:
			m.processCollection(ctx, id.ID)
		default:
			m.emit(ctx, m.processTrack(ctx, id.ID, ""))
		}
	}
	return m.results, ctx.Err()
}

// processTrack runs resolve, select, place, transfer, transcode and tag
// for one track. collection is empty in single-track mode.
func (m *Manager) processTrack(ctx context.Context, id model.ID, collection string) Result {
	res := Result{ID: id, Kind: model.KindTrack, Collection: collection}
	entry := log.WithField("track", id.Base62())

	track, err := m.resolveAvailable(ctx, id)
	if err != nil {
		return res.failed(StageResolve, err)
	}
	res.Resolved = track.ID

	album, err := m.session.Album(ctx, track.Album)
	if err != nil {
		return res.failed(StageResolve, fmt.Errorf("fetch album %s: %w", track.Album, err))
	}
	artists, err := m.artistNames(ctx, track)
	if err != nil {
		return res.failed(StageResolve, err)
	}
	res.Artist = strings.Join(artists, ", ")
	res.Title = track.Name

	sel, err := SelectFormat(track.Files)
	if err != nil {
		entry.WithField("available", strings.Join(track.FormatNames(), ", ")).Error("No supported format")
		return res.failed(StageFormat, err)
	}
	if sel.Degraded {
		entry.Warnf("Preferred bitrate unavailable, using %s", sel.Format)
	}

	if m.cfg.HookPath != "" {
		playable, err := m.fetchAudio(ctx, track, sel, res.Artist+" - "+res.Title)
		if err != nil {
			return res.failed(StageTransfer, err)
		}
		if err := m.runHook(ctx, id, track, album, artists, playable); err != nil {
			return res.failed(StageHook, err)
		}
		res.Status = StatusHooked
		return res
	}

	out, err := m.place(ctx, model.NewOutput(collection, artists, track.Name, m.cfg.Paths), track.ID)
	if err != nil {
		return res.failed(StagePlace, err)
	}
	res.Path = out.FinalPath

	exists, err := ioutils.FileExists(out.FinalPath)
	if err != nil {
		return res.failed(StagePlace, fmt.Errorf("check %s: %w", out.FinalPath, err))
	}
	if exists {
		if !m.cfg.Refresh {
			entry.Infof("%s already present", out.FinalPath)
			res.Status = StatusSkipped
			return res
		}
		m.writeTags(out.FinalPath, m.synthesize(ctx, track, album, artists, collection, sel))
		res.Status = StatusRetagged
		return res
	}

	if err := ioutils.EnsureDir(out.Dir); err != nil {
		return res.failed(StagePlace, fmt.Errorf("create %s: %w", out.Dir, err))
	}

	playable, err := m.fetchAudio(ctx, track, sel, res.Artist+" - "+res.Title)
	if err != nil {
		return res.failed(StageTransfer, err)
	}
	if err := ioutils.WriteFile(ctx, out.MediaPath, playable); err != nil {
		if rmErr := ioutils.RemoveIfExists(out.MediaPath); rmErr != nil {
			entry.WithError(rmErr).Warnf("Failed to remove %s", out.MediaPath)
		}
		return res.failed(StageTranscode, fmt.Errorf("write %s: %w", out.MediaPath, err))
	}
	if err := m.transcoder.Transcode(ctx, out.MediaPath, out.FinalPath); err != nil {
		return res.failed(StageTranscode, err)
	}

	m.writeTags(out.FinalPath, m.synthesize(ctx, track, album, artists, collection, sel))
	res.Status = StatusDownloaded
	return res
}

func (m *Manager) artistNames(ctx context.Context, track *model.Track) ([]string, error) {
	names := make([]string, 0, len(track.Artists))
	for _, id := range track.Artists {
		artist, err := m.session.Artist(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch artist %s: %w", id, err)
		}
		names = append(names, artist.Name)
	}
	return names, nil
}

// fetchAudio transfers and decodes the selected file and strips the
// container header.
func (m *Manager) fetchAudio(ctx context.Context, track *model.Track, sel Selection, label string) ([]byte, error) {
	decoded, err := m.fetcher.Fetch(ctx, transfer.Request{
		Track:   track.ID,
		File:    sel.FileID,
		Bitrate: sel.Bitrate,
		Label:   label,
	})
	if err != nil {
		return nil, err
	}
	playable, err := audio.StripHeader(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transfer.ErrDecode, err)
	}
	return playable, nil
}

// emit logs, records and reports one result.
func (m *Manager) emit(ctx context.Context, res Result) {
	entry := log.WithField("track", res.ID.Base62())
	if res.Collection != "" {
		entry = entry.WithField("collection", res.Collection)
	}

	errText := ""
	if res.Status == StatusFailed {
		errText = res.Err.Error()
		if errors.Is(res.Err, context.Canceled) {
			entry.Warn("Interrupted")
		} else {
			entry.WithField("stage", res.Stage).WithError(res.Err).Error("Track failed")
			m.reporter.TrackFailure(res.Err, m.cfg.RunID, res.ID.Base62(), res.Stage)
		}
	}

	if m.ledger != nil {
		err := m.ledger.Record(context.WithoutCancel(ctx), ledger.Entry{
			RunID:  m.cfg.RunID,
			Track:  res.ID,
			Status: res.Status.String(),
			Path:   res.Path,
			Error:  errText,
			At:     m.now(),
		})
		if err != nil {
			entry.WithError(err).Warn("Failed to record outcome")
		}
	}

	m.results = append(m.results, res)
	if m.onResult != nil {
		m.onResult(res)
	}
}
