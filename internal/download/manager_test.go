package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bogem/id3v2"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/handiism/spotrip/internal/audio"
	"github.com/handiism/spotrip/internal/ledger"
	"github.com/handiism/spotrip/internal/model"
	"github.com/handiism/spotrip/internal/spotify"
	"github.com/handiism/spotrip/internal/transfer"
)

var (
	albumID  = model.ID{0xa1}
	artistID = model.ID{0xb1}
	released = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
)

func tid(n byte) model.ID {
	var id model.ID
	id[15] = n
	return id
}

func fid(n byte) model.FileID {
	var f model.FileID
	f[19] = n
	return f
}

func newTrack(n byte, title string) *model.Track {
	return &model.Track{
		ID:      tid(n),
		Name:    title,
		Artists: []model.ID{artistID},
		Album:   albumID,
		Files:   map[model.AudioFormat]model.FileID{model.OggVorbis320: fid(n)},
	}
}

func decodedStream(payload string) []byte {
	return append(make([]byte, audio.HeaderSize), payload...)
}

type fakeCatalog struct {
	tracks      map[model.ID]*model.Track
	albums      map[model.ID]*model.Album
	artists     map[model.ID]*model.Artist
	collections map[model.ID]*model.Collection
	content     map[model.FileID][]byte
	noKey       bool

	trackFetches map[model.ID]int
	opened       int
}

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks:       make(map[model.ID]*model.Track),
		albums:       map[model.ID]*model.Album{albumID: {ID: albumID, Name: "Discovery", Genres: []string{"house", "electronic"}}},
		artists:      map[model.ID]*model.Artist{artistID: {ID: artistID, Name: "Daft Punk"}},
		collections:  make(map[model.ID]*model.Collection),
		content:      make(map[model.FileID][]byte),
		trackFetches: make(map[model.ID]int),
	}
}

func (c *fakeCatalog) addTrack(t *model.Track, withContent bool) {
	c.tracks[t.ID] = t
	if withContent {
		for _, f := range t.Files {
			c.content[f] = decodedStream("audio:" + t.Name)
		}
	}
}

func (c *fakeCatalog) Track(_ context.Context, id model.ID) (*model.Track, error) {
	c.trackFetches[id]++
	if t, ok := c.tracks[id]; ok {
		return t, nil
	}
	return nil, spotify.ErrNotFound
}

func (c *fakeCatalog) Album(_ context.Context, id model.ID) (*model.Album, error) {
	if a, ok := c.albums[id]; ok {
		return a, nil
	}
	return nil, spotify.ErrNotFound
}

func (c *fakeCatalog) Artist(_ context.Context, id model.ID) (*model.Artist, error) {
	if a, ok := c.artists[id]; ok {
		return a, nil
	}
	return nil, spotify.ErrNotFound
}

func (c *fakeCatalog) Collection(_ context.Context, id model.ID) (*model.Collection, error) {
	if coll, ok := c.collections[id]; ok {
		return coll, nil
	}
	return nil, spotify.ErrNotFound
}

func (c *fakeCatalog) ContentKey(context.Context, model.ID, model.FileID) ([]byte, error) {
	if c.noKey {
		return nil, spotify.ErrNoKey
	}
	return []byte{0x01, 0x02}, nil
}

func (c *fakeCatalog) OpenContent(_ context.Context, file model.FileID, _ int) (io.ReadCloser, int64, error) {
	c.opened++
	data, ok := c.content[file]
	if !ok {
		return nil, 0, fmt.Errorf("no content for %s", file)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// copyTranscoder moves the media file to the final path unchanged.
type copyTranscoder struct {
	calls int
	media []byte
	err   error
}

func (c *copyTranscoder) Transcode(_ context.Context, media, final string) error {
	c.calls++
	defer os.Remove(media)
	if c.err != nil {
		return c.err
	}
	data, err := os.ReadFile(media)
	if err != nil {
		return err
	}
	c.media = data
	return os.WriteFile(final, data, 0644)
}

type testEnv struct {
	transcoder *copyTranscoder
}

func newTestManager(t *testing.T, cat *fakeCatalog, root string, mutate func(*Config), opts ...Option) *Manager {
	m, _ := newTestManagerEnv(t, cat, root, mutate, opts...)
	return m
}

func newTestManagerEnv(t *testing.T, cat *fakeCatalog, root string, mutate func(*Config), opts ...Option) (*Manager, *testEnv) {
	t.Helper()
	cfg := Config{
		Paths:          model.DefaultPathConfig(root),
		RunID:          "test-run",
		PlaylistFormat: audio.FormatM3U,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	env := &testEnv{transcoder: &copyTranscoder{}}
	fetcher := transfer.NewFetcher(cat, nil, transfer.Options{})
	base := []Option{
		WithTranscoder(env.transcoder),
		WithClock(func() time.Time { return released }),
	}
	return NewManager(cat, fetcher, cfg, nil, append(base, opts...)...), env
}

func tracks(ids ...model.ID) iter.Seq[model.CatalogID] {
	items := make([]model.CatalogID, len(ids))
	for i, id := range ids {
		items[i] = model.CatalogID{Kind: model.KindTrack, ID: id}
	}
	return slices.Values(items)
}

func collection(id model.ID) iter.Seq[model.CatalogID] {
	return slices.Values([]model.CatalogID{{Kind: model.KindCollection, ID: id}})
}

func openTag(t *testing.T, path string) *id3v2.Tag {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("Open %s: %v", path, err)
	}
	t.Cleanup(func() { tag.Close() })
	return tag
}

func commentTexts(tag *id3v2.Tag) []string {
	var out []string
	for _, f := range tag.GetFrames(tag.CommonID("Comments")) {
		if cf, ok := f.(id3v2.CommentFrame); ok {
			out = append(out, cf.Text)
		}
	}
	return out
}

func pictureCount(tag *id3v2.Tag) int {
	return len(tag.GetFrames(tag.CommonID("Attached picture")))
}

func TestRun_SingleTrack(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "One More Time"), true)
	m, env := newTestManagerEnv(t, cat, root, nil)

	results, err := m.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Status != StatusDownloaded {
		t.Fatalf("results = %+v", results)
	}

	final := filepath.Join(root, "Daft Punk - One More Time.mp3")
	if results[0].Path != final {
		t.Errorf("Path = %q, want %q", results[0].Path, final)
	}
	if _, err := os.Stat(filepath.Join(root, "Daft Punk - One More Time.ogg")); !os.IsNotExist(err) {
		t.Error("intermediate file should not remain")
	}
	if env.transcoder.calls != 1 {
		t.Errorf("transcoder called %d times", env.transcoder.calls)
	}

	tag := openTag(t, final)
	if tag.Title() != "One More Time" || tag.Album() != "Discovery" || tag.Artist() != "Daft Punk" {
		t.Errorf("tag = %q / %q / %q", tag.Title(), tag.Album(), tag.Artist())
	}
	if tag.Genre() != "house, electronic" {
		t.Errorf("Genre = %q, want album genres", tag.Genre())
	}
	if got := commentTexts(tag); len(got) != 1 || got[0] != "Genres: house, electronic" {
		t.Errorf("comments = %q", got)
	}
	if got := tag.GetTextFrame("TDRL").Text; got != "2025-06-01T12:30:00" {
		t.Errorf("TDRL = %q", got)
	}
	if pictureCount(tag) != 0 {
		t.Error("artwork disabled, no picture expected")
	}

	if got := string(env.transcoder.media); got != "audio:One More Time" {
		t.Errorf("intermediate file held %q, want the header-stripped stream", got)
	}
}

func TestRun_Idempotent(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Digital Love"), true)

	first, _ := newTestManagerEnv(t, cat, root, nil)
	if _, err := first.Run(context.Background(), tracks(tid(1))); err != nil {
		t.Fatal(err)
	}
	final := filepath.Join(root, "Daft Punk - Digital Love.mp3")
	before, err := os.ReadFile(final)
	if err != nil {
		t.Fatal(err)
	}
	opened := cat.opened

	second, env := newTestManagerEnv(t, cat, root, nil)
	results, err := second.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusSkipped {
		t.Errorf("Status = %v, want skipped", results[0].Status)
	}
	if cat.opened != opened || env.transcoder.calls != 0 {
		t.Error("second run must not transfer or transcode")
	}
	after, _ := os.ReadFile(final)
	if !bytes.Equal(before, after) {
		t.Error("second run modified the file")
	}

	// With refresh only the tags change.
	cat.albums[albumID].Name = "Discovery (Remastered)"
	third, env := newTestManagerEnv(t, cat, root, func(c *Config) { c.Refresh = true })
	results, err = third.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusRetagged {
		t.Errorf("Status = %v, want retagged", results[0].Status)
	}
	if cat.opened != opened || env.transcoder.calls != 0 {
		t.Error("refresh must not transfer or transcode")
	}
	if tag := openTag(t, final); tag.Album() != "Discovery (Remastered)" {
		t.Errorf("Album = %q after refresh", tag.Album())
	}
}

func TestRun_CollectionContinuesPastFailure(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Aerodynamic"), true)
	broken := newTrack(2, "Crescendolls")
	broken.Files = map[model.AudioFormat]model.FileID{model.MP3_96: fid(2)}
	cat.addTrack(broken, true)
	cat.addTrack(newTrack(3, "Nightvision"), true)

	collID := model.ID{0xc1}
	cat.collections[collID] = &model.Collection{ID: collID, Name: "Mix/Tape", Tracks: []model.ID{tid(1), tid(2), tid(3)}}

	var seen []Status
	fetcher := transfer.NewFetcher(cat, nil, transfer.Options{})
	m := NewManager(cat, fetcher, Config{
		Paths:          model.DefaultPathConfig(root),
		CreatePlaylist: true,
		PlaylistFormat: audio.FormatM3U,
		M3UExtended:    true,
	}, func(r Result) { seen = append(seen, r.Status) }, WithTranscoder(&copyTranscoder{}))

	results, err := m.Run(context.Background(), collection(collID))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []Status{StatusDownloaded, StatusFailed, StatusDownloaded}
	if !slices.Equal(seen, want) {
		t.Fatalf("statuses = %v, want %v", seen, want)
	}
	if !errors.Is(results[1].Err, ErrNoFormat) || results[1].Stage != StageFormat {
		t.Errorf("member 2 = %+v", results[1])
	}

	dir := filepath.Join(root, "Mix-Tape")
	for _, name := range []string{"Daft Punk - Aerodynamic.mp3", "Daft Punk - Nightvision.mp3"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if tag := openTag(t, filepath.Join(dir, "Daft Punk - Aerodynamic.mp3")); tag.Genre() != "Mix/Tape" {
		t.Errorf("Genre = %q, want collection name", tag.Genre())
	} else if got := commentTexts(tag); len(got) != 1 || got[0] != "Collection: Mix/Tape, Genres: house, electronic" {
		t.Errorf("comments = %q", got)
	}

	playlist, err := os.ReadFile(filepath.Join(dir, "Mix-Tape.m3u"))
	if err != nil {
		t.Fatalf("playlist: %v", err)
	}
	content := string(playlist)
	if !strings.Contains(content, "Daft Punk - Aerodynamic.mp3") || !strings.Contains(content, "Daft Punk - Nightvision.mp3") {
		t.Errorf("playlist = %q", content)
	}
	if strings.Contains(content, "Crescendolls") {
		t.Error("failed member must not be listed")
	}
}

func TestRun_UnknownCollection(t *testing.T) {
	m := newTestManager(t, newCatalog(), t.TempDir(), nil)
	results, err := m.Run(context.Background(), collection(model.ID{0xee}))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Stage != StageCollection || !errors.Is(results[0].Err, spotify.ErrNotFound) {
		t.Errorf("results = %+v", results)
	}
}

func TestRun_DegradedBitrateComment(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	track := newTrack(1, "Voyager")
	track.Files = map[model.AudioFormat]model.FileID{model.OggVorbis160: fid(1)}
	cat.addTrack(track, true)
	cat.albums[albumID].Genres = nil

	m := newTestManager(t, cat, root, nil)
	if _, err := m.Run(context.Background(), tracks(tid(1))); err != nil {
		t.Fatal(err)
	}

	tag := openTag(t, filepath.Join(root, "Daft Punk - Voyager.mp3"))
	got := commentTexts(tag)
	if len(got) != 1 || got[0] != "Bitrate: 160 kbps (320 kbps unavailable)" {
		t.Errorf("comments = %q", got)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRun_Artwork(t *testing.T) {
	cover := pngBytes(t)
	var (
		mu        sync.Mutex
		requested []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/image/"+fid(0x10).Hex() {
			w.Write(cover)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tests := []struct {
		name      string
		covers    []model.Cover
		wantPic   bool
		wantFetch string
		wantWarn  bool
	}{
		{
			name:      "smallest cover embedded",
			covers:    []model.Cover{{FileID: fid(0x30), Size: model.CoverLarge}, {FileID: fid(0x10), Size: model.CoverSmall}},
			wantPic:   true,
			wantFetch: "/image/" + fid(0x10).Hex(),
		},
		{
			name:      "fetch failure omits artwork",
			covers:    []model.Cover{{FileID: fid(0x20), Size: model.CoverSmall}},
			wantFetch: "/image/" + fid(0x20).Hex(),
			wantWarn:  true,
		},
		{
			name: "no covers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mu.Lock()
			requested = nil
			mu.Unlock()
			root := t.TempDir()
			cat := newCatalog()
			cat.albums[albumID].Covers = tt.covers
			cat.addTrack(newTrack(1, "Veridis Quo"), true)
			hook := logtest.NewGlobal()
			t.Cleanup(hook.Reset)

			m := newTestManager(t, cat, root, func(c *Config) {
				c.SaveArtwork = true
				c.ArtworkURL = srv.URL + "/image/{id}"
			})
			results, err := m.Run(context.Background(), tracks(tid(1)))
			if err != nil {
				t.Fatal(err)
			}
			if results[0].Status != StatusDownloaded {
				t.Fatalf("artwork trouble must not fail the track: %+v", results[0])
			}

			tag := openTag(t, results[0].Path)
			if got := pictureCount(tag) == 1; got != tt.wantPic {
				t.Errorf("picture present = %v, want %v", got, tt.wantPic)
			}
			warned := false
			for _, e := range hook.AllEntries() {
				if e.Level == log.WarnLevel && strings.Contains(e.Message, "omitting artwork") {
					warned = true
				}
			}
			if warned != tt.wantWarn {
				t.Errorf("artwork warning logged = %v, want %v", warned, tt.wantWarn)
			}
			mu.Lock()
			defer mu.Unlock()
			if tt.wantFetch == "" && len(requested) != 0 {
				t.Errorf("unexpected requests %v", requested)
			}
			if tt.wantFetch != "" && (len(requested) != 1 || requested[0] != tt.wantFetch) {
				t.Errorf("requests = %v, want %s", requested, tt.wantFetch)
			}
		})
	}
}

func TestRun_CollisionGetsSuffix(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Robot Rock"), true)
	cat.addTrack(newTrack(2, "Robot Rock"), true)

	l, err := ledger.Open(filepath.Join(root, ledger.FileName))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	m := newTestManager(t, cat, root, nil, WithLedger(l))
	results, err := m.Run(context.Background(), tracks(tid(1), tid(2)))
	if err != nil {
		t.Fatal(err)
	}

	plain := filepath.Join(root, "Daft Punk - Robot Rock.mp3")
	suffixed := filepath.Join(root, "Daft Punk - Robot Rock ["+tid(2).Base62()+"].mp3")
	if results[0].Path != plain || results[1].Path != suffixed {
		t.Fatalf("paths = %q, %q", results[0].Path, results[1].Path)
	}
	for _, p := range []string{plain, suffixed} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s", p)
		}
	}

	// A fresh run that only sees the second track still finds its own file.
	again := newTestManager(t, cat, root, nil, WithLedger(l))
	results, err = again.Run(context.Background(), tracks(tid(2)))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Path != suffixed || results[0].Status != StatusSkipped {
		t.Errorf("rerun = %+v", results[0])
	}

	history, err := l.History(context.Background(), tid(2), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].Status != "skipped" || history[1].Status != "downloaded" {
		t.Errorf("history = %+v", history)
	}
}

func TestRun_RenamedTrackReusesEarlierFile(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Veridis Quo"), true)

	l, err := ledger.Open(filepath.Join(root, ledger.FileName))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	first := newTestManager(t, cat, root, nil, WithLedger(l))
	if _, err := first.Run(context.Background(), tracks(tid(1))); err != nil {
		t.Fatal(err)
	}
	original := filepath.Join(root, "Daft Punk - Veridis Quo.mp3")
	opened := cat.opened

	cat.tracks[tid(1)].Name = "Veridis Quo (Remastered)"
	second, env := newTestManagerEnv(t, cat, root, nil, WithLedger(l))
	results, err := second.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusSkipped || results[0].Path != original {
		t.Errorf("result = %+v, want skipped at %s", results[0], original)
	}
	if cat.opened != opened || env.transcoder.calls != 0 {
		t.Error("renamed track must not be downloaded again")
	}
	if _, err := os.Stat(filepath.Join(root, "Daft Punk - Veridis Quo (Remastered).mp3")); !os.IsNotExist(err) {
		t.Error("a second copy was written under the new name")
	}

	// Once the earlier file is gone the new name is used.
	if err := os.Remove(original); err != nil {
		t.Fatal(err)
	}
	third := newTestManager(t, cat, root, nil, WithLedger(l))
	results, err = third.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	renamed := filepath.Join(root, "Daft Punk - Veridis Quo (Remastered).mp3")
	if results[0].Status != StatusDownloaded || results[0].Path != renamed {
		t.Errorf("result = %+v, want downloaded at %s", results[0], renamed)
	}
}

func TestRun_LogsIntermediateCleanupFailure(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Contact"), true)

	// A non-empty directory where the intermediate file belongs makes both
	// the write and the cleanup fail.
	blocker := filepath.Join(root, "Daft Punk - Contact.ogg")
	if err := os.MkdirAll(filepath.Join(blocker, "keep"), 0755); err != nil {
		t.Fatal(err)
	}
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	m := newTestManager(t, cat, root, nil)
	results, err := m.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusFailed || results[0].Stage != StageTranscode {
		t.Fatalf("result = %+v", results[0])
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel && strings.Contains(e.Message, "Failed to remove "+blocker) {
			warned = true
		}
	}
	if !warned {
		t.Error("cleanup failure was not logged")
	}
}

func TestWritePlaylist_HonoursContext(t *testing.T) {
	root := t.TempDir()
	m := newTestManager(t, newCatalog(), root, nil)
	entries := []audio.PlaylistEntry{{Path: filepath.Join(root, "Road Trip", "A - B.mp3"), Artist: "A", Title: "B"}}
	if err := os.MkdirAll(filepath.Join(root, "Road Trip"), 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "Road Trip", "Road Trip.m3u")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.writePlaylist(ctx, "Road Trip", entries)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("cancelled run wrote %s", path)
	}

	m.writePlaylist(context.Background(), "Road Trip", entries)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "A - B.mp3\n" {
		t.Errorf("playlist = %q", data)
	}
}

func TestRun_TranscodeFailure(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Harder Better"), true)

	m, env := newTestManagerEnv(t, cat, root, nil)
	env.transcoder.err = fmt.Errorf("%w: exit status 1", audio.ErrTranscode)

	results, err := m.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusFailed || results[0].Stage != StageTranscode || !errors.Is(results[0].Err, audio.ErrTranscode) {
		t.Errorf("result = %+v", results[0])
	}
	if _, err := os.Stat(filepath.Join(root, "Daft Punk - Harder Better.ogg")); !os.IsNotExist(err) {
		t.Error("intermediate file should be removed")
	}
}

func TestRun_MissingKey(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.noKey = true
	cat.addTrack(newTrack(1, "Face to Face"), true)

	m := newTestManager(t, cat, root, nil)
	results, err := m.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(results[0].Err, transfer.ErrUnauthorizedContent) || results[0].Stage != StageTransfer {
		t.Errorf("result = %+v", results[0])
	}
	if cat.opened != 0 {
		t.Error("stream must not be opened without a key")
	}
}

func TestRun_ShortStreamIsDecodeError(t *testing.T) {
	root := t.TempDir()
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Short Circuit"), false)
	cat.content[fid(1)] = []byte("tiny")

	m := newTestManager(t, cat, root, nil)
	results, err := m.Run(context.Background(), tracks(tid(1)))
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(results[0].Err, transfer.ErrDecode) || !errors.Is(results[0].Err, audio.ErrShortStream) {
		t.Errorf("error = %v", results[0].Err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cat := newCatalog()
	cat.addTrack(newTrack(1, "Too Long"), true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager(t, cat, t.TempDir(), nil)
	results, err := m.Run(ctx, tracks(tid(1)))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(results) != 0 || cat.trackFetches[tid(1)] != 0 {
		t.Error("nothing should run after cancellation")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		{Status: StatusDownloaded}, {Status: StatusDownloaded}, {Status: StatusSkipped},
		{Status: StatusFailed}, {Status: StatusRetagged}, {Status: StatusHooked},
	})
	if s != (Summary{Downloaded: 2, Skipped: 1, Failed: 1, Retagged: 1, Hooked: 1}) {
		t.Errorf("Summarize() = %+v", s)
	}
}
