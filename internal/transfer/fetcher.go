package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/handiism/spotrip/internal/model"
	"github.com/handiism/spotrip/internal/spotify"
)

var (
	// ErrUnauthorizedContent is returned when the service withholds the
	// content key and keyless decoding is not allowed.
	ErrUnauthorizedContent = errors.New("content key withheld")

	// ErrTransfer wraps failures opening or reading the content stream.
	ErrTransfer = errors.New("transfer failed")

	// ErrDecode wraps failures of the decoder.
	ErrDecode = errors.New("decode failed")
)

// workerSlot bounds transfer workers process-wide to one at a time.
var workerSlot = semaphore.NewWeighted(1)

const barTemplate = `{{ string . "prefix" }} {{ bar . }} {{ percent . }} | {{ speed . "%s/s" }} | ETA {{ rtime . "%s" }}`

// Request names one encoded file to fetch.
type Request struct {
	Track   model.ID
	File    model.FileID
	Bitrate int

	// Label prefixes the progress bar, usually the track name.
	Label string
}

// Options control a Fetcher.
type Options struct {
	// AllowKeyless decodes with an empty key instead of failing when the
	// service withholds the content key.
	AllowKeyless bool

	// Progress enables a progress bar on ProgressWriter.
	Progress       bool
	ProgressWriter io.Writer
}

// Fetcher obtains the content key, transfers the encoded stream and
// decodes it into memory.
//
// Example:
//
//	f := transfer.NewFetcher(session, transfer.Passthrough{}, transfer.Options{})
//	data, err := f.Fetch(ctx, transfer.Request{Track: id, File: file, Bitrate: 320})
type Fetcher struct {
	session spotify.Session
	decoder Decoder
	opts    Options
	slot    *semaphore.Weighted
}

// NewFetcher creates a Fetcher. A nil decoder means Passthrough.
func NewFetcher(session spotify.Session, decoder Decoder, opts Options) *Fetcher {
	if decoder == nil {
		decoder = Passthrough{}
	}
	if opts.ProgressWriter == nil {
		opts.ProgressWriter = os.Stderr
	}
	return &Fetcher{session: session, decoder: decoder, opts: opts, slot: workerSlot}
}

type readResult struct {
	data []byte
	err  error
}

// Fetch returns the fully decoded bytes of req.
//
// The stream is read by a single worker goroutine; Fetch waits on its
// result or on ctx, whichever comes first.
func (f *Fetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	entry := log.WithFields(log.Fields{"track": req.Track.Base62(), "file": req.File.Hex()})

	key, err := f.session.ContentKey(ctx, req.Track, req.File)
	switch {
	case errors.Is(err, spotify.ErrNoKey) && f.opts.AllowKeyless:
		entry.Warn("No content key available, decoding without one")
		key = nil
	case errors.Is(err, spotify.ErrNoKey):
		return nil, fmt.Errorf("track %s: %w", req.Track.Base62(), ErrUnauthorizedContent)
	case err != nil:
		return nil, fmt.Errorf("content key: %w", err)
	}

	raw, err := f.transfer(ctx, req)
	if err != nil {
		return nil, err
	}
	entry.Debugf("Transferred %d bytes", len(raw))

	decoded, err := f.decoder.Decode(ctx, raw, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return decoded, nil
}

func (f *Fetcher) transfer(ctx context.Context, req Request) ([]byte, error) {
	if err := f.slot.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	body, size, err := f.session.OpenContent(ctx, req.File, req.Bitrate)
	if err != nil {
		f.slot.Release(1)
		return nil, fmt.Errorf("%w: open stream: %v", ErrTransfer, err)
	}

	var r io.Reader = body
	var bar *pb.ProgressBar
	if f.opts.Progress {
		bar = pb.New64(size)
		bar.SetWriter(f.opts.ProgressWriter)
		bar.SetTemplateString(barTemplate)
		bar.Set("prefix", fmt.Sprintf("Downloading %-40s: ", truncate(req.Label, 40)))
		if size <= 0 {
			bar.Set("indeterminate", true)
		}
		bar.Start()
		r = bar.NewProxyReader(body)
	}

	done := make(chan readResult, 1)
	go func() {
		defer f.slot.Release(1)
		defer body.Close()
		data, err := io.ReadAll(r)
		if bar != nil {
			bar.Finish()
		}
		done <- readResult{data: data, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransfer, res.err)
		}
		return res.data, nil
	case <-ctx.Done():
		// Unblocks the worker's read; it releases the slot when it exits.
		body.Close()
		return nil, ctx.Err()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
