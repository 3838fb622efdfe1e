package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	ioutils "github.com/handiism/spotrip/internal/io"
)

// HeaderSize is the length of the container header the decoded stream
// starts with. It is not part of the playable audio.
const HeaderSize = 0xa7

var (
	// ErrShortStream is returned when decoded data is shorter than its header.
	ErrShortStream = errors.New("decoded stream shorter than header")

	// ErrTranscode is returned when the converter fails or produces no file.
	ErrTranscode = errors.New("transcode failed")
)

var commandContext = exec.CommandContext

// StripHeader returns the playable part of a decoded stream.
func StripHeader(decoded []byte) ([]byte, error) {
	if len(decoded) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortStream, len(decoded))
	}
	return decoded[HeaderSize:], nil
}

// CheckFFmpeg reports whether the converter binary can be found.
func CheckFFmpeg(binary string) error {
	_, err := exec.LookPath(binary)
	return err
}

// Transcoder converts the intermediate media file to MP3 with ffmpeg.
type Transcoder struct {
	binary  string
	timeout time.Duration
}

// NewTranscoder returns a Transcoder running binary. A zero timeout
// leaves the conversion unbounded apart from ctx.
func NewTranscoder(binary string, timeout time.Duration) *Transcoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{binary: binary, timeout: timeout}
}

// Args returns the converter arguments for media -> final.
func (t *Transcoder) Args(media, final string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", media,
		"-map_metadata", "0:s:0",
		"-id3v2_version", "3",
		"-codec:a", "libmp3lame",
		"-qscale:a", "1",
		final,
	}
}

// Transcode converts media into final.
//
// The intermediate file is removed whatever the outcome. On failure any
// partial final file is removed too and the error wraps ErrTranscode
// with the converter's stderr.
func (t *Transcoder) Transcode(ctx context.Context, media, final string) error {
	defer func() {
		if err := ioutils.RemoveIfExists(media); err != nil {
			log.WithError(err).Warnf("Failed to remove intermediate file %s", media)
		}
	}()

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := commandContext(ctx, t.binary, t.Args(media, final)...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.discard(final)
		msg := strings.TrimSpace(stderr.String())
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrTranscode, ctx.Err())
		}
		return fmt.Errorf("%w: %v: %s", ErrTranscode, err, msg)
	}

	ok, err := ioutils.FileExists(final)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscode, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s was not created", ErrTranscode, final)
	}
	return nil
}

func (t *Transcoder) discard(final string) {
	if err := ioutils.RemoveIfExists(final); err != nil {
		log.WithError(err).Warnf("Failed to remove partial file %s", final)
	}
}
