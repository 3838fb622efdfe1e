package download

import (
	"errors"
	"sort"
	"strings"

	"github.com/handiism/spotrip/internal/model"
)

// ErrNoFormat is matched by a FormatError.
var ErrNoFormat = errors.New("no supported audio format")

// preferredBitrate is the top of the format ladder.
const preferredBitrate = 320

// ladder lists acceptable encodings, best first.
var ladder = []struct {
	format  model.AudioFormat
	bitrate int
}{
	{model.OggVorbis320, preferredBitrate},
	{model.OggVorbis160, 160},
}

// Selection is the content file chosen for a track.
type Selection struct {
	Format  model.AudioFormat
	FileID  model.FileID
	Bitrate int

	// Degraded is set when the preferred bitrate was not available.
	Degraded bool
}

// FormatError is returned when no rung of the ladder is present.
type FormatError struct {
	Available []model.AudioFormat
}

func (e *FormatError) Error() string {
	names := make([]string, len(e.Available))
	for i, f := range e.Available {
		names[i] = f.String()
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ErrNoFormat.Error() + " (none available)"
	}
	return ErrNoFormat.Error() + " (available: " + strings.Join(names, ", ") + ")"
}

// Is makes errors.Is(err, ErrNoFormat) hold.
func (e *FormatError) Is(target error) bool {
	return target == ErrNoFormat
}

// SelectFormat picks the best acceptable encoding from a track's format table.
func SelectFormat(files map[model.AudioFormat]model.FileID) (Selection, error) {
	for _, rung := range ladder {
		if id, ok := files[rung.format]; ok {
			return Selection{
				Format:   rung.format,
				FileID:   id,
				Bitrate:  rung.bitrate,
				Degraded: rung.bitrate != preferredBitrate,
			}, nil
		}
	}

	available := make([]model.AudioFormat, 0, len(files))
	for f := range files {
		available = append(available, f)
	}
	sort.Slice(available, func(i, j int) bool {
		return available[i].String() < available[j].String()
	})
	return Selection{}, &FormatError{Available: available}
}
