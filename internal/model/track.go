package model

import (
	"fmt"
	"sort"
)

// AudioFormat is the encoding tag of one entry in a track's format table.
type AudioFormat int

// Format names follow the catalog's own spelling.
const (
	FormatUnknown AudioFormat = iota
	OggVorbis96
	OggVorbis160
	OggVorbis320
	MP3_256
	MP3_320
	MP3_160
	MP3_96
	MP3_160Enc
	AAC24
	AAC48
	FLAC
)

var formatNames = map[AudioFormat]string{
	OggVorbis96:  "OGG_VORBIS_96",
	OggVorbis160: "OGG_VORBIS_160",
	OggVorbis320: "OGG_VORBIS_320",
	MP3_256:      "MP3_256",
	MP3_320:      "MP3_320",
	MP3_160:      "MP3_160",
	MP3_96:       "MP3_96",
	MP3_160Enc:   "MP3_160_ENC",
	AAC24:        "AAC_24",
	AAC48:        "AAC_48",
	FLAC:         "FLAC_FLAC",
}

// ParseAudioFormat maps a catalog format name to an AudioFormat.
func ParseAudioFormat(name string) (AudioFormat, error) {
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown audio format %q", name)
}

func (f AudioFormat) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("FORMAT_%d", int(f))
}

// MarshalText encodes the format by name.
func (f AudioFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a format name.
func (f *AudioFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseAudioFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Track is a playable catalog item.
//
// A Track is fetched fresh per identifier and never patched; availability
// fallback swaps the whole record for an alternative's record.
type Track struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`

	// Artists lists contributing artist ids in credit order.
	Artists []ID `json:"artists"`

	// Album is the parent album id.
	Album ID `json:"album"`

	// Restrictions is empty when the track is playable for the session's account.
	Restrictions []string `json:"restrictions"`

	// Alternatives are substitute recordings, in catalog preference order.
	Alternatives []ID `json:"alternatives"`

	// Files maps each available encoding to its content key.
	Files map[AudioFormat]FileID `json:"files"`
}

// Available reports whether the track can be fetched without substitution.
func (t *Track) Available() bool {
	return len(t.Restrictions) == 0
}

// FormatNames returns the track's available formats, sorted by name.
func (t *Track) FormatNames() []string {
	names := make([]string, 0, len(t.Files))
	for f := range t.Files {
		names = append(names, f.String())
	}
	sort.Strings(names)
	return names
}

// Artist is a catalog artist.
type Artist struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Collection is an ordered, named list of track ids (a playlist).
type Collection struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Tracks []ID   `json:"tracks"`
}
