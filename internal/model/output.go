package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/spotrip/internal/io"
)

// PathConfig holds output layout settings.
//
// Example:
//
//	cfg := &PathConfig{
//	    Root:           "/music",
//	    MediaExtension: ".ogg",
//	    FinalExtension: ".mp3",
//	}
type PathConfig struct {
	// Root is the base output directory.
	Root string

	// MediaExtension is the extension of the intermediate decoded file, including the dot.
	MediaExtension string

	// FinalExtension is the extension of the transcoded file, including the dot.
	FinalExtension string
}

// DefaultPathConfig returns the layout used by the batch driver.
func DefaultPathConfig(root string) *PathConfig {
	return &PathConfig{
		Root:           root,
		MediaExtension: ".ogg",
		FinalExtension: ".mp3",
	}
}

// Output is the resolved destination of one track. It is derived, never stored.
type Output struct {
	// Collection is the sanitized enclosing collection name, empty in single-track mode.
	Collection string

	// Artist is the sanitized, comma-joined artist names.
	Artist string

	// Title is the sanitized track title.
	Title string

	// Dir is Root, or Root/Collection in collection mode.
	Dir string

	// MediaPath is where the decoded intermediate file is written.
	MediaPath string

	// FinalPath is where the transcoded, tagged file ends up.
	FinalPath string

	cfg *PathConfig
}

// NewOutput computes the destination paths for a track.
//
// The result is a pure function of its inputs. Every free-text field is
// sanitized before it is joined into a path, so a separator inside an
// artist, title or collection name never adds a path segment.
func NewOutput(collection string, artists []string, title string, cfg *PathConfig) *Output {
	out := &Output{
		Artist: ioutils.SanitizeFileName(strings.Join(artists, ", ")),
		Title:  ioutils.SanitizeFileName(title),
		Dir:    cfg.Root,
		cfg:    cfg,
	}
	if collection != "" {
		out.Collection = ioutils.SanitizeFileName(collection)
		out.Dir = filepath.Join(cfg.Root, out.Collection)
	}
	out.setPaths(out.Stem())
	return out
}

// Stem returns the "artist - title" file name without extension.
func (o *Output) Stem() string {
	return o.Artist + " - " + o.Title
}

// WithSuffix returns a copy whose file names carry a disambiguating suffix,
// e.g. "Artist - Title [4uLU6hMCjMI75M1A2tKUQC].mp3".
func (o *Output) WithSuffix(suffix string) *Output {
	cp := *o
	cp.setPaths(o.Stem() + " [" + ioutils.SanitizeFileName(suffix) + "]")
	return &cp
}

// Rebase returns a copy pointing at finalPath, an existing file in the same
// directory, with the matching intermediate path.
func (o *Output) Rebase(finalPath string) *Output {
	cp := *o
	cp.setPaths(strings.TrimSuffix(filepath.Base(finalPath), o.cfg.FinalExtension))
	return &cp
}

func (o *Output) setPaths(stem string) {
	o.MediaPath = filepath.Join(o.Dir, stem+o.cfg.MediaExtension)
	o.FinalPath = filepath.Join(o.Dir, stem+o.cfg.FinalExtension)
}
