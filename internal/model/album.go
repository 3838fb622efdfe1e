package model

import (
	"fmt"
	"sort"
	"strings"
)

// CoverSize is the pixel-size class of a cover image. Larger values are larger images.
type CoverSize int

const (
	CoverDefault CoverSize = iota
	CoverSmall
	CoverLarge
	CoverXLarge
)

// rank orders sizes from smallest to largest; CoverDefault sits between small and large.
func (s CoverSize) rank() int {
	switch s {
	case CoverSmall:
		return 0
	case CoverDefault:
		return 1
	case CoverLarge:
		return 2
	case CoverXLarge:
		return 3
	default:
		return 1
	}
}

func (s CoverSize) String() string {
	switch s {
	case CoverSmall:
		return "SMALL"
	case CoverLarge:
		return "LARGE"
	case CoverXLarge:
		return "XLARGE"
	default:
		return "DEFAULT"
	}
}

// MarshalText encodes the size by name.
func (s CoverSize) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a size name. Unknown names are an error.
func (s *CoverSize) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "SMALL":
		*s = CoverSmall
	case "DEFAULT", "":
		*s = CoverDefault
	case "LARGE":
		*s = CoverLarge
	case "XLARGE":
		*s = CoverXLarge
	default:
		return fmt.Errorf("unknown cover size %q", string(text))
	}
	return nil
}

// Cover describes one cover image of an album.
type Cover struct {
	FileID FileID    `json:"file_id"`
	Size   CoverSize `json:"size"`
}

// Album is a catalog album.
type Album struct {
	ID     ID       `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`

	// Covers is in catalog order, which is not guaranteed to be sorted.
	Covers []Cover `json:"covers"`
}

// HasArtwork returns true if the album lists at least one cover image.
func (a *Album) HasArtwork() bool {
	return len(a.Covers) > 0
}

// SmallestCover returns the first cover after a stable ascending sort by size.
func (a *Album) SmallestCover() (Cover, bool) {
	if !a.HasArtwork() {
		return Cover{}, false
	}
	covers := append([]Cover(nil), a.Covers...)
	sort.SliceStable(covers, func(i, j int) bool {
		return covers[i].Size.rank() < covers[j].Size.rank()
	})
	return covers[0], true
}
