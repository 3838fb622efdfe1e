package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PlaylistFormat selects the playlist file syntax.
type PlaylistFormat int

const (
	// FormatM3U is a plain list of files, optionally with #EXTINF lines.
	FormatM3U PlaylistFormat = iota

	// FormatPLS is the INI-style Winamp format.
	FormatPLS

	// FormatWPL is the Windows Media Player SMIL format.
	FormatWPL

	// FormatZPL is the Zune SMIL format, which also carries titles and artists.
	FormatZPL
)

var playlistFormats = map[string]PlaylistFormat{
	"":    FormatM3U,
	"m3u": FormatM3U,
	"pls": FormatPLS,
	"wpl": FormatWPL,
	"zpl": FormatZPL,
}

// ParsePlaylistFormat maps a config value ("m3u", "pls", "wpl", "zpl") to a format.
func ParsePlaylistFormat(name string) (PlaylistFormat, error) {
	if f, ok := playlistFormats[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return FormatM3U, fmt.Errorf("unknown playlist format %q", name)
}

// Extension returns the file extension for the format, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// Playlist is the ordered list of files one collection produced.
type Playlist struct {
	Name    string
	Entries []PlaylistEntry
}

// PlaylistEntry is one file in a Playlist.
type PlaylistEntry struct {
	// Path is the file path; only its base name is written.
	Path   string
	Artist string
	Title  string
}

func (e PlaylistEntry) file() string {
	return filepath.Base(e.Path)
}

func (e PlaylistEntry) label() string {
	return e.Artist + " - " + e.Title
}

// unknownLength marks an entry whose duration is not known.
const unknownLength = -1

// PlaylistCreator renders a Playlist in one format.
//
// Entries are written by base name, so the playlist belongs in the same
// directory as the tracks:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(pl)
//	os.WriteFile("/music/Road Trip/Road Trip.m3u", []byte(content), 0644)
type PlaylistCreator struct {
	format PlaylistFormat

	// extended adds #EXTINF lines to M3U output.
	extended bool
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only affects M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{format: format, extended: extended}
}

// CreatePlaylist returns the playlist file content.
func (p *PlaylistCreator) CreatePlaylist(pl *Playlist) string {
	var sb strings.Builder
	switch p.format {
	case FormatPLS:
		p.writePLS(&sb, pl)
	case FormatWPL:
		writeSMIL(&sb, pl, `<?wpl version="1.0"?>`, false)
	case FormatZPL:
		writeSMIL(&sb, pl, `<?zpl version="2.0"?>`, true)
	default:
		p.writeM3U(&sb, pl)
	}
	return sb.String()
}

// writeM3U emits one file name per line. Durations are unknown, so
// #EXTINF always carries -1.
func (p *PlaylistCreator) writeM3U(sb *strings.Builder, pl *Playlist) {
	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range pl.Entries {
		if p.extended {
			fmt.Fprintf(sb, "#EXTINF:%d,%s\n", unknownLength, e.label())
		}
		sb.WriteString(e.file() + "\n")
	}
}

func (p *PlaylistCreator) writePLS(sb *strings.Builder, pl *Playlist) {
	sb.WriteString("[playlist]\n")
	for i, e := range pl.Entries {
		n := i + 1
		fmt.Fprintf(sb, "File%d=%s\nTitle%d=%s\nLength%d=%d\n", n, e.file(), n, e.label(), n, unknownLength)
	}
	fmt.Fprintf(sb, "NumberOfEntries=%d\nVersion=2\n", len(pl.Entries))
}

// writeSMIL emits the XML layout shared by WPL and ZPL. rich adds the
// generator metadata and per-entry attributes ZPL readers expect.
func writeSMIL(sb *strings.Builder, pl *Playlist, declaration string, rich bool) {
	sb.WriteString(declaration + "\n<smil>\n  <head>\n")
	fmt.Fprintf(sb, "    <title>%s</title>\n", xmlEscaper.Replace(pl.Name))
	if rich {
		sb.WriteString(`    <meta name="Generator" content="spotrip"/>` + "\n")
		fmt.Fprintf(sb, `    <meta name="ItemCount" content="%d"/>`+"\n", len(pl.Entries))
	}
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")

	for _, e := range pl.Entries {
		src := xmlEscaper.Replace(e.file())
		if !rich {
			fmt.Fprintf(sb, `      <media src="%s"/>`+"\n", src)
			continue
		}
		fmt.Fprintf(sb, `      <media src="%s" albumTitle="%s" trackTitle="%s" trackArtist="%s"/>`+"\n",
			src, xmlEscaper.Replace(pl.Name), xmlEscaper.Replace(e.Title), xmlEscaper.Replace(e.Artist))
	}

	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)
