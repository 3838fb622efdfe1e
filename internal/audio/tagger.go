package audio

import (
	"github.com/bogem/id3v2"

	"github.com/handiism/spotrip/internal/model"
)

// CommentLanguage is the language code of every comment frame.
const CommentLanguage = "eng"

// releaseLayout is the ID3v2.4 timestamp format at second precision.
const releaseLayout = "2006-01-02T15:04:05"

// Tagger writes ID3v2.4 tags to MP3 files.
//
// Tagger replaces whatever tag block the file already carries; nothing
// from a previous tag survives a Write.
//
// Frames written:
//   - TIT2 title, TALB album, TPE1 artist
//   - TCON genre slot (collection name, or album genres)
//   - TDRL release time
//   - COMM comments
//   - APIC front cover
//
// Example:
//
//	tagger := NewTagger()
//	if err := tagger.Write(out.FinalPath, tags); err != nil {
//	    log.Errorf("Failed to tag %s: %v", out.FinalPath, err)
//	}
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Write replaces the tag of the MP3 at path with tags.
func (t *Tagger) Write(path string, tags *model.Tags) error {
	// Opening without parsing still records the old tag's size, so Save
	// overwrites it instead of keeping any of its frames.
	tag, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	t.setText(tag, tags)

	for _, c := range tags.Comments {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    CommentLanguage,
			Description: c.Description,
			Text:        c.Text,
		})
	}

	if len(tags.Artwork) > 0 {
		t.setArtwork(tag, tags)
	}

	return tag.Save()
}

func (t *Tagger) setText(tag *id3v2.Tag, tags *model.Tags) {
	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if genre := tags.GenreSlot(); genre != "" {
		tag.SetGenre(genre)
	}
	if !tags.Released.IsZero() {
		tag.AddTextFrame("TDRL", id3v2.EncodingUTF8, tags.Released.Format(releaseLayout))
	}
}

// setArtwork embeds cover art as the front cover picture.
func (t *Tagger) setArtwork(tag *id3v2.Tag, tags *model.Tags) {
	mime := tags.ArtworkMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mime,
		PictureType: id3v2.PTFrontCover,
		Description: "",
		Picture:     tags.Artwork,
	})
}
