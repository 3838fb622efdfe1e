package model

import "time"

// Comment is one freeform comment frame.
type Comment struct {
	// Description distinguishes comments with the same language.
	Description string
	Text        string
}

// Tags is the metadata record written into a final file.
//
// It is built once per track and written at most once per pipeline run.
type Tags struct {
	Title  string
	Album  string
	Artist string

	// Genre holds album genres; it is only written when CollectionTag is empty.
	Genre string

	// CollectionTag is the enclosing collection name. It occupies the genre
	// slot of the written tag so players can group tracks by source playlist.
	CollectionTag string

	// Released is the moment the file was tagged, not the original release date.
	Released time.Time

	Comments []Comment

	// Artwork is nil when no cover could be fetched.
	Artwork     []byte
	ArtworkMIME string
}

// GenreSlot returns the value that goes into the genre frame.
func (t *Tags) GenreSlot() string {
	if t.CollectionTag != "" {
		return t.CollectionTag
	}
	return t.Genre
}
