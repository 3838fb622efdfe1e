package download

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/spotrip/internal/model"
)

// DefaultArtworkURL is where cover images are fetched from; {id} is the
// cover's hex file id.
const DefaultArtworkURL = "https://i.scdn.co/image/{id}"

// maxArtworkBytes caps a single cover download.
const maxArtworkBytes = 10 << 20

// synthesize builds the tag record for track. collection is empty in
// single-track mode.
func (m *Manager) synthesize(ctx context.Context, track *model.Track, album *model.Album, artists []string, collection string, sel Selection) *model.Tags {
	tags := &model.Tags{
		Title:    track.Name,
		Album:    album.Name,
		Artist:   strings.Join(artists, ", "),
		Released: m.now(),
	}

	genres := strings.Join(album.Genres, ", ")
	if collection != "" {
		tags.CollectionTag = collection
	} else {
		tags.Genre = genres
	}

	if text := describe(collection, genres); text != "" {
		tags.Comments = append(tags.Comments, model.Comment{Text: text})
	}
	if sel.Degraded {
		tags.Comments = append(tags.Comments, model.Comment{
			Description: "bitrate",
			Text:        fmt.Sprintf("Bitrate: %d kbps (%d kbps unavailable)", sel.Bitrate, preferredBitrate),
		})
	}

	if m.cfg.SaveArtwork {
		tags.Artwork = m.artwork(ctx, album)
		if tags.Artwork != nil {
			tags.ArtworkMIME = "image/jpeg"
		}
	}
	return tags
}

// describe renders the main comment, e.g. "Collection: Road Trip, Genres: rock, pop".
func describe(collection, genres string) string {
	var parts []string
	if collection != "" {
		parts = append(parts, "Collection: "+collection)
	}
	if genres != "" {
		parts = append(parts, "Genres: "+genres)
	}
	return strings.Join(parts, ", ")
}

// artwork fetches the album's smallest cover. A failure is logged as a
// warning and yields nil; the track is still tagged.
func (m *Manager) artwork(ctx context.Context, album *model.Album) []byte {
	cover, ok := album.SmallestCover()
	if !ok {
		return nil
	}
	entry := log.WithFields(log.Fields{"album": album.ID.Base62(), "cover": cover.FileID.Hex()})

	template := m.cfg.ArtworkURL
	if template == "" {
		template = DefaultArtworkURL
	}
	url := strings.ReplaceAll(template, "{id}", cover.FileID.Hex())

	data, err := m.http.DownloadBytes(ctx, url, maxArtworkBytes)
	if err != nil {
		entry.WithError(err).Warn("Cover fetch failed, omitting artwork")
		return nil
	}
	data, err = m.images.PrepareCover(ctx, data, m.cfg.CoverMaxSize)
	if err != nil {
		entry.WithError(err).Warn("Cover could not be prepared, omitting artwork")
		return nil
	}
	return data
}

// writeTags replaces the tag block of path. Failure is logged, not returned.
func (m *Manager) writeTags(path string, tags *model.Tags) {
	if err := m.tagger.Write(path, tags); err != nil {
		log.WithError(err).WithField("path", path).Error("Failed to write tags")
	}
}
