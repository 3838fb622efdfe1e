package download

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/spotrip/internal/audio"
	ioutils "github.com/handiism/spotrip/internal/io"
	"github.com/handiism/spotrip/internal/model"
)

// processCollection runs the track pipeline for every member in order.
// A failing member never stops the walk.
func (m *Manager) processCollection(ctx context.Context, id model.ID) {
	entry := log.WithField("collection", id.Base62())

	coll, err := m.collections.Collection(ctx, id)
	if err != nil {
		m.emit(ctx, Result{
			ID:     id,
			Kind:   model.KindCollection,
			Status: StatusFailed,
			Stage:  StageCollection,
			Err:    fmt.Errorf("fetch collection %s: %w", id, err),
		})
		return
	}
	entry.Infof("Processing collection %q (%d tracks)", coll.Name, len(coll.Tracks))

	var entries []audio.PlaylistEntry
	failed := 0
	for _, member := range coll.Tracks {
		if ctx.Err() != nil {
			return
		}
		res := m.processTrack(ctx, member, coll.Name)
		m.emit(ctx, res)

		if res.Status == StatusFailed {
			failed++
			continue
		}
		if res.Path != "" {
			entries = append(entries, audio.PlaylistEntry{Path: res.Path, Artist: res.Artist, Title: res.Title})
		}
	}

	if m.cfg.CreatePlaylist && m.cfg.HookPath == "" && len(entries) > 0 {
		m.writePlaylist(ctx, coll.Name, entries)
	}

	if failed == 0 {
		entry.Infof("Finished collection %q", coll.Name)
	} else {
		entry.Warnf("Finished collection %q, %d of %d tracks failed", coll.Name, failed, len(coll.Tracks))
	}
}

func (m *Manager) writePlaylist(ctx context.Context, name string, entries []audio.PlaylistEntry) {
	safe := ioutils.SanitizeFileName(name)
	path := filepath.Join(m.cfg.Paths.Root, safe, safe+m.cfg.PlaylistFormat.Extension())

	content := m.playlist.CreatePlaylist(&audio.Playlist{Name: name, Entries: entries})
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		log.WithError(err).Warnf("Failed to write playlist %s", path)
		return
	}
	log.Infof("Created playlist %s", path)
}
