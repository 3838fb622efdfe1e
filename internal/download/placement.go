package download

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	ioutils "github.com/handiism/spotrip/internal/io"
	"github.com/handiism/spotrip/internal/model"
)

// place claims out's final path for track. When another track already owns
// it, the returned output carries the track's base62 id as a suffix. A file
// the track was saved under in an earlier run, in the same directory, wins
// over both so a catalog rename does not produce a second copy.
func (m *Manager) place(ctx context.Context, out *model.Output, track model.ID) (*model.Output, error) {
	if prev, ok := m.previous(ctx, out, track); ok {
		return prev, nil
	}

	owner, err := m.claim(ctx, out.FinalPath, track)
	if err != nil {
		return nil, err
	}
	if owner == track {
		return out, nil
	}

	suffixed := out.WithSuffix(track.Base62())
	log.WithFields(log.Fields{
		"track": track.Base62(),
		"owner": owner.Base62(),
	}).Warnf("Path %s belongs to another track, using %s", out.FinalPath, suffixed.FinalPath)

	owner, err = m.claim(ctx, suffixed.FinalPath, track)
	if err != nil {
		return nil, err
	}
	if owner != track {
		return nil, fmt.Errorf("path %s already claimed by %s", suffixed.FinalPath, owner)
	}
	return suffixed, nil
}

// claim records track as the owner of path unless someone else already is,
// and returns the owner. The ledger, when present, makes claims survive runs.
func (m *Manager) claim(ctx context.Context, path string, track model.ID) (model.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.claims[path]; ok {
		return owner, nil
	}

	owner := track
	if m.ledger != nil {
		var err error
		owner, err = m.ledger.ClaimPath(ctx, path, track)
		if err != nil {
			return model.ID{}, err
		}
	}
	m.claims[path] = owner
	return owner, nil
}

// previous looks up the path track last claimed in the ledger and returns
// it when it differs from out, lies in out's directory and still exists.
func (m *Manager) previous(ctx context.Context, out *model.Output, track model.ID) (*model.Output, bool) {
	if m.ledger == nil {
		return nil, false
	}
	entry := log.WithField("track", track.Base62())

	path, ok, err := m.ledger.PathFor(ctx, track)
	if err != nil {
		entry.WithError(err).Warn("Ledger lookup failed")
		return nil, false
	}
	if !ok || path == out.FinalPath || filepath.Dir(path) != out.Dir {
		return nil, false
	}
	if exists, err := ioutils.FileExists(path); err != nil || !exists {
		return nil, false
	}
	if owner, err := m.claim(ctx, path, track); err != nil || owner != track {
		return nil, false
	}

	entry.Infof("Reusing %s from an earlier run", path)
	return out.Rebase(path), true
}
