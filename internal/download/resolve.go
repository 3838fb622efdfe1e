package download

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/spotrip/internal/model"
)

// ErrNoAlternative is returned when a restricted track has no playable substitute.
var ErrNoAlternative = errors.New("track unavailable and no alternative is playable")

// resolveAvailable returns id's record, or the first playable alternative
// in catalog order. Later alternatives are never fetched.
func (m *Manager) resolveAvailable(ctx context.Context, id model.ID) (*model.Track, error) {
	track, err := m.session.Track(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch track %s: %w", id, err)
	}
	if track.Available() {
		return track, nil
	}

	for _, altID := range track.Alternatives {
		alt, err := m.session.Track(ctx, altID)
		if err != nil {
			return nil, fmt.Errorf("fetch alternative %s of %s: %w", altID, id, err)
		}
		if alt.Available() {
			log.WithFields(log.Fields{
				"track":       id.Base62(),
				"alternative": altID.Base62(),
			}).Warn("Track unavailable, using alternative")
			return alt, nil
		}
	}
	return nil, fmt.Errorf("track %s: %w", id, ErrNoAlternative)
}
