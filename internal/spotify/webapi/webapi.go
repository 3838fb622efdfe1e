package webapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	spotifyclient "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/handiism/spotrip/internal/model"
	"github.com/handiism/spotrip/internal/spotify"
)

const pageSize = 100

// Source resolves playlists through the public Web API.
//
// It only supplies collection membership; track records, keys and content
// still come from the session.
type Source struct {
	client *spotifyclient.Client
}

var _ spotify.CollectionSource = (*Source)(nil)

// New authenticates with the client credentials flow and returns a Source.
func New(ctx context.Context, clientID, clientSecret string) (*Source, error) {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := config.Token(ctx); err != nil {
		return nil, fmt.Errorf("web api credentials: %w", err)
	}
	return NewSource(spotifyclient.New(config.Client(context.WithoutCancel(ctx)))), nil
}

// NewSource wraps an already configured client.
func NewSource(client *spotifyclient.Client) *Source {
	return &Source{client: client}
}

// Collection fetches the playlist name and every page of its items.
//
// Episodes and local files have no catalog track id and are skipped.
func (s *Source) Collection(ctx context.Context, id model.ID) (*model.Collection, error) {
	pid := spotifyclient.ID(id.Base62())

	playlist, err := s.client.GetPlaylist(ctx, pid)
	if err != nil {
		return nil, wrapError(err)
	}

	items, err := s.client.GetPlaylistItems(ctx, pid, spotifyclient.Limit(pageSize))
	if err != nil {
		return nil, wrapError(err)
	}

	coll := &model.Collection{ID: id, Name: playlist.Name}
	for {
		for _, item := range items.Items {
			track := item.Track.Track
			if track == nil || item.IsLocal || track.ID == "" {
				log.WithField("collection", playlist.Name).Debug("Skipping non-track playlist item")
				continue
			}
			tid, err := model.ParseBase62(string(track.ID))
			if err != nil {
				log.WithError(err).Warnf("Skipping playlist item %q", track.Name)
				continue
			}
			coll.Tracks = append(coll.Tracks, tid)
		}

		err := s.client.NextPage(ctx, items)
		if errors.Is(err, spotifyclient.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, wrapError(err)
		}
	}

	log.WithField("collection", playlist.Name).Debugf("Fetched %d playlist items from Web API", len(coll.Tracks))
	return coll, nil
}

// wrapError maps a 404 from the Web API onto spotify.ErrNotFound.
func wrapError(err error) error {
	var apiErr spotifyclient.Error
	if errors.As(err, &apiErr) && apiErr.Status == 404 {
		return fmt.Errorf("%s: %w", apiErr.Message, spotify.ErrNotFound)
	}
	if strings.Contains(err.Error(), "404") {
		return fmt.Errorf("%v: %w", err, spotify.ErrNotFound)
	}
	return err
}
