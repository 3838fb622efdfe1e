package spotify

import (
	"context"
	"errors"
	"io"

	"github.com/handiism/spotrip/internal/model"
)

var (
	// ErrNotFound is returned when the catalog has no record for an id.
	ErrNotFound = errors.New("catalog record not found")

	// ErrNoKey is returned by ContentKey when the service has no key for a file.
	ErrNoKey = errors.New("content key not available")

	// ErrAuth is returned by Dial when the credentials are rejected.
	ErrAuth = errors.New("authentication failed")
)

// Credentials identify the account a session is opened for.
type Credentials struct {
	Username string
	Password string
}

// Session is an authenticated connection to the catalog and content service.
//
// All methods are safe to call from a single goroutine at a time; the
// download pipeline never calls them concurrently.
type Session interface {
	Track(ctx context.Context, id model.ID) (*model.Track, error)
	Album(ctx context.Context, id model.ID) (*model.Album, error)
	Artist(ctx context.Context, id model.ID) (*model.Artist, error)
	CollectionSource

	// ContentKey returns the decryption key for file, or ErrNoKey.
	ContentKey(ctx context.Context, track model.ID, file model.FileID) ([]byte, error)

	// OpenContent opens the encoded stream of file at the given bitrate.
	// The size is -1 when unknown. The caller closes the stream.
	OpenContent(ctx context.Context, file model.FileID, bitrate int) (io.ReadCloser, int64, error)
}

// CollectionSource resolves a collection to its ordered member list.
type CollectionSource interface {
	Collection(ctx context.Context, id model.ID) (*model.Collection, error)
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context, creds Credentials) (Session, error)
}
