package report

import (
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// Reporter forwards per-track failures to Sentry. The zero value and a
// Reporter built from an empty DSN do nothing.
type Reporter struct {
	hub *sentry.Hub
}

// New returns a Reporter for dsn. An empty dsn disables reporting.
func New(dsn, release string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("Error reporting enabled")
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Enabled reports whether events are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// TrackFailure reports err with the track id, pipeline stage and run id as tags.
func (r *Reporter) TrackFailure(err error, runID, trackID, stage string) {
	if !r.Enabled() || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", runID)
		scope.SetTag("track_id", trackID)
		scope.SetTag("stage", stage)
		r.hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events to be sent.
func (r *Reporter) Flush(timeout time.Duration) {
	if !r.Enabled() {
		return
	}
	if !r.hub.Flush(timeout) {
		log.Warn("Timed out flushing error reports")
	}
}
