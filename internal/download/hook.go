package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/handiism/spotrip/internal/model"
)

// ErrHook is returned when the helper program fails.
var ErrHook = errors.New("hook failed")

var commandContext = exec.CommandContext

// runHook hands the playable audio to the helper program instead of
// writing files. The program gets the requested track id, track name,
// album name and artist names as arguments and the audio on stdin. When an
// alternative was substituted, the id is still the one from the input line.
func (m *Manager) runHook(ctx context.Context, requested model.ID, track *model.Track, album *model.Album, artists []string, audio []byte) error {
	args := append([]string{requested.Base62(), track.Name, album.Name}, artists...)

	cmd := commandContext(ctx, m.cfg.HookPath, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(audio)
	cmd.Stdout = m.cfg.HookOutput
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%w: %v: %s", ErrHook, err, msg)
		}
		return fmt.Errorf("%w: %v", ErrHook, err)
	}
	return nil
}
