package transfer

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os/exec"
	"strings"
)

// KeyEnv is the environment variable CommandDecoder passes the key in.
const KeyEnv = "SPOTRIP_AUDIO_KEY"

var commandContext = exec.CommandContext

// Decoder turns an encoded stream into playable bytes.
type Decoder interface {
	// Decode returns the decoded form of raw. key is nil when the
	// service did not provide one.
	Decode(ctx context.Context, raw, key []byte) ([]byte, error)
}

// Passthrough returns its input unchanged. It is used when the gateway
// already serves decoded content.
type Passthrough struct{}

func (Passthrough) Decode(_ context.Context, raw, _ []byte) ([]byte, error) {
	return raw, nil
}

// CommandDecoder runs an external program as the decoder.
//
// The program receives the encoded bytes on stdin and the key, hex
// encoded, in SPOTRIP_AUDIO_KEY. Whatever it writes to stdout is the
// decoded stream.
type CommandDecoder struct {
	Path string
	Args []string
}

func (d *CommandDecoder) Decode(ctx context.Context, raw, key []byte) ([]byte, error) {
	cmd := commandContext(ctx, d.Path, d.Args...) //nolint:gosec
	cmd.Env = append(cmd.Environ(), KeyEnv+"="+hex.EncodeToString(key))
	cmd.Stdin = bytes.NewReader(raw)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", d.Path, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", d.Path, err, msg)
	}
	return stdout.Bytes(), nil
}
