package logging

import (
	"fmt"
	"io"
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Field names shared across the pipeline.
const (
	FieldRun        = "run"
	FieldTrack      = "track"
	FieldCollection = "collection"
	FieldStage      = "stage"
)

// Options control the standard logger.
type Options struct {
	// Format is "console" or "json".
	Format string

	// Level is a logrus level name; Verbose forces debug.
	Level   string
	Verbose bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Configure sets up the standard logrus logger and returns an entry
// carrying a fresh run id.
func Configure(opts Options) (*log.Entry, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	switch opts.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "console", "":
		log.SetFormatter(&nested.Formatter{
			FieldsOrder:     []string{FieldRun, FieldTrack, FieldCollection, FieldStage},
			TimestampFormat: "15:04:05",
			HideKeys:        false,
			NoColors:        !IsTerminal(out),
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	if opts.Verbose && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	runID := NewRunID()
	hooks := make(log.LevelHooks)
	hooks.Add(runHook(runID))
	log.StandardLogger().ReplaceHooks(hooks)

	return log.WithField(FieldRun, runID), nil
}

// runHook stamps every entry of the standard logger with the run id.
type runHook string

func (h runHook) Levels() []log.Level {
	return log.AllLevels
}

func (h runHook) Fire(e *log.Entry) error {
	if _, ok := e.Data[FieldRun]; !ok {
		e.Data[FieldRun] = string(h)
	}
	return nil
}

// NewRunID returns a short unique id for one invocation.
func NewRunID() string {
	return uuid.NewString()[:8]
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
