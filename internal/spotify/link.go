package spotify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/spotrip/internal/model"
)

// ErrNoMatch is returned by ParseLine when a line holds no recognised link.
var ErrNoMatch = errors.New("no spotify link found")

var (
	trackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`spotify:track:([0-9a-zA-Z]+)`),
		regexp.MustCompile(`open\.spotify\.com/(?:intl-[a-zA-Z-]+/)?track/([0-9a-zA-Z]+)`),
	}
	collectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`spotify:playlist:([0-9a-zA-Z]+)`),
		regexp.MustCompile(`open\.spotify\.com/(?:intl-[a-zA-Z-]+/)?playlist/([0-9a-zA-Z]+)`),
	}
)

// Extractor turns lines of text into catalog identifiers.
//
// In track mode only track links are recognised, in collection mode only
// playlist links. A run never mixes the two.
type Extractor struct {
	Kind model.Kind
}

// NewExtractor returns an extractor for tracks, or for collections when
// collections is true.
func NewExtractor(collections bool) *Extractor {
	if collections {
		return &Extractor{Kind: model.KindCollection}
	}
	return &Extractor{Kind: model.KindTrack}
}

// ParseLine extracts the first identifier of the extractor's kind from line.
//
// Lines without a recognised link return ErrNoMatch. A link whose token
// does not decode to a 128-bit value returns an error wrapping
// model.ErrInvalidID.
func (e *Extractor) ParseLine(line string) (model.CatalogID, error) {
	patterns := trackPatterns
	if e.Kind == model.KindCollection {
		patterns = collectionPatterns
	}

	for _, re := range patterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := model.ParseBase62(m[1])
		if err != nil {
			return model.CatalogID{}, fmt.Errorf("link %q: %w", m[0], err)
		}
		return model.CatalogID{Kind: e.Kind, ID: id}, nil
	}
	return model.CatalogID{}, ErrNoMatch
}

// Extract lazily yields one identifier per recognised line of r.
//
// Blank lines and lines starting with '#' are skipped silently. Lines
// that do not parse are logged at warn level and skipped; they never stop
// the sequence. Reading stops as soon as the consumer stops ranging.
//
// Example:
//
//	for id := range spotify.NewExtractor(false).Extract(os.Stdin) {
//	    process(id)
//	}
func (e *Extractor) Extract(r io.Reader) iter.Seq[model.CatalogID] {
	return func(yield func(model.CatalogID) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			id, err := e.ParseLine(line)
			if err != nil {
				log.WithFields(log.Fields{"line": lineNo, "text": line}).
					Warnf("Skipping input line: %v", err)
				continue
			}
			if !yield(id) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.WithError(err).Error("Failed to read input")
		}
	}
}
