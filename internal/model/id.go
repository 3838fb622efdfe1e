package model

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// base62Len is the length of a canonical base62 catalog identifier.
const base62Len = 22

// ErrInvalidID is returned when an identifier cannot be decoded.
var ErrInvalidID = errors.New("invalid catalog id")

// ID is a 128-bit catalog identifier, stored big-endian.
type ID [16]byte

// ParseBase62 decodes the 22 character base62 form used in links and URIs.
//
// The alphabet is 0-9, a-z, A-Z, which matches math/big's base 62 digits.
func ParseBase62(s string) (ID, error) {
	var id ID
	if len(s) != base62Len {
		return id, fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidID, s, len(s), base62Len)
	}

	n, ok := new(big.Int).SetString(s, 62)
	if !ok || strings.ContainsAny(s[:1], "+-") {
		return id, fmt.Errorf("%w: %q is not base62", ErrInvalidID, s)
	}
	if n.BitLen() > 128 {
		return id, fmt.Errorf("%w: %q overflows 128 bits", ErrInvalidID, s)
	}

	n.FillBytes(id[:])
	return id, nil
}

// ParseHex decodes the 32 character hex form used by the gateway.
func ParseHex(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidID, s, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Base62 returns the canonical zero-padded base62 form.
func (id ID) Base62() string {
	s := new(big.Int).SetBytes(id[:]).Text(62)
	if len(s) < base62Len {
		s = strings.Repeat("0", base62Len-len(s)) + s
	}
	return s
}

// Hex returns the lowercase hex form.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	return id.Base62()
}

// MarshalText encodes the ID in base62 so records serialize the way links do.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Base62()), nil
}

// UnmarshalText accepts the base62 form.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseBase62(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Kind distinguishes what a CatalogID refers to.
type Kind int

const (
	// KindTrack identifies a single playable track.
	KindTrack Kind = iota

	// KindCollection identifies an ordered, named list of tracks (a playlist).
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindCollection:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CatalogID is a parsed input reference: a track or a collection.
type CatalogID struct {
	Kind Kind
	ID   ID
}

func (c CatalogID) String() string {
	return c.Kind.String() + ":" + c.ID.Base62()
}

// FileID is the 20-byte key of one encoded content stream.
type FileID [20]byte

// ParseFileID decodes the 40 character hex form.
func ParseFileID(s string) (FileID, error) {
	var f FileID
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("invalid file id %q: %w", s, err)
	}
	if len(b) != len(f) {
		return f, fmt.Errorf("invalid file id %q: %d bytes", s, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// Hex returns the lowercase hex form.
func (f FileID) Hex() string {
	return hex.EncodeToString(f[:])
}

func (f FileID) String() string {
	return f.Hex()
}

// MarshalText encodes the file id as hex.
func (f FileID) MarshalText() ([]byte, error) {
	return []byte(f.Hex()), nil
}

// UnmarshalText decodes the hex form.
func (f *FileID) UnmarshalText(text []byte) error {
	parsed, err := ParseFileID(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
